// Package firestore implements store.Store on the Cloud Firestore REST API.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	fs "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"neolist/internal/config"
	"neolist/internal/logging"
	"neolist/internal/store"
	"neolist/internal/todo"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// PageSize is the number of documents per list page.
	PageSize = 300

	// Collection is the per-user collection holding tasks.
	Collection = "todos"

	orderBy = fieldUpdatedAt + " desc"
)

// Options configure a Client.
type Options struct {
	Project      string
	Database     string
	PollInterval time.Duration

	// Clock stamps createdAt and updatedAt. Defaults to the wall clock.
	Clock *store.Clock

	Logger *log.Logger
}

// Client implements store.Store using Firestore.
// A Client built without a project or credentials is unconfigured and
// fails every operation with store.ErrUnavailable.
type Client struct {
	svc      *fs.Service
	database string
	interval time.Duration
	clock    *store.Clock
	logger   *log.Logger

	mu       sync.Mutex
	watchers map[*watcher]struct{}
}

// New creates a Firestore client for the configured project, authorized by ts.
func New(ctx context.Context, cfg *config.Config, ts oauth2.TokenSource, logger *log.Logger) (*Client, error) {
	opts := Options{
		Project:      cfg.Project(),
		Database:     cfg.Database(),
		PollInterval: cfg.PollInterval(),
		Logger:       logger,
	}
	if opts.Project == "" || ts == nil {
		logging.OrDiscard(logger).Debug("firestore unconfigured", "project", opts.Project, "credentials", ts != nil)
		return newClient(nil, opts), nil
	}

	svc, err := fs.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore service: %w", err)
	}
	return newClient(svc, opts), nil
}

// NewWithHTTPClient creates a client talking to endpoint with a custom HTTP
// client (for testing).
func NewWithHTTPClient(ctx context.Context, opts Options, httpClient *http.Client, endpoint string) (*Client, error) {
	svc, err := fs.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	return newClient(svc, opts), nil
}

// Unconfigured returns a client that fails every operation with
// store.ErrUnavailable.
func Unconfigured(logger *log.Logger) *Client {
	return newClient(nil, Options{Logger: logger})
}

func newClient(svc *fs.Service, opts Options) *Client {
	if opts.Database == "" {
		opts.Database = config.DefaultDatabase
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = store.NewClock(nil)
	}
	c := &Client{
		svc:      svc,
		interval: opts.PollInterval,
		clock:    opts.Clock,
		logger:   logging.OrDiscard(opts.Logger),
		watchers: make(map[*watcher]struct{}),
	}
	if svc != nil {
		c.database = fmt.Sprintf("projects/%s/databases/%s/documents", opts.Project, opts.Database)
	}
	return c
}

// Configured reports whether the client can reach a project.
func (c *Client) Configured() bool {
	return c.svc != nil
}

func (c *Client) check(userID string) error {
	if c.svc == nil {
		return store.ErrUnavailable
	}
	return store.CheckUser(userID)
}

// userPath is the parent of the user's task collection.
func (c *Client) userPath(userID string) string {
	return c.database + "/users/" + userID
}

func (c *Client) taskPath(userID, taskID string) string {
	return c.userPath(userID) + "/" + Collection + "/" + taskID
}

// Create implements store.Store.
func (c *Client) Create(ctx context.Context, userID, title string) (todo.Task, error) {
	if err := c.check(userID); err != nil {
		return todo.Task{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	now := c.clock.Now()
	doc := encodeTask(todo.Task{
		Title:     title,
		Checklist: []todo.ChecklistItem{},
		CreatedAt: now,
		UpdatedAt: now,
	})

	created, err := c.svc.Projects.Databases.Documents.
		CreateDocument(c.userPath(userID), Collection, doc).
		Context(ctx).
		Do()
	if err != nil {
		return todo.Task{}, wrapError(err)
	}
	c.nudge(userID)
	return decodeDocument(created)
}

// Remove implements store.Store.
func (c *Client) Remove(ctx context.Context, userID, taskID string) error {
	if err := c.check(userID); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.svc.Projects.Databases.Documents.
		Delete(c.taskPath(userID, taskID)).
		CurrentDocumentExists(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrapWriteError(err)
	}
	c.nudge(userID)
	return nil
}

// Patch implements store.Store.
func (c *Client) Patch(ctx context.Context, userID, taskID string, fields todo.Fields) (todo.Task, error) {
	if err := c.check(userID); err != nil {
		return todo.Task{}, err
	}
	if fields.Empty() {
		return todo.Task{}, errors.New("patch without fields")
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	doc, mask := encodePatch(fields, c.clock.Now())

	updated, err := c.svc.Projects.Databases.Documents.
		Patch(c.taskPath(userID, taskID), doc).
		UpdateMaskFieldPaths(mask...).
		CurrentDocumentExists(true).
		Context(ctx).
		Do()
	if err != nil {
		return todo.Task{}, wrapWriteError(err)
	}
	c.nudge(userID)
	return decodeDocument(updated)
}

// list returns the user's tasks ordered by updatedAt descending along with
// a fingerprint of the listed document versions.
func (c *Client) list(ctx context.Context, userID string) ([]todo.Task, string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var (
		docs  []*fs.Document
		fp    strings.Builder
	)
	err := c.svc.Projects.Databases.Documents.
		List(c.userPath(userID), Collection).
		OrderBy(orderBy).
		PageSize(PageSize).
		Pages(ctx, func(resp *fs.ListDocumentsResponse) error {
			docs = append(docs, resp.Documents...)
			return nil
		})
	if err != nil {
		return nil, "", wrapError(err)
	}

	tasks := make([]todo.Task, 0, len(docs))
	for _, doc := range docs {
		fp.WriteString(doc.Name)
		fp.WriteByte('@')
		fp.WriteString(doc.UpdateTime)
		fp.WriteByte('\n')

		task, err := decodeDocument(doc)
		if err != nil {
			return nil, "", err
		}
		tasks = append(tasks, task)
	}
	return tasks, fp.String(), nil
}

// wrapError maps API errors to store errors and user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return store.ErrNotFound
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: %s login)", config.AppName)
		}
	}
	return err
}

// wrapWriteError is wrapError for writes guarded by an exists precondition,
// which fail with FAILED_PRECONDITION when the document is gone.
func wrapWriteError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Body, "FAILED_PRECONDITION") {
		return store.ErrNotFound
	}
	return wrapError(err)
}
