package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"

	"neolist/internal/logging"
)

const (
	// DefaultModel is the Gemini model used for suggestions.
	DefaultModel = "gemini-2.5-flash"

	// APITimeout is the timeout for one suggestion request.
	APITimeout = 30 * time.Second
)

// responseSchema constrains the model to {"tasks": [string]}.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"tasks": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"tasks"},
}

// Gemini implements Suggester with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *log.Logger
}

// NewGemini creates a client authenticated with apiKey. httpOpts may point
// the client at another endpoint, e.g. in tests.
func NewGemini(ctx context.Context, apiKey string, logger *log.Logger, httpOpts *genai.HTTPOptions) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpOpts != nil {
		cc.HTTPOptions = *httpOpts
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  DefaultModel,
		logger: logging.OrDiscard(logger),
	}, nil
}

// Suggest asks the model for a JSON object {"tasks": [...]} of sub-tasks.
func (g *Gemini) Suggest(ctx context.Context, title string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt(title)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		g.logger.Error("suggestion request failed", "model", g.model, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSuggestion, err)
	}

	tasks, err := parseResponse(resp)
	if err != nil {
		g.logger.Error("unusable suggestion response", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSuggestion, err)
	}
	g.logger.Debug("suggestions received", "title", title, "count", len(tasks))
	return tasks, nil
}

func prompt(title string) string {
	return fmt.Sprintf("Based on the to-do list item %q, generate a checklist of actionable sub-tasks. "+
		"Return a JSON object with a single key \"tasks\" which is an array of strings.", title)
}

// parseResponse extracts the tasks array from the first candidate's text.
func parseResponse(resp *genai.GenerateContentResponse) ([]string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, fmt.Errorf("empty response text")
	}

	var result struct {
		Tasks []string `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %w", err)
	}
	return result.Tasks, nil
}
