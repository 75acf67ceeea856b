package firestore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	fs "google.golang.org/api/firestore/v1"
)

// fakeFirestore serves the subset of the Firestore REST API the client uses.
type fakeFirestore struct {
	mu       sync.Mutex
	docs     map[string]map[string]json.RawMessage
	versions map[string]string
	nextID   int
	tick     int
	requests []*http.Request

	// listStatus makes list requests fail with this HTTP status.
	listStatus int
}

func newFakeFirestore(t *testing.T) (*fakeFirestore, *httptest.Server) {
	t.Helper()
	f := &fakeFirestore{
		docs:     make(map[string]map[string]json.RawMessage),
		versions: make(map[string]string),
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

// put stores raw fields under the given document name.
func (f *fakeFirestore) put(name string, fields map[string]json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[name] = fields
	f.bump(name)
}

func (f *fakeFirestore) bump(name string) {
	f.tick++
	f.versions[name] = fmt.Sprintf("2026-01-01T00:00:00.%06dZ", f.tick)
}

func (f *fakeFirestore) stored(name string) map[string]json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[name]
}

func (f *fakeFirestore) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeFirestore) lastRequest(method string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Method == method {
			return f.requests[i]
		}
	}
	return nil
}

func (f *fakeFirestore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)

	p := strings.TrimPrefix(r.URL.Path, "/v1/")
	isCollection := strings.HasSuffix(p, "/"+Collection)

	switch {
	case r.Method == http.MethodPost && isCollection:
		var doc struct {
			Fields map[string]json.RawMessage `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT")
			return
		}
		f.nextID++
		name := fmt.Sprintf("%s/doc%d", p, f.nextID)
		f.docs[name] = doc.Fields
		f.bump(name)
		f.writeDoc(w, name)

	case r.Method == http.MethodGet && isCollection:
		if f.listStatus != 0 {
			writeStatus(w, f.listStatus, "UNAVAILABLE")
			return
		}
		var names []string
		for name := range f.docs {
			if strings.HasPrefix(name, p+"/") {
				names = append(names, name)
			}
		}
		sort.Slice(names, func(i, j int) bool {
			return updatedAt(f.docs[names[i]]) > updatedAt(f.docs[names[j]])
		})
		docs := make([]any, 0, len(names))
		for _, name := range names {
			docs = append(docs, f.doc(name))
		}
		writeJSON(w, map[string]any{"documents": docs})

	case r.Method == http.MethodPatch:
		fields, ok := f.docs[p]
		if !ok {
			writeStatus(w, http.StatusNotFound, "NOT_FOUND")
			return
		}
		var doc struct {
			Fields map[string]json.RawMessage `json:"fields"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &doc); err != nil {
			writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT")
			return
		}
		for _, path := range r.URL.Query()["updateMask.fieldPaths"] {
			fields[path] = doc.Fields[path]
		}
		f.bump(p)
		f.writeDoc(w, p)

	case r.Method == http.MethodDelete:
		if _, ok := f.docs[p]; !ok {
			writeStatus(w, http.StatusNotFound, "NOT_FOUND")
			return
		}
		delete(f.docs, p)
		delete(f.versions, p)
		writeJSON(w, map[string]any{})

	default:
		writeStatus(w, http.StatusNotImplemented, "UNIMPLEMENTED")
	}
}

func (f *fakeFirestore) doc(name string) map[string]any {
	return map[string]any{
		"name":       name,
		"fields":     f.docs[name],
		"createTime": "2026-01-01T00:00:00Z",
		"updateTime": f.versions[name],
	}
}

func (f *fakeFirestore) writeDoc(w http.ResponseWriter, name string) {
	writeJSON(w, f.doc(name))
}

func updatedAt(fields map[string]json.RawMessage) int64 {
	var v fs.Value
	if err := json.Unmarshal(fields[fieldUpdatedAt], &v); err != nil {
		return 0
	}
	return v.IntegerValue
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": strings.ToLower(status),
			"status":  status,
		},
	})
}
