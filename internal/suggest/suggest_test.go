package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

// fakeGemini serves generateContent with the given model text.
func fakeGemini(t *testing.T, status int, text string) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"tasks"`) {
			t.Errorf("request has no response schema: %s", body)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"code":500,"message":"boom"}}`))
			return
		}
		resp := map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": text}},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPath
}

func newTestGemini(t *testing.T, srv *httptest.Server) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), "test-key", nil, &genai.HTTPOptions{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return g
}

func TestGemini_Suggest(t *testing.T) {
	srv, path := fakeGemini(t, http.StatusOK, `{"tasks": ["book flights", "reserve hotel"]}`)
	g := newTestGemini(t, srv)

	got, err := g.Suggest(context.Background(), "Plan trip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "book flights" || got[1] != "reserve hotel" {
		t.Errorf("unexpected suggestions %v", got)
	}
	if *path != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("unexpected request path %q", *path)
	}
}

func TestGemini_EmptyTasks(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK, `{"tasks": []}`)
	g := newTestGemini(t, srv)

	got, err := g.Suggest(context.Background(), "Nothing to do")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestGemini_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		text   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"not json", http.StatusOK, "here are some tasks"},
		{"empty text", http.StatusOK, "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeGemini(t, tt.status, tt.text)
			g := newTestGemini(t, srv)

			_, err := g.Suggest(context.Background(), "Plan trip")
			if !errors.Is(err, ErrSuggestion) {
				t.Errorf("expected ErrSuggestion, got %v", err)
			}
		})
	}
}

func TestFromEnv_NoKeyIsDisabled(t *testing.T) {
	for _, name := range KeyEnv {
		t.Setenv(name, "")
	}

	s, err := FromEnv(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*Disabled); !ok {
		t.Fatalf("expected *Disabled, got %T", s)
	}
	got, err := s.Suggest(context.Background(), "Plan trip")
	if err != nil || len(got) != 0 {
		t.Errorf("expected no suggestions and no error, got %v, %v", got, err)
	}
}

func TestKeyFromEnv_Order(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback")
	if got := KeyFromEnv(); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
	t.Setenv("GEMINI_API_KEY", "primary")
	if got := KeyFromEnv(); got != "primary" {
		t.Errorf("expected primary, got %q", got)
	}
}
