package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/promptforge/internal/api/web"
	"github.com/matiasleandrokruk/promptforge/internal/infra/logging"
)

func TestPageHandler_Index(t *testing.T) {
	t.Parallel()

	h, err := NewPageHandler(web.PageData{Title: "PromptForge", Version: "v2", Providers: []string{"gemma", "llama", "openai"}}, logging.Discard())
	if err != nil {
		t.Fatalf("NewPageHandler: %v", err)
	}

	w := httptest.NewRecorder()
	h.Index(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get(headerContentType); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{`<option value="gemma">gemma</option>`, "PromptForge v2", "/static/main.js"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestStatic_ServesScript(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.StripPrefix("/static/", Static()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/static/main.js")
	if err != nil {
		t.Fatalf("GET main.js: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "/generate") {
		t.Errorf("unexpected static response %d", resp.StatusCode)
	}
}
