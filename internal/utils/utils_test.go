package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeHelpers(t *testing.T) {
	if got := NormalizeRole("  Frontend   Engineer "); got != "Frontend Engineer" {
		t.Fatalf("NormalizeRole: expected collapsed spaces, got %q", got)
	}
}

func TestStripFences(t *testing.T) {
	input := "```json\n{\"a\":1}\n```\n"
	want := `{"a":1}`
	if got := StripFences(input); got != want {
		t.Fatalf("StripFences: expected %q, got %q", want, got)
	}

	raw := "  plain  "
	if got := StripFences(raw); got != "plain" {
		t.Fatalf("StripFences (no fences): expected trimmed string, got %q", got)
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"prose around object", `Sure! {"score": 7} hope that helps`, `{"score": 7}`, true},
		{"nested", `{"a":{"b":1}}`, `{"a":{"b":1}}`, true},
		{"no object", "score is seven", "", false},
		{"reversed braces", "} nope {", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ExtractJSONObject(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("I have 5 years\nof experience"); got != 6 {
		t.Fatalf("WordCount: expected 6, got %d", got)
	}
	if got := WordCount("   "); got != 0 {
		t.Fatalf("WordCount: expected 0 for blank, got %d", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}
	JSON(rec, http.StatusCreated, payload)

	if rec.Code != http.StatusCreated {
		t.Fatalf("JSON: expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("JSON: expected content-type application/json, got %s", contentType)
	}
	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if got["hello"] != "world" {
		t.Fatalf("JSON body mismatch: %+v", got)
	}

	rec2 := httptest.NewRecorder()
	JSONError(rec2, http.StatusNotFound, "not_found", "missing")
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("JSONError: expected status %d, got %d", http.StatusNotFound, rec2.Code)
	}
	if !strings.Contains(rec2.Body.String(), `"code":"not_found"`) {
		t.Fatalf("JSONError: expected code in body, got %s", rec2.Body.String())
	}

	rec3 := httptest.NewRecorder()
	JSON(rec3, http.StatusNoContent, nil)
	if rec3.Body.Len() != 0 {
		t.Fatalf("JSON: expected empty body for nil payload, got %q", rec3.Body.String())
	}
}
