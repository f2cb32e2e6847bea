package aggregator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// encodeWire encodes v the way the HTTP layer writes responses.
func encodeWire(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func TestLink_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		link Link
		want string
	}{
		{"disabled", DisabledLink, `false`},
		{"boundary", NoLink, `null`},
		{"page", PageLink("/api/characters", 2, ""), `"/api/characters?page=2"`},
		{"page with search", PageLink("/api/characters", 3, "luke sky"), `"/api/characters?page=3&search=luke+sky"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeWire(t, tt.link); got != tt.want {
				t.Errorf("Encode = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLink_MarshalJSON_DecodesToURL(t *testing.T) {
	link := PageLink("/api/characters", 3, "r2 & c3po")

	data, err := json.Marshal(link)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var href string
	if err := json.Unmarshal(data, &href); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if want := "/api/characters?page=3&search=r2+%26+c3po"; href != want {
		t.Errorf("decoded = %q, want %q", href, want)
	}
}

func TestResponse_WireLinksKeepAmpersand(t *testing.T) {
	resp := Response{
		Characters: nil,
		TotalPages: 3,
		Next:       PageLink(DefaultLinkPath, 3, "sky"),
		Previous:   PageLink(DefaultLinkPath, 1, "sky"),
	}

	got := encodeWire(t, resp)
	if strings.Contains(got, `\u0026`) {
		t.Errorf("Expected unescaped '&' in links, got %s", got)
	}
	if !strings.Contains(got, `"next":"/api/characters?page=3&search=sky"`) {
		t.Errorf("Expected next link in body, got %s", got)
	}
}
