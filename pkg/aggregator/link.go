package aggregator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// Link is a pagination link. It encodes as false when paging is disabled,
// null at a boundary, and the relative URL otherwise.
type Link struct {
	href     string
	disabled bool
}

// DisabledLink is used for every link of an unpaged response.
var DisabledLink = Link{disabled: true}

// NoLink marks a boundary.
var NoLink = Link{}

// PageLink links to page of path, keeping the search term.
func PageLink(path string, page int, search string) Link {
	href := fmt.Sprintf("%s?page=%d", path, page)
	if search != "" {
		href += "&search=" + url.QueryEscape(search)
	}
	return Link{href: href}
}

// MarshalJSON implements json.Marshaler. The href is written without HTML
// escaping so the query separator stays a literal "&".
func (l Link) MarshalJSON() ([]byte, error) {
	switch {
	case l.disabled:
		return []byte("false"), nil
	case l.href == "":
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(l.href); err != nil {
		return nil, fmt.Errorf("pagination link: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
