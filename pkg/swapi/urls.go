package swapi

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the public upstream API root.
const DefaultBaseURL = "https://www.swapi.tech/api"

var personIDPattern = regexp.MustCompile(`/people/(\d+)`)

// knownResources are the path segments used as low-cardinality metric labels.
var knownResources = map[string]bool{
	"people":    true,
	"planets":   true,
	"species":   true,
	"films":     true,
	"starships": true,
	"vehicles":  true,
}

// Endpoints builds upstream URLs relative to a base URL.
type Endpoints struct {
	Base string
}

// NewEndpoints normalizes base and returns an Endpoints.
func NewEndpoints(base string) Endpoints {
	if base == "" {
		base = DefaultBaseURL
	}
	return Endpoints{Base: strings.TrimRight(base, "/")}
}

// People is the paginated person listing.
func (e Endpoints) People() string { return e.Base + "/people" }

// Person is the detail URL of the person with the given id.
func (e Endpoints) Person(id string) string { return e.Base + "/people/" + id }

// Species is the paginated species listing.
func (e Endpoints) Species() string { return e.Base + "/species" }

// Films is the film listing.
func (e Endpoints) Films() string { return e.Base + "/films" }

// Film is the detail URL of the film with the given id.
func (e Endpoints) Film(id string) string { return e.Base + "/films/" + id }

// PersonID extracts the numeric person id from a person URL.
func PersonID(rawURL string) (string, bool) {
	m := personIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ReferencesPerson reports whether any of refs points at the person id.
// Trailing slashes are ignored.
func ReferencesPerson(refs []string, id string) bool {
	if id == "" {
		return false
	}
	suffix := "/people/" + id
	for _, ref := range refs {
		if strings.HasSuffix(strings.TrimRight(ref, "/"), suffix) {
			return true
		}
	}
	return false
}

// EndpointLabel maps a URL to its resource kind ("people", "films", ...)
// for use as a metric label. Unknown paths map to "other".
func EndpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "other"
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if knownResources[seg] {
			return seg
		}
	}
	return "other"
}
