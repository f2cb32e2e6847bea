package swapi

// BaseEntity is one primary entity (a person) as it appears in the listing.
// Values are immutable once fetched.
type BaseEntity struct {
	ID   string `json:"uid"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// ResourceRef is a listing item of any resource kind.
type ResourceRef struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListPage is one page of a paginated listing endpoint.
type ListPage[T any] struct {
	Results []T     `json:"results"`
	Next    *string `json:"next"`
}

// NextURL returns the next page URL or "" at the end of the listing.
func (p *ListPage[T]) NextURL() string {
	if p == nil || p.Next == nil {
		return ""
	}
	return *p.Next
}

// Resource is the payload of a detail response.
type Resource[T any] struct {
	UID        string `json:"uid"`
	Properties T      `json:"properties"`
}

// Detail is the envelope of every detail endpoint.
type Detail[T any] struct {
	Result *Resource[T] `json:"result"`
}

// PersonProperties are the attributes of a person detail record.
// Films and Species are absent in newer upstream versions.
type PersonProperties struct {
	Name      string   `json:"name"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	URL       string   `json:"url"`
}

// PlanetProperties are the attributes of a planet detail record.
type PlanetProperties struct {
	Name string `json:"name"`
}

// SpeciesProperties are the attributes of a species detail record.
type SpeciesProperties struct {
	Name   string   `json:"name"`
	People []string `json:"people"`
	URL    string   `json:"url"`
}

// FilmProperties are the attributes of a film detail record.
type FilmProperties struct {
	Title      string   `json:"title"`
	Characters []string `json:"characters"`
	URL        string   `json:"url"`
}

// FilmListing is the response of the film listing endpoint.
type FilmListing struct {
	Result  []Resource[FilmProperties] `json:"result"`
	Results []Resource[FilmProperties] `json:"results"`
}

// Items returns the listed films regardless of which key carried them.
func (l *FilmListing) Items() []Resource[FilmProperties] {
	if len(l.Result) > 0 {
		return l.Result
	}
	return l.Results
}
