package domain

import "net/url"

// Genre names a category books can belong to.
type Genre struct {
	Record
	Name string `json:"name"`
}

// URL returns the genre's canonical path. Unlike the other records it is
// keyed by name.
func (g *Genre) URL() string {
	return "/catalog/genre/" + url.PathEscape(g.Name)
}
