package domain

import "strings"

// Generator identifies the software that produced a feed
type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// String renders the generator as "name version (url)", leaving out the
// parts that are empty.
func (g Generator) String() string {
	s := strings.TrimSpace(g.Name + " " + g.Version)
	if g.URL != "" {
		s = strings.TrimSpace(s + " (" + g.URL + ")")
	}
	return s
}
