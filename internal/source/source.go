package source

import (
	"fmt"
	"net/url"
	"regexp"
)

// Selectors locates the product card and its fields in a rendered
// listing page. All fields are CSS selectors; OriginalPrice and Image
// may be empty when a source never exposes them.
type Selectors struct {
	Card          string
	Name          string
	Price         string
	OriginalPrice string
	Image         string
	Link          string
}

// Config is the full declarative description of one retail source.
// Adapters differ only in this record; the extraction algorithm is
// shared.
type Config struct {
	Key           string
	Store         string
	Prefix        string
	BaseURL       string
	SearchPath    string // printf template, %s receives the escaped query
	ReadySelector string
	Selectors     Selectors
	IDPattern     *regexp.Regexp
}

// BuildSearchURL returns the absolute search URL for a query.
func (c Config) BuildSearchURL(query string) string {
	return c.BaseURL + fmt.Sprintf(c.SearchPath, url.QueryEscape(query))
}
