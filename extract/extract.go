// Package extract turns a static HTML snapshot into a page.Extraction. Two
// interchangeable hosts gather raw element records from the document and a
// shared assembly step converts them, so both produce the same shape.
package extract

import (
	"fmt"
	"net/http"
	"time"

	"github.com/seo-optimizer/seoaudit/page"
)

// Input is one HTML snapshot and what is known about where it came from.
type Input struct {
	HTML    string
	URL     string
	Headers http.Header
	// Now stamps the extraction; zero means time.Now.
	Now time.Time
}

// Extractor produces a page.Extraction from an HTML snapshot.
type Extractor interface {
	Name() string
	Extract(in Input) (page.Extraction, error)
}

const (
	DocumentName = "document"
	NodeName     = "node"
)

// New returns the extractor registered under name.
func New(name string) (Extractor, error) {
	switch name {
	case "", DocumentName:
		return DocumentExtractor{}, nil
	case NodeName:
		return NodeExtractor{}, nil
	}
	return nil, fmt.Errorf("unknown extractor %q", name)
}

// All returns every extractor, used to check the hosts against each other.
func All() []Extractor {
	return []Extractor{DocumentExtractor{}, NodeExtractor{}}
}
