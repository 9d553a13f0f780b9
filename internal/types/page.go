package types

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is one fetched listing page.
type Page struct {
	// URL is the address the page was fetched from.
	URL string

	// PageNum is the 1-based position within the source's listing.
	PageNum int

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the raw (decompressed) response body.
	Body []byte

	// FetchedAt is when the response was received.
	FetchedAt time.Time

	// FetchDuration is how long the fetch took.
	FetchDuration time.Duration

	doc  *goquery.Document
	root *html.Node
}

// Document returns the page parsed as a goquery document, lazily.
func (p *Page) Document() (*goquery.Document, error) {
	if p.doc != nil {
		return p.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	return doc, nil
}

// Root returns the page parsed as an html.Node tree for XPath queries,
// lazily.
func (p *Page) Root() (*html.Node, error) {
	if p.root != nil {
		return p.root, nil
	}
	root, err := html.Parse(strings.NewReader(string(p.Body)))
	if err != nil {
		return nil, err
	}
	p.root = root
	return root, nil
}
