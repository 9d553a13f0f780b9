package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"bustedscan/internal/types"
)

// Block is one candidate entry: a markup fragment hypothesized to
// represent a single record before field extraction confirms it.
type Block interface {
	// NameText returns the text of the first name/title-like
	// sub-element, or "".
	NameText() string

	// ImageURL returns the src of the first image in the block, or "".
	ImageURL() string

	// Text returns the block's flattened text content.
	Text() string
}

// BlockMatcher classifies candidate entry blocks within a page. The
// page markup class names are not contractually stable, so matchers
// are tried in ranked order and the first one yielding any candidates
// wins.
type BlockMatcher interface {
	// Name returns the matcher's identifier.
	Name() string

	// Match returns the candidate blocks found on the page.
	Match(page *types.Page) ([]Block, error)
}

// DefaultMatchers returns the ranked matcher list: entry-class blocks
// first, generic post blocks as the fallback.
func DefaultMatchers() []BlockMatcher {
	return []BlockMatcher{
		&ClassMatcher{},
		&PostMatcher{},
	}
}

var (
	entryClassRe = regexp.MustCompile(`(?i)(mugshot|booking|arrest)`)
	nameClassRe  = regexp.MustCompile(`(?i)(name|title)`)
)

// ClassMatcher finds article/div blocks whose class attribute looks
// like an arrest entry.
type ClassMatcher struct{}

func (m *ClassMatcher) Name() string { return "entry_class" }

func (m *ClassMatcher) Match(page *types.Page) ([]Block, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, &types.ParseError{URL: page.URL, Err: err}
	}

	var blocks []Block
	doc.Find("article, div").Each(func(_ int, sel *goquery.Selection) {
		cls, ok := sel.Attr("class")
		if !ok || !entryClassRe.MatchString(cls) {
			return
		}
		blocks = append(blocks, &selectionBlock{sel: sel})
	})
	return blocks, nil
}

// selectionBlock adapts a goquery selection to Block.
type selectionBlock struct {
	sel *goquery.Selection
}

func (b *selectionBlock) NameText() string {
	name := b.sel.Find("h2, h3, a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		cls, ok := s.Attr("class")
		return ok && nameClassRe.MatchString(cls)
	}).First()
	return strings.TrimSpace(name.Text())
}

func (b *selectionBlock) ImageURL() string {
	src, _ := b.sel.Find("img").First().Attr("src")
	return src
}

func (b *selectionBlock) Text() string {
	return b.sel.Text()
}

// PostMatcher is the fallback: generic post-classed divs, located via
// XPath since class tokens (not substrings) are what distinguish them.
type PostMatcher struct{}

func (m *PostMatcher) Name() string { return "post" }

const postExpr = `//div[contains(concat(" ", normalize-space(@class), " "), " post ")]`

func (m *PostMatcher) Match(page *types.Page) ([]Block, error) {
	root, err := page.Root()
	if err != nil {
		return nil, &types.ParseError{URL: page.URL, Err: err}
	}

	nodes, err := htmlquery.QueryAll(root, postExpr)
	if err != nil {
		return nil, &types.ParseError{URL: page.URL, Err: err}
	}

	blocks := make([]Block, 0, len(nodes))
	for _, node := range nodes {
		blocks = append(blocks, &nodeBlock{node: node})
	}
	return blocks, nil
}

// nodeBlock adapts an html.Node to Block.
type nodeBlock struct {
	node *html.Node
}

func (b *nodeBlock) NameText() string {
	nodes, err := htmlquery.QueryAll(b.node, `.//h2|.//h3|.//a`)
	if err != nil {
		return ""
	}
	for _, n := range nodes {
		if nameClassRe.MatchString(htmlquery.SelectAttr(n, "class")) {
			return strings.TrimSpace(htmlquery.InnerText(n))
		}
	}
	return ""
}

func (b *nodeBlock) ImageURL() string {
	img, err := htmlquery.Query(b.node, `.//img`)
	if err != nil || img == nil {
		return ""
	}
	return htmlquery.SelectAttr(img, "src")
}

func (b *nodeBlock) Text() string {
	return htmlquery.InnerText(b.node)
}
