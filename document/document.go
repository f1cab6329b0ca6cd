package document

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"store-auditor/internal/types"
)

// Page is a parsed storefront document.
// All fields are computed once in Parse; a Page is safe for concurrent reads.
type Page struct {
	Doc  *goquery.Document
	URL  string
	HTML string

	lower   string
	text    string
	anchors []Anchor
}

// Anchor is a link found on the page
type Anchor struct {
	Text string
	Href string
	Path string
	Host string
}

// Parse parses markup into a Page. pageURL is used to resolve relative links.
func Parse(markup, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParse, err)
	}

	page := &Page{
		Doc:   doc,
		URL:   pageURL,
		HTML:  markup,
		lower: strings.ToLower(markup),
	}
	page.text = strings.ToLower(collapseWhitespace(GetText(doc.Find("body").Nodes...)))
	page.anchors = collectAnchors(doc.Find("a[href]"), pageURL)

	return page, nil
}

// LowerHTML returns the raw markup lowercased
func (p *Page) LowerHTML() string {
	return p.lower
}

// Text returns the lowercased visible body text
func (p *Page) Text() string {
	return p.text
}

// Anchors returns every link on the page in document order
func (p *Page) Anchors() []Anchor {
	return p.anchors
}

// Find runs a CSS selector against the document
func (p *Page) Find(selector string) *goquery.Selection {
	return p.Doc.Find(selector)
}

// Has reports whether selector matches at least one element
func (p *Page) Has(selector string) bool {
	return p.Doc.Find(selector).Length() > 0
}

// Count returns the number of elements matching selector
func (p *Page) Count(selector string) int {
	return p.Doc.Find(selector).Length()
}

// ExtractText extracts text from an element using a CSS selector
func (p *Page) ExtractText(selector string) (string, error) {
	element := p.Doc.Find(selector)
	if element.Length() == 0 {
		return "", fmt.Errorf("element not found with selector: %s", selector)
	}

	return strings.TrimSpace(element.First().Text()), nil
}

// ExtractAttribute extracts an attribute value from an element
func (p *Page) ExtractAttribute(selector string, attribute string) (string, error) {
	element := p.Doc.Find(selector)
	if element.Length() == 0 {
		return "", fmt.Errorf("element not found with selector: %s", selector)
	}

	value, exists := element.First().Attr(attribute)
	if !exists {
		return "", fmt.Errorf("attribute %s not found on element %s", attribute, selector)
	}

	return value, nil
}

// IsEmpty reports whether the document has neither a meaningful body nor meaningful markup
func (p *Page) IsEmpty() bool {
	body := p.Doc.Find("body")
	return body.Children().Length() == 0 && len(p.text) < 20 && len(strings.TrimSpace(p.HTML)) < 200
}

// GetText returns the concatenated text of nodes, skipping script, style and noscript content
func GetText(nodes ...*html.Node) string {
	var buffer bytes.Buffer
	for _, node := range nodes {
		getTextRecursive(node, &buffer)
	}
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		buffer.WriteByte(' ')
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func collapseWhitespace(s string) string {
	clean := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			clean.WriteRune(c)
		}
	}
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(clean.String(), " "))
}

func collectAnchors(sel *goquery.Selection, pageURL string) []Anchor {
	base, _ := url.Parse(pageURL)

	anchors := []Anchor{}
	sel.Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		anchors = append(anchors, NewAnchor(base, collapseWhitespace(GetText(s.Nodes...)), href))
	})
	return anchors
}

// NewAnchor resolves href against base and returns the resulting anchor
func NewAnchor(base *url.URL, text, href string) Anchor {
	anchor := Anchor{Text: text, Href: href}
	link, err := url.Parse(href)
	if err != nil {
		return anchor
	}
	if base != nil {
		link = base.ResolveReference(link)
	}
	anchor.Path = strings.ToLower(link.Path)
	anchor.Host = strings.ToLower(link.Hostname())
	return anchor
}
