package response

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
)

// Document parses the body as HTML. The document is built once and cached.
func (r *Response) Document() (*goquery.Document, error) {
	r.docOnce.Do(func() {
		text, err := r.Text()
		if err != nil {
			r.docErr = err
			return
		}
		r.doc, r.docErr = goquery.NewDocumentFromReader(strings.NewReader(text))
		if r.docErr != nil {
			r.docErr = fmt.Errorf("failed to parse HTML: %w", r.docErr)
		}
	})
	return r.doc, r.docErr
}

// Title returns the trimmed text of the first <title>, or "".
func (r *Response) Title() string {
	doc, err := r.Document()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Links returns the href of every anchor, as written in the page. Feed
// them back to Session.Get, which resolves them against the session host.
func (r *Response) Links() []string {
	doc, err := r.Document()
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		links = append(links, href)
	})
	return links
}

// XPath evaluates expr against the body and returns the inner text of
// every matching node.
func (r *Response) XPath(expr string) ([]string, error) {
	text, err := r.Text()
	if err != nil {
		return nil, err
	}

	root, err := htmlquery.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}

	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, strings.TrimSpace(htmlquery.InnerText(n)))
	}
	return out, nil
}

// PlainText strips every tag from the body and collapses whitespace.
func (r *Response) PlainText() string {
	text, err := r.Text()
	if err != nil {
		text = r.Body
	}
	stripped := bluemonday.StrictPolicy().Sanitize(text)
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}
