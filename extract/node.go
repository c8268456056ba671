package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/seo-optimizer/seoaudit/page"
)

// NodeExtractor walks the parsed node tree directly.
type NodeExtractor struct{}

func (NodeExtractor) Name() string { return NodeName }

func (NodeExtractor) Extract(in Input) (page.Extraction, error) {
	root, err := html.Parse(strings.NewReader(in.HTML))
	if err != nil {
		return page.Extraction{}, fmt.Errorf("parse document: %w", err)
	}

	var raw rawPage
	walk(root, &raw)
	return assemble(raw, in), nil
}

func walk(n *html.Node, raw *rawPage) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Template:
			return
		case atom.Html:
			if raw.lang == "" {
				raw.lang = attrsOf(n).value("lang")
			}
		case atom.Title:
			if !raw.hasTitle {
				raw.title = textContent(n)
				raw.hasTitle = true
			}
		case atom.Meta:
			raw.metas = append(raw.metas, attrsOf(n))
		case atom.Link:
			raw.links = append(raw.links, attrsOf(n))
		case atom.Img:
			raw.images = append(raw.images, attrsOf(n))
		case atom.A:
			if a := attrsOf(n); a.has("href") {
				raw.anchors = append(raw.anchors, anchor{attrs: a, text: textContent(n)})
			}
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			raw.headings = append(raw.headings, heading{tag: n.Data, text: textContent(n)})
		case atom.Script:
			if isJSONLD(attrsOf(n)) {
				raw.jsonLD = append(raw.jsonLD, textContent(n))
			}
		case atom.Body:
			raw.bodyText = collectText(n, raw.bodyText)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, raw)
	}
}

// textContent concatenates every descendant text node.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func collectText(n *html.Node, parts []string) []string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			parts = append(parts, c.Data)
		case c.Type == html.ElementNode && hiddenElements[c.Data]:
		default:
			parts = collectText(c, parts)
		}
	}
	return parts
}
