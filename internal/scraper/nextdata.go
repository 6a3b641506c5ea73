package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// finds the Next.js data script in page and returns its JSON text
func ParseNextData(page io.Reader) (string, error) {
	doc, err := html.Parse(page)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	script := findByID(doc, "script", nextDataScriptID)
	if script == nil {
		return "", ErrNextDataNotFound
	}

	var sb strings.Builder
	for c := script.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}

	raw := strings.TrimSpace(sb.String())
	if raw == "" {
		return "", ErrEmptyNextData
	}

	if !gjson.Valid(raw) {
		return "", ErrInvalidNextData
	}

	return raw, nil
}

// returns the curriculum PDF link, resolved against the page url
func AcademicPlanURL(nextData, pageURL string) (string, error) {
	link := strings.TrimSpace(gjson.Get(nextData, "props.pageProps.apiProgram.academic_plan").String())
	if link == "" {
		return "", ErrPlanURLNotFound
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return link, nil //nolint:nilerr // absolute links need no base
	}

	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid academic plan url %q: %w", link, err)
	}

	return base.ResolveReference(ref).String(), nil
}

func findByID(n *html.Node, tag, id string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, tag, id); found != nil {
			return found
		}
	}

	return nil
}
