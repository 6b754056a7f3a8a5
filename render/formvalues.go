package render

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// FormValues extracts what a browser would submit for the rendered markup,
// in document order. Disabled controls, unchecked radios and buttons are
// left out.
func FormValues(markup string) (url.Values, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	values := url.Values{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "input":
				collectInput(n, values)
			case "select":
				collectSelect(n, values)
				return
			case "textarea":
				if name := attr(n, "name"); name != "" && !hasAttr(n, "disabled") {
					values.Add(name, textContent(n))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return values, nil
}

func collectInput(n *html.Node, values url.Values) {
	name := attr(n, "name")
	if name == "" || hasAttr(n, "disabled") {
		return
	}
	switch strings.ToLower(attr(n, "type")) {
	case "submit", "button", "image", "reset", "file":
		return
	case "radio", "checkbox":
		if !hasAttr(n, "checked") {
			return
		}
		value := attr(n, "value")
		if !hasAttr(n, "value") {
			value = "on"
		}
		values.Add(name, value)
	default:
		values.Add(name, attr(n, "value"))
	}
}

func collectSelect(n *html.Node, values url.Values) {
	name := attr(n, "name")
	if name == "" || hasAttr(n, "disabled") {
		return
	}
	var first, selected *html.Node
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == "option" {
			if first == nil {
				first = c
			}
			if selected == nil && hasAttr(c, "selected") {
				selected = c
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	if selected == nil {
		selected = first
	}
	if selected == nil {
		return
	}
	value := textContent(selected)
	if hasAttr(selected, "value") {
		value = attr(selected, "value")
	}
	values.Add(name, value)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return sb.String()
}
