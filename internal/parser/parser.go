// Package parser extracts the link structure of a Markdown page and detects
// pages that already carry front matter.
package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/starford/wikihugo/internal/apperr"
)

// LinkNode is one inline link of the parsed document.
type LinkNode struct {
	Anchor      string
	Destination string
	Title       string
}

// frontMatterDelimiters are the openers of YAML, TOML and JSON front matter.
var frontMatterDelimiters = []string{"---", "+++", "{"}

// FrontMatterDelimiter returns the front matter opener data starts with, if any.
func FrontMatterDelimiter(data []byte) (string, bool) {
	for _, delim := range frontMatterDelimiters {
		if bytes.HasPrefix(data, []byte(delim)) {
			return delim, true
		}
	}
	return "", false
}

// Links parses source as CommonMark and returns every link node in document
// order. Each node is reported once even if the walk reaches it again.
func Links(source []byte) ([]LinkNode, error) {
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", apperr.ErrParse)
	}
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))
	if root == nil {
		return nil, fmt.Errorf("%w: no document node", apperr.ErrParse)
	}

	seen := make(map[gmast.Node]struct{})
	var out []LinkNode
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if _, ok := seen[n]; ok {
			return gmast.WalkSkipChildren, nil
		}
		seen[n] = struct{}{}

		link, ok := n.(*gmast.Link)
		if !ok {
			return gmast.WalkContinue, nil
		}
		out = append(out, LinkNode{
			Anchor:      anchorText(link, source),
			Destination: string(link.Destination),
			Title:       string(link.Title),
		})
		return gmast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	return out, nil
}

// anchorText concatenates the literal text below n.
func anchorText(n gmast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *gmast.String:
			b.Write(t.Value)
		default:
			b.WriteString(anchorText(c, source))
		}
	}
	return b.String()
}
