// Package richtext models ordered sequences of rich-text nodes: text runs and
// inline markers (emphasis, links, ...) that nest further nodes.
package richtext

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/foomo/blocks/markup"
	"golang.org/x/net/html"
)

// ErrInvalidNode is returned when decoding JSON that is neither a string nor
// an element object
var ErrInvalidNode = errors.New("rich text node must be a string or an element object")

// Node is either a text run (Tag == "") or an inline marker
type Node struct {
	Text     string
	Tag      string
	Attrs    []markup.Attribute
	Children Nodes
}

// Nodes is an ordered rich-text sequence
type Nodes []Node

// Text creates a text run
func Text(s string) Node {
	return Node{Text: s}
}

// Element creates an inline marker
func Element(tag string, attrs []markup.Attribute, children ...Node) Node {
	return Node{Tag: tag, Attrs: attrs, Children: children}
}

// IsText reports whether n is a text run
func (n Node) IsText() bool {
	return n.Tag == ""
}

// FromMarkup converts markup nodes, usually the children of a matched element.
// Comments are dropped, text runs and elements keep their order.
func FromMarkup(nodes []markup.Node) Nodes {
	converted := fromMarkup(nodes)
	if converted == nil {
		return Nodes{}
	}
	return converted
}

func fromMarkup(nodes []markup.Node) Nodes {
	var converted Nodes
	for _, n := range nodes {
		switch n.Kind() {
		case markup.KindText:
			converted = append(converted, Text(n.Text()))
		case markup.KindElement:
			converted = append(converted, Node{
				Tag:      n.Tag(),
				Attrs:    n.Attrs(),
				Children: fromMarkup(n.Children()),
			})
		}
	}
	return converted
}

// HTML builds detached html nodes for the sequence
func (ns Nodes) HTML() []*html.Node {
	nodes := make([]*html.Node, 0, len(ns))
	for _, n := range ns {
		if n.IsText() {
			nodes = append(nodes, markup.Text(n.Text))
			continue
		}
		nodes = append(nodes, markup.Element(n.Tag, n.Attrs, n.Children.HTML()...))
	}
	return nodes
}

// Render serializes the sequence
func (ns Nodes) Render() markup.Fragment {
	return markup.Render(ns.HTML()...)
}

// PlainText concatenates all text runs
func (ns Nodes) PlainText() string {
	var sb strings.Builder
	for _, n := range ns {
		if n.IsText() {
			sb.WriteString(n.Text)
			continue
		}
		sb.WriteString(n.Children.PlainText())
	}
	return sb.String()
}

// IsEmpty reports whether the sequence holds no nodes at all
func (ns Nodes) IsEmpty() bool {
	return len(ns) == 0
}

// Normalize merges adjacent text runs and drops empty ones, which is the
// shape a markup parser produces. Empty sequences normalize to Nodes{}.
func (ns Nodes) Normalize() Nodes {
	normalized := normalize(ns)
	if normalized == nil {
		return Nodes{}
	}
	return normalized
}

func normalize(ns Nodes) Nodes {
	var out Nodes
	for _, n := range ns {
		if n.IsText() {
			if n.Text == "" {
				continue
			}
			if len(out) > 0 && out[len(out)-1].IsText() {
				out[len(out)-1].Text += n.Text
				continue
			}
			out = append(out, Text(n.Text))
			continue
		}
		if len(n.Attrs) == 0 {
			n.Attrs = nil
		}
		n.Children = normalize(n.Children)
		out = append(out, n)
	}
	return out
}

type jsonElement struct {
	Tag      string             `json:"tag"`
	Attrs    []markup.Attribute `json:"attrs,omitempty"`
	Children Nodes              `json:"children,omitempty"`
}

// MarshalJSON encodes text runs as strings and markers as objects
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsText() {
		return json.Marshal(n.Text)
	}
	return json.Marshal(jsonElement{Tag: n.Tag, Attrs: n.Attrs, Children: n.Children})
}

// UnmarshalJSON is the inverse of MarshalJSON
func (n *Node) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ErrInvalidNode
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = Text(s)
		return nil
	case '{':
		var el jsonElement
		if err := json.Unmarshal(trimmed, &el); err != nil {
			return err
		}
		if el.Tag == "" {
			return ErrInvalidNode
		}
		*n = Node{Tag: el.Tag, Attrs: el.Attrs, Children: el.Children}
		return nil
	default:
		return ErrInvalidNode
	}
}
