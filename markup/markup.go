// Package markup provides an immutable view on parsed markup fragments.
//
// The tree is backed by golang.org/x/net/html, selector lookups are done with
// goquery. Consumers only see the Node interface, so block schemas and
// transforms never touch parser internals.
package markup

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind of a node
type Kind int

const (
	KindFragment Kind = iota
	KindElement
	KindText
	KindComment
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFragment:
		return "fragment"
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	default:
		return "other"
	}
}

// Fragment is serialized markup
type Fragment string

// Attribute of an element
type Attribute struct {
	Key string `json:"key"`
	Val string `json:"value"`
}

// Node is a read only markup node.
type Node interface {
	Kind() Kind
	// Tag is the lower case element name, empty for anything but elements
	Tag() string
	Attr(name string) (value string, ok bool)
	Attrs() []Attribute
	Children() []Node
	// Text is the concatenated text content of the node and all descendants
	Text() string
	// First returns the first descendant matching selector in document order
	First(selector string) (Node, bool)
	// Find returns all descendants matching selector in document order
	Find(selector string) []Node
	InnerHTML() Fragment
	OuterHTML() Fragment
}

type node struct {
	n *html.Node
}

// Parse a markup fragment. The returned node is a fragment root, all top
// level nodes of the input are its children.
func Parse(r io.Reader) (Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, errParse := html.ParseFragment(r, context)
	if errParse != nil {
		return nil, errParse
	}
	root := newRoot()
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		root.AppendChild(n)
	}
	return &node{n: root}, nil
}

// ParseString is a convenience wrapper for Parse
func ParseString(s string) (Node, error) {
	return Parse(strings.NewReader(s))
}

// MustParse panics on parse errors, meant for tests and static tables
func MustParse(s string) Node {
	n, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Wrap returns a detached fragment root holding a deep copy of n, so that
// selectors can match n itself.
func Wrap(n Node) Node {
	if n == nil {
		return &node{n: newRoot()}
	}
	root := newRoot()
	if hn, ok := n.(*node); ok {
		if hn.n.Type == html.DocumentNode {
			for c := hn.n.FirstChild; c != nil; c = c.NextSibling {
				root.AppendChild(clone(c))
			}
		} else {
			root.AppendChild(clone(hn.n))
		}
		return &node{n: root}
	}
	parsed, err := ParseString(string(n.OuterHTML()))
	if err != nil {
		return &node{n: root}
	}
	return parsed
}

// Unwrap exposes the underlying html node of nodes created by this package.
func Unwrap(n Node) (*html.Node, bool) {
	hn, ok := n.(*node)
	if !ok {
		return nil, false
	}
	return hn.n, true
}

func newRoot() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

func clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(clone(child))
	}
	return c
}

func (n *node) Kind() Kind {
	switch n.n.Type {
	case html.DocumentNode:
		return KindFragment
	case html.ElementNode:
		return KindElement
	case html.TextNode:
		return KindText
	case html.CommentNode:
		return KindComment
	default:
		return KindOther
	}
}

func (n *node) Tag() string {
	if n.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.n.Data)
}

func (n *node) Attr(name string) (value string, ok bool) {
	return getAttrValue(n.n, name)
}

func (n *node) Attrs() []Attribute {
	if len(n.n.Attr) == 0 {
		return nil
	}
	attrs := make([]Attribute, 0, len(n.n.Attr))
	for _, a := range n.n.Attr {
		attrs = append(attrs, Attribute{Key: a.Key, Val: a.Val})
	}
	return attrs
}

func (n *node) Children() []Node {
	children := []Node{}
	for _, c := range getChildren(n.n) {
		children = append(children, &node{n: c})
	}
	return children
}

func (n *node) Text() string {
	if n.n.Type == html.TextNode {
		return n.n.Data
	}
	return goquery.NewDocumentFromNode(n.n).Text()
}

func (n *node) First(selector string) (Node, bool) {
	sel := goquery.NewDocumentFromNode(n.n).Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &node{n: sel.Get(0)}, true
}

func (n *node) Find(selector string) []Node {
	found := []Node{}
	for _, hn := range goquery.NewDocumentFromNode(n.n).Find(selector).Nodes {
		found = append(found, &node{n: hn})
	}
	return found
}

func (n *node) InnerHTML() Fragment {
	return Render(getChildren(n.n)...)
}

func (n *node) OuterHTML() Fragment {
	if n.n.Type == html.DocumentNode {
		return n.InnerHTML()
	}
	return Render(n.n)
}

func (n *node) String() string {
	return string(n.OuterHTML())
}

func getAttrValue(n *html.Node, name string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func getChildren(p *html.Node) (children []*html.Node) {
	if p == nil {
		return
	}
	children = []*html.Node{}
	for child := p.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}
	return
}

// HasText reports whether n contains any non whitespace text
func HasText(n Node) bool {
	return strings.TrimSpace(n.Text()) != ""
}

// Render serializes nodes in order
func Render(nodes ...*html.Node) Fragment {
	var buf bytes.Buffer
	for _, n := range nodes {
		if n == nil {
			continue
		}
		// writes to a bytes.Buffer do not fail
		_ = html.Render(&buf, n)
	}
	return Fragment(buf.String())
}
