package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element builds a detached element. nil children are skipped, which keeps
// conditional wrappers in serializers flat.
func Element(tag string, attrs []Attribute, children ...*html.Node) *html.Node {
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, a := range attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range children {
		appendChild(el, c)
	}
	return el
}

// Group holds several top level nodes, it renders as its children
func Group(children ...*html.Node) *html.Node {
	g := newRoot()
	for _, c := range children {
		appendChild(g, c)
	}
	return g
}

// Text builds a detached text node
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Nodes returns detached copies of the top level nodes of a parsed fragment
func Nodes(f Fragment) []*html.Node {
	if strings.TrimSpace(string(f)) == "" {
		return nil
	}
	parsed, err := ParseString(string(f))
	if err != nil {
		return nil
	}
	root, _ := Unwrap(parsed)
	nodes := []*html.Node{}
	for _, c := range getChildren(root) {
		nodes = append(nodes, clone(c))
	}
	return nodes
}

// Attrs builds an attribute list from key value pairs, pairs with an empty
// value are dropped
func Attrs(kv ...string) []Attribute {
	attrs := []Attribute{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		attrs = append(attrs, Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return attrs
}

func appendChild(parent, child *html.Node) {
	if child == nil {
		return
	}
	if child.Type == html.DocumentNode {
		for _, c := range getChildren(child) {
			child.RemoveChild(c)
			parent.AppendChild(c)
		}
		return
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
}
