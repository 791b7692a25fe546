package schema

import (
	"html"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/richtext"
)

// Extract reads an attribute record from root. Every definition gets its
// default first, sourced definitions are then overwritten by whatever the
// first matching descendant yields. Unmatched selectors keep the default.
// Extract never fails: malformed markup was already repaired by the parser,
// values that do not coerce fall back to the default.
func Extract(s *Schema, root markup.Node) Record {
	r := s.Defaults()
	if root == nil {
		return r
	}
	for _, d := range s.definitions {
		if d.Source == nil {
			continue
		}
		match, ok := first(root, d.Source.selector())
		if !ok {
			continue
		}
		raw, ok := read(d, match)
		if !ok {
			continue
		}
		value, ok := coerce(d.Type, raw)
		if !ok {
			continue
		}
		r[d.Name] = value
	}
	return r
}

func first(root markup.Node, selector string) (markup.Node, bool) {
	if selector == "" {
		return root, true
	}
	return root.First(selector)
}

func read(d Definition, match markup.Node) (any, bool) {
	switch src := d.Source.(type) {
	case AttributeSource:
		value, present := match.Attr(src.Attribute)
		if !present {
			return nil, false
		}
		switch d.Type {
		case TypeBoolean:
			// boolean attributes are true by presence
			return value != "false" && value != "0", true
		case TypeHTML:
			return markup.Fragment(html.EscapeString(value)), true
		}
		return value, true
	case ChildrenSource:
		return richtext.FromMarkup(match.Children()), true
	case HTMLSource:
		return match.InnerHTML(), true
	case TextSource:
		return match.Text(), true
	}
	return nil, false
}
