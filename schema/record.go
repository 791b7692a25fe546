package schema

import (
	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/richtext"
)

// Record maps attribute names to typed values: string, float64, bool,
// richtext.Nodes or markup.Fragment
type Record map[string]any

// Has reports whether a value is present
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// String value or ""
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// Number value, ok is false when the number is absent
func (r Record) Number(name string) (float64, bool) {
	f, ok := r[name].(float64)
	return f, ok
}

// Bool value or false
func (r Record) Bool(name string) bool {
	b, _ := r[name].(bool)
	return b
}

// RichText value, never nil
func (r Record) RichText(name string) richtext.Nodes {
	nodes, ok := r[name].(richtext.Nodes)
	if !ok || nodes == nil {
		return richtext.Nodes{}
	}
	return nodes
}

// HTML value or ""
func (r Record) HTML(name string) markup.Fragment {
	f, _ := r[name].(markup.Fragment)
	return f
}

// Merge copies all values of other into r
func (r Record) Merge(other Record) Record {
	for k, v := range other {
		r[k] = v
	}
	return r
}

// Clone returns a shallow copy, values are treated as immutable
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func defaultValue(d Definition) (any, bool) {
	if d.Default != nil {
		return d.Default, true
	}
	switch d.Type {
	case TypeString:
		return "", true
	case TypeBoolean:
		return false, true
	case TypeArray:
		return richtext.Nodes{}, true
	case TypeHTML:
		return markup.Fragment(""), true
	default:
		// numbers are undefined unless declared
		return nil, false
	}
}
