// Package schema describes block attributes and extracts attribute records
// from markup.
package schema

import (
	"errors"
	"fmt"

	"github.com/andybalholm/cascadia"
)

var (
	// ErrDuplicateAttributeName two definitions share a name
	ErrDuplicateAttributeName = errors.New("duplicate attribute name")
	// ErrInvalidSelector a source selector does not compile
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrInvalidDefinition a definition is incomplete or its default does not fit its type
	ErrInvalidDefinition = errors.New("invalid attribute definition")
)

// ValueType of an attribute
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
	// TypeArray is an array of rich-text nodes
	TypeArray ValueType = "array"
	// TypeHTML is raw markup
	TypeHTML ValueType = "html"
)

func (t ValueType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeHTML:
		return true
	}
	return false
}

// SourceKind names a source rule variant
type SourceKind string

const (
	SourceNone      SourceKind = ""
	SourceAttribute SourceKind = "attribute"
	SourceChildren  SourceKind = "children"
	SourceHTML      SourceKind = "html"
	SourceText      SourceKind = "text"
)

// Source locates an attribute value in markup. A nil Source means the value
// is not derived from markup at all and has to be persisted out of band.
type Source interface {
	Kind() SourceKind
	selector() string
}

// AttributeSource reads a literal attribute from the first descendant
// matching Selector. An empty Selector reads from the root.
type AttributeSource struct {
	Selector  string
	Attribute string
}

// ChildrenSource reads the rich-text children of the first match
type ChildrenSource struct {
	Selector string
}

// HTMLSource reads the inner markup of the first match
type HTMLSource struct {
	Selector string
}

// TextSource reads the text content of the first match
type TextSource struct {
	Selector string
}

func (s AttributeSource) Kind() SourceKind { return SourceAttribute }
func (s AttributeSource) selector() string { return s.Selector }
func (s AttributeSource) String() string   { return "attribute(" + s.Selector + "@" + s.Attribute + ")" }

func (s ChildrenSource) Kind() SourceKind { return SourceChildren }
func (s ChildrenSource) selector() string { return s.Selector }
func (s ChildrenSource) String() string   { return "children(" + s.Selector + ")" }

func (s HTMLSource) Kind() SourceKind { return SourceHTML }
func (s HTMLSource) selector() string { return s.Selector }
func (s HTMLSource) String() string   { return "html(" + s.Selector + ")" }

func (s TextSource) Kind() SourceKind { return SourceText }
func (s TextSource) selector() string { return s.Selector }
func (s TextSource) String() string   { return "text(" + s.Selector + ")" }

// Definition of a single attribute
type Definition struct {
	Name   string
	Type   ValueType
	Source Source
	// Default overrides the type default, nil keeps it
	Default any
}

// Sourced reports whether the value is derived from markup
func (d Definition) Sourced() bool {
	return d.Source != nil
}

// Schema is an immutable, ordered set of attribute definitions
type Schema struct {
	definitions []Definition
	index       map[string]int
}

// Define validates definitions and builds a schema. Names must be unique,
// selectors must compile and defaults must fit the declared type.
func Define(definitions ...Definition) (*Schema, error) {
	s := &Schema{
		definitions: make([]Definition, 0, len(definitions)),
		index:       make(map[string]int, len(definitions)),
	}
	for _, d := range definitions {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: missing name", ErrInvalidDefinition)
		}
		if _, exists := s.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAttributeName, d.Name)
		}
		if !d.Type.valid() {
			return nil, fmt.Errorf("%w: %q has unknown type %q", ErrInvalidDefinition, d.Name, d.Type)
		}
		if d.Source != nil {
			if sel := d.Source.selector(); sel != "" {
				if _, errCompile := cascadia.Compile(sel); errCompile != nil {
					return nil, fmt.Errorf("%w: %q for %q: %v", ErrInvalidSelector, sel, d.Name, errCompile)
				}
			}
			if src, ok := d.Source.(AttributeSource); ok && src.Attribute == "" {
				return nil, fmt.Errorf("%w: %q reads an attribute without a name", ErrInvalidDefinition, d.Name)
			}
		}
		if d.Default != nil {
			value, ok := coerce(d.Type, d.Default)
			if !ok {
				return nil, fmt.Errorf("%w: default %v does not fit %q of type %q", ErrInvalidDefinition, d.Default, d.Name, d.Type)
			}
			d.Default = value
		}
		s.index[d.Name] = len(s.definitions)
		s.definitions = append(s.definitions, d)
	}
	return s, nil
}

// MustDefine is Define for static tables, it panics on invalid definitions
func MustDefine(definitions ...Definition) *Schema {
	s, err := Define(definitions...)
	if err != nil {
		panic(err)
	}
	return s
}

// Definitions in declaration order
func (s *Schema) Definitions() []Definition {
	definitions := make([]Definition, len(s.definitions))
	copy(definitions, s.definitions)
	return definitions
}

// Definition by name
func (s *Schema) Definition(name string) (Definition, bool) {
	i, ok := s.index[name]
	if !ok {
		return Definition{}, false
	}
	return s.definitions[i], true
}

// Defaults returns a record holding every default value. Numbers without a
// declared default stay absent.
func (s *Schema) Defaults() Record {
	r := make(Record, len(s.definitions))
	for _, d := range s.definitions {
		if value, ok := defaultValue(d); ok {
			r[d.Name] = value
		}
	}
	return r
}
