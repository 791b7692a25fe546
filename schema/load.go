package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlDefinition struct {
	Name      string     `yaml:"name"`
	Type      ValueType  `yaml:"type"`
	Source    SourceKind `yaml:"source"`
	Selector  string     `yaml:"selector"`
	Attribute string     `yaml:"attribute"`
	Default   any        `yaml:"default"`
}

type yamlSchema struct {
	Attributes []yamlDefinition `yaml:"attributes"`
}

// Load a schema from yaml
//
//	attributes:
//	  - name: url
//	    type: string
//	    source: attribute
//	    selector: img
//	    attribute: src
//	  - name: id
//	    type: number
func Load(r io.Reader) (*Schema, error) {
	var doc yamlSchema
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if errDecode := decoder.Decode(&doc); errDecode != nil && !errors.Is(errDecode, io.EOF) {
		return nil, errDecode
	}
	definitions := make([]Definition, 0, len(doc.Attributes))
	for _, yd := range doc.Attributes {
		d := Definition{
			Name:    yd.Name,
			Type:    yd.Type,
			Default: yd.Default,
		}
		switch yd.Source {
		case SourceNone:
		case SourceAttribute:
			d.Source = AttributeSource{Selector: yd.Selector, Attribute: yd.Attribute}
		case SourceChildren:
			d.Source = ChildrenSource{Selector: yd.Selector}
		case SourceHTML:
			d.Source = HTMLSource{Selector: yd.Selector}
		case SourceText:
			d.Source = TextSource{Selector: yd.Selector}
		default:
			return nil, fmt.Errorf("%w: %q has unknown source %q", ErrInvalidDefinition, yd.Name, yd.Source)
		}
		definitions = append(definitions, d)
	}
	return Define(definitions...)
}

// LoadFile loads a schema from a yaml file
func LoadFile(file string) (*Schema, error) {
	yamlBytes, errRead := os.ReadFile(file)
	if errRead != nil {
		return nil, errRead
	}
	s, errLoad := Load(bytes.NewReader(yamlBytes))
	if errLoad != nil {
		return nil, fmt.Errorf("error in file %s: %w", file, errLoad)
	}
	return s, nil
}
