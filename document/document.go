// Package document reads and writes stored content: a sequence of block
// fragments, each framed by comment delimiters carrying the attributes that
// are not part of the markup
//
//	<!-- wp:core/image {"id":42} --><figure>...</figure><!-- /wp:core/image -->
//	<!-- wp:core/latest-posts {"columns":4} /-->
//
// Markup between delimiters is kept as freeform blocks.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/foomo/blocks"
	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/schema"
	"golang.org/x/net/html"
)

var (
	ErrUnclosedBlock    = errors.New("unclosed block")
	ErrUnexpectedCloser = errors.New("unexpected block closer")
	ErrNestedBlock      = errors.New("nested blocks are not supported")
	ErrInvalidEnvelope  = errors.New("invalid block envelope")
)

const defaultNamespace = "core/"

// comment data of a delimiter, e.g. ` wp:core/image {"id":1} /`
var delimiter = regexp.MustCompile(`(?s)^\s*(/)?wp:([a-z][a-z0-9_-]*(?:/[a-z][a-z0-9_-]*)?)\s+(?:(\{.*\})\s+)?(/)?$`)

type token struct {
	closer      bool
	selfClosing bool
	name        string
	envelope    string
}

func parseDelimiter(data string) (token, bool) {
	m := delimiter.FindStringSubmatch(data)
	if m == nil {
		return token{}, false
	}
	name := m[2]
	if !strings.Contains(name, "/") {
		name = defaultNamespace + name
	}
	return token{
		closer:      m[1] == "/",
		selfClosing: m[4] == "/",
		name:        name,
		envelope:    m[3],
	}, true
}

type parser struct {
	registry  *blocks.Registry
	content   string
	result    []blocks.Block
	freeStart int
	open      *token
	openEnd   int
}

// Parse stored content. Blocks of types missing in the registry are kept
// with their raw fragment and envelope.
func Parse(r *blocks.Registry, content string) ([]blocks.Block, error) {
	p := &parser{registry: r, content: content, result: []blocks.Block{}}
	z := html.NewTokenizer(strings.NewReader(content))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, z.Err()
		}
		start := offset
		offset += len(z.Raw())
		if tt != html.CommentToken {
			continue
		}
		t, ok := parseDelimiter(string(z.Text()))
		if !ok {
			continue
		}
		if err := p.delimiter(t, start, offset); err != nil {
			return nil, err
		}
	}
	if p.open != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnclosedBlock, p.open.name)
	}
	p.freeform(len(content))
	return p.result, nil
}

func (p *parser) delimiter(t token, start, end int) error {
	switch {
	case t.closer:
		if p.open == nil {
			return fmt.Errorf("%w: %q at %d", ErrUnexpectedCloser, t.name, start)
		}
		if p.open.name != t.name {
			return fmt.Errorf("%w: %q at %d closes %q", ErrUnexpectedCloser, t.name, start, p.open.name)
		}
		b, err := p.block(*p.open, markup.Fragment(p.content[p.openEnd:start]))
		if err != nil {
			return err
		}
		p.result = append(p.result, b)
		p.open = nil
		p.freeStart = end
	case p.open != nil:
		return fmt.Errorf("%w: %q inside %q", ErrNestedBlock, t.name, p.open.name)
	case t.selfClosing:
		p.freeform(start)
		b, err := p.block(t, "")
		if err != nil {
			return err
		}
		p.result = append(p.result, b)
		p.freeStart = end
	default:
		p.freeform(start)
		p.open = &t
		p.openEnd = end
	}
	return nil
}

func (p *parser) freeform(end int) {
	raw := strings.TrimSpace(p.content[p.freeStart:end])
	p.freeStart = end
	if raw == "" {
		return
	}
	p.result = append(p.result, blocks.Freeform(markup.Fragment(raw)))
}

func (p *parser) block(t token, fragment markup.Fragment) (blocks.Block, error) {
	envelope := map[string]any{}
	if t.envelope != "" {
		if err := json.Unmarshal([]byte(t.envelope), &envelope); err != nil {
			return blocks.Block{}, fmt.Errorf("%w: %q: %v", ErrInvalidEnvelope, t.name, err)
		}
	}
	bt, err := p.registry.Lookup(t.name)
	if errors.Is(err, blocks.ErrBlockTypeNotFound) {
		return blocks.Block{Name: t.name, Attributes: envelope, Raw: fragment}, nil
	}
	if err != nil {
		return blocks.Block{}, err
	}
	root, err := markup.ParseString(string(fragment))
	if err != nil {
		return blocks.Block{}, err
	}
	attrs := schema.Extract(bt.Schema, root)
	attrs.Merge(schema.Encode(bt.Schema, schema.Decode(bt.Schema, envelope), schema.Unsourced))
	return blocks.Block{Name: bt.Name, Attributes: attrs}, nil
}

// Serialize blocks, separated by blank lines
func Serialize(r *blocks.Registry, content []blocks.Block) (string, error) {
	parts := make([]string, 0, len(content))
	for _, b := range content {
		if b.Freeform() {
			if raw := strings.TrimSpace(string(b.Raw)); raw != "" {
				parts = append(parts, raw)
			}
			continue
		}
		bt, err := r.Lookup(b.Name)
		if errors.Is(err, blocks.ErrBlockTypeNotFound) {
			part, err := frame(b.Name, b.Attributes, b.Raw)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
			continue
		}
		if err != nil {
			return "", err
		}
		fragment, err := r.Serialize(b)
		if err != nil {
			return "", err
		}
		part, err := frame(bt.Name, envelope(bt.Schema, b.Attributes), fragment)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n\n"), nil
}

// envelope holds unsourced attributes that differ from their default
func envelope(s *schema.Schema, attrs schema.Record) map[string]any {
	defaults := s.Defaults()
	values := map[string]any{}
	for name, value := range schema.Encode(s, attrs, schema.Unsourced) {
		if defaultValue, ok := defaults[name]; ok && reflect.DeepEqual(defaultValue, value) {
			continue
		}
		values[name] = value
	}
	return values
}

func frame(name string, values map[string]any, fragment markup.Fragment) (string, error) {
	var sb strings.Builder
	sb.WriteString("<!-- wp:" + name + " ")
	if len(values) > 0 {
		data, err := json.Marshal(values)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidEnvelope, name, err)
		}
		// "--" would end the comment
		sb.WriteString(strings.ReplaceAll(string(data), "--", `\u002d\u002d`))
		sb.WriteString(" ")
	}
	if fragment == "" {
		sb.WriteString("/-->")
		return sb.String(), nil
	}
	sb.WriteString("-->")
	sb.WriteString(string(fragment))
	sb.WriteString("<!-- /wp:" + name + " -->")
	return sb.String(), nil
}
