package schema

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/richtext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestdataDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "testdata")
}

var imageSchema = MustDefine(
	Definition{Name: "url", Type: TypeString, Source: AttributeSource{Selector: "img", Attribute: "src"}},
	Definition{Name: "alt", Type: TypeString, Source: AttributeSource{Selector: "img", Attribute: "alt"}},
	Definition{Name: "caption", Type: TypeArray, Source: ChildrenSource{Selector: "figcaption"}},
	Definition{Name: "href", Type: TypeString, Source: AttributeSource{Selector: "a", Attribute: "href"}},
	Definition{Name: "width", Type: TypeNumber, Source: AttributeSource{Selector: "img", Attribute: "width"}},
	Definition{Name: "lazy", Type: TypeBoolean, Source: AttributeSource{Selector: "img", Attribute: "data-lazy"}},
	Definition{Name: "id", Type: TypeNumber},
	Definition{Name: "align", Type: TypeString},
)

func TestDefine(t *testing.T) {
	_, err := Define(
		Definition{Name: "url", Type: TypeString},
		Definition{Name: "url", Type: TypeNumber},
	)
	assert.ErrorIs(t, err, ErrDuplicateAttributeName)

	_, err = Define(Definition{Name: "url", Type: TypeString, Source: AttributeSource{Selector: "img[", Attribute: "src"}})
	assert.ErrorIs(t, err, ErrInvalidSelector)

	_, err = Define(Definition{Name: "url", Type: "date"})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = Define(Definition{Name: "columns", Type: TypeNumber, Default: true})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	s, err := Define(Definition{Name: "columns", Type: TypeNumber, Default: 3})
	require.NoError(t, err)
	d, ok := s.Definition("columns")
	require.True(t, ok)
	assert.Equal(t, 3.0, d.Default)
	assert.False(t, d.Sourced())
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, Record{
		"url":     "",
		"alt":     "",
		"caption": richtext.Nodes{},
		"href":    "",
		"lazy":    false,
		"align":   "",
	}, imageSchema.Defaults())
}

func TestExtract(t *testing.T) {
	root := markup.MustParse(`<figure><a href="/big.png"><img src="a.png" alt="A" width="300px" data-lazy></a><figcaption>Hi <em>there</em></figcaption></figure>`)
	r := Extract(imageSchema, root)
	assert.Equal(t, "a.png", r.String("url"))
	assert.Equal(t, "A", r.String("alt"))
	assert.Equal(t, "/big.png", r.String("href"))
	assert.Equal(t, richtext.Nodes{richtext.Text("Hi "), richtext.Element("em", nil, richtext.Text("there"))}, r.RichText("caption"))
	width, ok := r.Number("width")
	assert.True(t, ok)
	assert.Equal(t, 300.0, width)
	assert.True(t, r.Bool("lazy"))
	assert.False(t, r.Has("id"))
}

func TestExtractMissing(t *testing.T) {
	r := Extract(imageSchema, markup.MustParse(`<p>no image here</p>`))
	assert.Equal(t, imageSchema.Defaults(), r)

	r = Extract(imageSchema, markup.MustParse(`<img src="a.png" width="wide" data-lazy="false">`))
	assert.Equal(t, "a.png", r.String("url"))
	assert.False(t, r.Has("width"))
	assert.False(t, r.Bool("lazy"))
}

func TestExtractFirstMatch(t *testing.T) {
	r := Extract(imageSchema, markup.MustParse(`<div><img src="first.png"></div><img src="second.png">`))
	assert.Equal(t, "first.png", r.String("url"))
}

func TestExtractOtherSources(t *testing.T) {
	s := MustDefine(
		Definition{Name: "content", Type: TypeHTML, Source: HTMLSource{Selector: "blockquote"}},
		Definition{Name: "citation", Type: TypeString, Source: TextSource{Selector: "cite"}},
		Definition{Name: "body", Type: TypeString, Source: ChildrenSource{Selector: "p"}},
	)
	r := Extract(s, markup.MustParse(`<blockquote><p>To <b>be</b></p><cite>Someone</cite></blockquote>`))
	assert.Equal(t, markup.Fragment(`<p>To <b>be</b></p><cite>Someone</cite>`), r.HTML("content"))
	assert.Equal(t, "Someone", r.String("citation"))
	assert.Equal(t, "To be", r.String("body"))
}

func TestParseNumber(t *testing.T) {
	for input, expected := range map[string]float64{
		"300":    300,
		"300px":  300,
		" 12.5%": 12.5,
		"-4":     -4,
		".5em":   0.5,
		"1e3":    1000,
	} {
		f, ok := ParseNumber(input)
		assert.True(t, ok, input)
		assert.Equal(t, expected, f, input)
	}
	for _, input := range []string{"", "px", "auto", "-"} {
		_, ok := ParseNumber(input)
		assert.False(t, ok, input)
	}
}

func TestDecode(t *testing.T) {
	r := Decode(imageSchema, map[string]any{
		"url":     "a.png",
		"id":      float64(42),
		"width":   "640",
		"caption": []any{"Hi ", map[string]any{"tag": "em", "children": []any{"there"}}},
		"align":   12,
		"lazy":    nil,
		"unknown": "ignored",
	})
	assert.Equal(t, "a.png", r.String("url"))
	id, _ := r.Number("id")
	assert.Equal(t, 42.0, id)
	width, _ := r.Number("width")
	assert.Equal(t, 640.0, width)
	assert.Equal(t, richtext.Nodes{richtext.Text("Hi "), richtext.Element("em", nil, richtext.Text("there"))}, r.RichText("caption"))
	assert.Equal(t, "12", r.String("align"))
	assert.False(t, r.Bool("lazy"))
	assert.False(t, r.Has("unknown"))
}

func TestEncodeUnsourced(t *testing.T) {
	r := imageSchema.Defaults()
	r["url"] = "a.png"
	r["id"] = 42.0
	assert.Equal(t, map[string]any{"id": 42.0, "align": ""}, Encode(imageSchema, r, Unsourced))
}

func TestLoadFile(t *testing.T) {
	s, err := LoadFile(filepath.Join(getTestdataDir(), "image.yml"))
	require.NoError(t, err)
	names := []string{}
	for _, d := range s.Definitions() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"url", "alt", "caption", "width", "columns"}, names)
	assert.Equal(t, Record{
		"url":     "",
		"alt":     "",
		"caption": richtext.Nodes{},
		"columns": 3.0,
	}, s.Defaults())

	r := Extract(s, markup.MustParse(`<img src="a.png" alt="A">`))
	assert.Equal(t, "a.png", r.String("url"))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader("attributes:\n  - name: url\n    type: string\n    source: magic\n"))
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	_, err = Load(strings.NewReader("attributes:\n  - name: url\n    typo: string\n"))
	assert.Error(t, err)

	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Definitions())
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, imageSchema, Extract(imageSchema, markup.MustParse(`<img src="a.png">`)))
	out := buf.String()
	assert.Contains(t, out, "attribute(img@src)")
	assert.Contains(t, out, "a.png")
	assert.Contains(t, out, "undefined")
}
