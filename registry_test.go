package blocks

import (
	"testing"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/richtext"
	"github.com/foomo/blocks/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var testFigureSchema = schema.MustDefine(
	schema.Definition{Name: "url", Type: schema.TypeString, Source: schema.AttributeSource{Selector: "img", Attribute: "src"}},
	schema.Definition{Name: "caption", Type: schema.TypeArray, Source: schema.ChildrenSource{Selector: "figcaption"}},
	schema.Definition{Name: "id", Type: schema.TypeNumber},
)

func serializeTestFigure(attrs schema.Record) markup.Fragment {
	var caption *html.Node
	if nodes := attrs.RichText("caption"); !nodes.IsEmpty() {
		caption = markup.Element("figcaption", nil, nodes.HTML()...)
	}
	return markup.Render(markup.Element("figure", nil,
		markup.Element("img", markup.Attrs("src", attrs.String("url"))),
		caption,
	))
}

func testFigureType(name string, transforms ...Transform) BlockType {
	return BlockType{
		Name:       name,
		Title:      "Figure",
		Category:   "common",
		Schema:     testFigureSchema,
		Serialize:  serializeTestFigure,
		Transforms: transforms,
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testFigureType("test/figure")))
	assert.ErrorIs(t, r.Register(testFigureType("test/figure")), ErrDuplicateBlockTypeName)

	assert.ErrorIs(t, r.Register(BlockType{Schema: testFigureSchema, Serialize: serializeTestFigure}), ErrInvalidBlockType)
	assert.ErrorIs(t, r.Register(BlockType{Name: "test/no-schema", Serialize: serializeTestFigure}), ErrInvalidBlockType)
	assert.ErrorIs(t, r.Register(BlockType{Name: "test/no-serializer", Schema: testFigureSchema}), ErrInvalidBlockType)
	assert.ErrorIs(t, r.Register(testFigureType("test/bad-transform", RawTransform{})), ErrInvalidBlockType)
	assert.ErrorIs(t, r.Register(testFigureType("test/bad-files", FilesTransform{})), ErrInvalidBlockType)

	require.NoError(t, r.Register(testFigureType("test/second")))
	r.Freeze()
	assert.ErrorIs(t, r.Register(testFigureType("test/third")), ErrRegistryFrozen)

	names := []string{}
	for _, bt := range r.Types() {
		names = append(names, bt.Name)
	}
	assert.Equal(t, []string{"test/figure", "test/second"}, names)

	bt, err := r.Lookup("test/second")
	require.NoError(t, err)
	assert.Equal(t, "test/second", bt.Name)
	_, err = r.Lookup("test/missing")
	assert.ErrorIs(t, err, ErrBlockTypeNotFound)
}

func TestMustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(testFigureType("test/figure"), testFigureType("test/figure"))
	})
}

func TestSerializeParseRoundTrip(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(testFigureType("test/figure"))

	b, err := r.CreateBlock("test/figure", map[string]any{
		"url":     "a.png",
		"caption": []any{"Hi ", map[string]any{"tag": "em", "children": []any{"there"}}},
		"id":      7,
	})
	require.NoError(t, err)

	fragment, err := r.Serialize(b)
	require.NoError(t, err)
	assert.Equal(t, markup.Fragment(`<figure><img src="a.png"/><figcaption>Hi <em>there</em></figcaption></figure>`), fragment)

	again, err := r.Serialize(b)
	require.NoError(t, err)
	assert.Equal(t, fragment, again)

	parsed, err := r.Parse("test/figure", fragment)
	require.NoError(t, err)
	assert.Equal(t, "a.png", parsed.Attributes.String("url"))
	assert.Equal(t, b.Attributes.RichText("caption"), parsed.Attributes.RichText("caption"))
	// unsourced attributes do not survive markup alone
	assert.False(t, parsed.Attributes.Has("id"))

	_, err = r.CreateBlock("test/missing", nil)
	assert.ErrorIs(t, err, ErrBlockTypeNotFound)
	_, err = r.Serialize(Block{Name: "test/missing"})
	assert.ErrorIs(t, err, ErrBlockTypeNotFound)
}

func TestSerializeOmitsEmptyCaption(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(testFigureType("test/figure"))
	fragment, err := r.Serialize(Block{Name: "test/figure", Attributes: schema.Record{"url": "a.png"}})
	require.NoError(t, err)
	assert.Equal(t, markup.Fragment(`<figure><img src="a.png"/></figure>`), fragment)
}

func TestSerializeFreeform(t *testing.T) {
	r := NewRegistry()
	fragment, err := r.Serialize(Freeform("<p>hello</p>"))
	require.NoError(t, err)
	assert.Equal(t, markup.Fragment("<p>hello</p>"), fragment)
}

func TestCreateBlockDefaults(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(testFigureType("test/figure"))
	b, err := r.CreateBlock("test/figure", nil)
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"url": "", "caption": richtext.Nodes{}}, b.Attributes)
}
