package richtext

import (
	"encoding/json"
	"testing"

	"github.com/foomo/blocks/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMarkup(t *testing.T) {
	root := markup.MustParse(`<figcaption>Hi <em>there</em><!-- note --> <a href="/x">link<br></a></figcaption>`)
	caption, ok := root.First("figcaption")
	require.True(t, ok)

	nodes := FromMarkup(caption.Children())
	assert.Equal(t, Nodes{
		Text("Hi "),
		Element("em", nil, Text("there")),
		Text(" "),
		Element("a", markup.Attrs("href", "/x"), Text("link"), Element("br", nil)),
	}, nodes)
	assert.Equal(t, "Hi there link", nodes.PlainText())
}

func TestFromMarkupEmpty(t *testing.T) {
	assert.Equal(t, Nodes{}, FromMarkup(nil))
	assert.True(t, FromMarkup(nil).IsEmpty())
}

func TestRenderRoundTrip(t *testing.T) {
	nodes := Nodes{
		Text("a < b "),
		Element("strong", nil, Text("bold"), Element("em", nil, Text("both"))),
		Element("a", markup.Attrs("href", "https://example.com/?a=1&b=2"), Text("x")),
	}
	rendered := nodes.Render()
	assert.Equal(t,
		markup.Fragment(`a &lt; b <strong>bold<em>both</em></strong><a href="https://example.com/?a=1&amp;b=2">x</a>`),
		rendered,
	)
	root := markup.MustParse("<figcaption>" + string(rendered) + "</figcaption>")
	caption, ok := root.First("figcaption")
	require.True(t, ok)
	assert.Equal(t, nodes, FromMarkup(caption.Children()))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t,
		Nodes{Text("ab"), Element("em", nil, Text("cd"))},
		Nodes{Text("a"), Text(""), Text("b"), Element("em", []markup.Attribute{}, Text("c"), Text("d"))}.Normalize(),
	)
	assert.Equal(t, Nodes{}, Nodes{Text("")}.Normalize())
}

func TestJSON(t *testing.T) {
	nodes := Nodes{Text("Hi "), Element("a", markup.Attrs("href", "/x"), Text("there"))}
	data, err := json.Marshal(nodes)
	require.NoError(t, err)
	assert.JSONEq(t, `["Hi ",{"tag":"a","attrs":[{"key":"href","value":"/x"}],"children":["there"]}]`, string(data))

	var decoded Nodes
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, nodes, decoded)

	assert.ErrorIs(t, json.Unmarshal([]byte(`[1]`), &decoded), ErrInvalidNode)
	assert.ErrorIs(t, json.Unmarshal([]byte(`[{"children":[]}]`), &decoded), ErrInvalidNode)
}
