// Package paste prepares pasted input for transform matching: markdown is
// converted, markup is sanitized and minified before it is parsed.
package paste

import (
	"regexp"

	"github.com/foomo/blocks/markup"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

type Options struct {
	Sanitize bool
	Minify   bool
	// Markdown converts input that looks like markdown and holds no markup
	Markdown bool
}

func DefaultOptions() Options {
	return Options{Sanitize: true, Minify: true, Markdown: true}
}

// Normalizer of pasted input, safe for concurrent use
type Normalizer struct {
	options  Options
	policy   *bluemonday.Policy
	minifier *minify.M
}

func NewNormalizer(options Options) *Normalizer {
	minifier := minify.New()
	minifier.Add("text/html", &html.Minifier{KeepEndTags: true, KeepQuotes: true})
	return &Normalizer{
		options:  options,
		policy:   Policy(),
		minifier: minifier,
	}
}

var alignClass = regexp.MustCompile(`^align(left|right|center|wide|full)$`)

// Policy is a user generated content policy that keeps figures with
// captions and alignment classes
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("figure", "figcaption")
	p.AllowAttrs("class").Matching(alignClass).OnElements("figure")
	p.AllowStyles("width").Matching(regexp.MustCompile(`^\d+(\.\d+)?px$`)).OnElements("figure")
	return p
}

// Normalize pasted input into a markup tree
func (n *Normalizer) Normalize(input string) (markup.Node, error) {
	if n.options.Markdown && LooksLikeMarkdown(input) {
		root, err := markup.FromMarkdown([]byte(input))
		if err != nil {
			return nil, err
		}
		input = string(root.InnerHTML())
	}
	if n.options.Sanitize {
		input = n.policy.Sanitize(input)
	}
	if n.options.Minify {
		minified, err := n.minifier.String("text/html", input)
		if err != nil {
			return nil, err
		}
		input = minified
	}
	return markup.ParseString(input)
}

var (
	anyTag         = regexp.MustCompile(`<[a-zA-Z!/][^>]*>`)
	markdownSyntax = regexp.MustCompile("(?m)^(#{1,6} |[-*+] |\\d+\\. |> |```)|!\\[[^\\]]*\\]\\([^)]+\\)|\\[[^\\]]+\\]\\([^)]+\\)|\\*\\*[^*]+\\*\\*")
)

// LooksLikeMarkdown reports whether input holds markdown syntax but no tags
func LooksLikeMarkdown(input string) bool {
	if anyTag.MatchString(input) {
		return false
	}
	return markdownSyntax.MatchString(input)
}
