// Package latestposts is the dynamic core/latest-posts block. It stores
// nothing but its settings, the list is rendered from a post source at
// request time.
package latestposts

import (
	"context"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/foomo/blocks"
	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/posts"
	"github.com/foomo/blocks/schema"
)

const (
	Name = "core/latest-posts"

	MinColumns = 2
	MaxColumns = 6

	className = "wp-block-latest-posts"
)

var Schema = schema.MustDefine(
	schema.Definition{Name: "postsToShow", Type: schema.TypeNumber, Default: 5},
	schema.Definition{Name: "displayPostDate", Type: schema.TypeBoolean, Default: false},
	schema.Definition{Name: "layout", Type: schema.TypeString, Default: "list"},
	schema.Definition{Name: "columns", Type: schema.TypeNumber, Default: 3},
	schema.Definition{Name: "align", Type: schema.TypeString},
	schema.Definition{Name: "order", Type: schema.TypeString, Default: "desc"},
	schema.Definition{Name: "orderBy", Type: schema.TypeString, Default: "date"},
	schema.Definition{Name: "categories", Type: schema.TypeString},
)

// BlockType of the latest posts block
func BlockType(source posts.Source) blocks.BlockType {
	return blocks.BlockType{
		Name:             Name,
		Title:            "Latest Posts",
		Description:      "Shows a list of your site's most recent posts.",
		Category:         "widgets",
		Keywords:         []string{"recent posts"},
		Schema:           Schema,
		Serialize:        Serialize,
		Render:           Renderer(source),
		EditWrapperProps: EditWrapperProps,
	}
}

// Serialize is empty, the block is rendered dynamically
func Serialize(schema.Record) markup.Fragment {
	return ""
}

// Renderer queries source and renders, a nil source renders an empty list
//
//	<ul class="wp-block-latest-posts columns-3 is-grid">
//		<li><a href="{link}" target="_blank">{title}</a><time ...>{date}</time></li>
//	</ul>
func Renderer(source posts.Source) blocks.Renderer {
	return func(ctx context.Context, attrs schema.Record) (markup.Fragment, error) {
		q := Query(attrs)
		var latest []posts.Post
		if q.PostsToShow > 0 && source != nil {
			var err error
			latest, err = source.Latest(ctx, q)
			if err != nil {
				return "", err
			}
		}
		if len(latest) > q.PostsToShow {
			latest = latest[:q.PostsToShow]
		}
		return Render(attrs, latest), nil
	}
}

// Query for the posts shown with attrs
func Query(attrs schema.Record) posts.Query {
	postsToShow, _ := attrs.Number("postsToShow")
	return posts.Query{
		PostsToShow: int(postsToShow),
		Order:       attrs.String("order"),
		OrderBy:     attrs.String("orderBy"),
		Categories:  attrs.String("categories"),
	}
}

// Render the post list
func Render(attrs schema.Record, latest []posts.Post) markup.Fragment {
	classes := []string{className, "columns-" + strconv.Itoa(columns(attrs))}
	if attrs.String("layout") == "grid" {
		classes = append(classes, "is-grid")
	}
	displayPostDate := attrs.Bool("displayPostDate")
	list := markup.Element("ul", markup.Attrs("class", strings.Join(classes, " ")))
	for _, p := range latest {
		item := markup.Element("li", nil,
			markup.Element("a", markup.Attrs("href", p.Link, "target", "_blank"), markup.Text(Title(p))),
		)
		if displayPostDate && !p.DateGMT.IsZero() {
			date := p.DateGMT.UTC()
			item.AppendChild(markup.Element("time",
				markup.Attrs(
					"datetime", date.Format(time.RFC3339),
					"class", className+"__post-date",
				),
				markup.Text(date.Format("January 02, 2006")),
			))
		}
		list.AppendChild(item)
	}
	return markup.Render(list)
}

// columns as stored, the list is rendered with the value the author picked
func columns(attrs schema.Record) int {
	if c, ok := attrs.Number("columns"); ok {
		return int(c)
	}
	return 3
}

// Columns clamps the columns attribute to MinColumns..MaxColumns and to the
// number of posts, the range an editor offers for the columns control
func Columns(attrs schema.Record, numPosts int) int {
	columns := 3
	if c, ok := attrs.Number("columns"); ok {
		columns = int(c)
	}
	upper := MaxColumns
	if numPosts < upper {
		upper = numPosts
	}
	if columns > upper {
		columns = upper
	}
	if columns < MinColumns {
		columns = MinColumns
	}
	return columns
}

// Title decodes entities in the trimmed post title
func Title(p posts.Post) string {
	title := html.UnescapeString(strings.TrimSpace(p.Title))
	if title == "" {
		return "(Untitled)"
	}
	return title
}

// EditWrapperProps flags wide blocks for the editor
func EditWrapperProps(attrs schema.Record) []markup.Attribute {
	switch align := attrs.String("align"); align {
	case "left", "right", "wide", "full":
		return []markup.Attribute{{Key: "data-align", Val: align}}
	}
	return nil
}
