// Package image is the core/image block: a figure with an image, an optional
// link and an optional caption.
package image

import (
	"context"
	"strconv"

	"github.com/foomo/blocks"
	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/media"
	"github.com/foomo/blocks/schema"
	"golang.org/x/net/html"
)

const Name = "core/image"

var Schema = schema.MustDefine(
	schema.Definition{Name: "url", Type: schema.TypeString, Source: schema.AttributeSource{Selector: "img", Attribute: "src"}},
	schema.Definition{Name: "alt", Type: schema.TypeString, Source: schema.AttributeSource{Selector: "img", Attribute: "alt"}},
	schema.Definition{Name: "caption", Type: schema.TypeArray, Source: schema.ChildrenSource{Selector: "figcaption"}},
	schema.Definition{Name: "href", Type: schema.TypeString, Source: schema.AttributeSource{Selector: "a:has(img):not(figcaption a)", Attribute: "href"}},
	schema.Definition{Name: "id", Type: schema.TypeNumber},
	schema.Definition{Name: "align", Type: schema.TypeString},
	schema.Definition{Name: "width", Type: schema.TypeNumber},
	schema.Definition{Name: "height", Type: schema.TypeNumber},
)

// BlockType of the image block, dropped images are ingested with ingester.
// Without an ingester files are not accepted.
func BlockType(ingester media.Ingester) blocks.BlockType {
	transforms := []blocks.Transform{
		blocks.RawTransform{IsMatch: IsMatch},
	}
	if ingester != nil {
		transforms = append(transforms, blocks.FilesTransform{
			IsMatch:   IsSingleImage,
			Transform: FromFiles(ingester),
		})
	}
	return blocks.BlockType{
		Name:             Name,
		Title:            "Image",
		Category:         "common",
		Keywords:         []string{"photo"},
		Schema:           Schema,
		Serialize:        Serialize,
		EditWrapperProps: EditWrapperProps,
		Transforms:       transforms,
	}
}

// Serialize renders
//
//	<figure class="align{align}" style="width:{width}px">
//		<a href="{href}"><img src="{url}" alt="{alt}" width height/></a>
//		<figcaption>{caption}</figcaption>
//	</figure>
//
// leaving out the link, the caption, the figure attributes and the image
// dimensions when they are not set.
func Serialize(attrs schema.Record) markup.Fragment {
	width, hasWidth := attrs.Number("width")
	height, hasHeight := attrs.Number("height")
	// zero means unset
	hasWidth = hasWidth && width != 0
	hasHeight = hasHeight && height != 0

	imgAttrs := []markup.Attribute{
		{Key: "src", Val: attrs.String("url")},
		{Key: "alt", Val: attrs.String("alt")},
	}
	if hasWidth {
		imgAttrs = append(imgAttrs, markup.Attribute{Key: "width", Val: formatNumber(width)})
	}
	if hasHeight {
		imgAttrs = append(imgAttrs, markup.Attribute{Key: "height", Val: formatNumber(height)})
	}
	img := markup.Element("img", imgAttrs)
	if href := attrs.String("href"); href != "" {
		img = markup.Element("a", markup.Attrs("href", href), img)
	}

	var figcaption *html.Node
	if caption := attrs.RichText("caption"); !caption.IsEmpty() {
		figcaption = markup.Element("figcaption", nil, caption.HTML()...)
	}

	figureAttrs := []markup.Attribute{}
	if align := attrs.String("align"); align != "" {
		figureAttrs = append(figureAttrs, markup.Attribute{Key: "class", Val: "align" + align})
	}
	if hasWidth {
		figureAttrs = append(figureAttrs, markup.Attribute{Key: "style", Val: "width:" + formatNumber(width) + "px"})
	}
	return markup.Render(markup.Element("figure", figureAttrs, img, figcaption))
}

// IsMatch accepts a bare image, a figure holding an image and any element
// holding an image but no text
func IsMatch(n markup.Node) bool {
	tag := n.Tag()
	if tag == "img" {
		return true
	}
	_, hasImage := n.First("img")
	if !hasImage {
		return false
	}
	return tag == "figure" || !markup.HasText(n)
}

// IsSingleImage accepts exactly one image file
func IsSingleImage(files []media.File) bool {
	return len(files) == 1 && files[0].IsImage()
}

// FromFiles ingests the dropped image and creates a block pointing to it
func FromFiles(ingester media.Ingester) func(ctx context.Context, files []media.File) (blocks.Block, error) {
	return func(ctx context.Context, files []media.File) (blocks.Block, error) {
		m, err := ingester.Ingest(ctx, files[0])
		if err != nil {
			return blocks.Block{}, err
		}
		attrs := Schema.Defaults()
		attrs["id"] = float64(m.ID)
		attrs["url"] = m.SourceURL
		return blocks.Block{Name: Name, Attributes: attrs}, nil
	}
}

// EditWrapperProps flags floated and wide images for the editor
func EditWrapperProps(attrs schema.Record) []markup.Attribute {
	align := attrs.String("align")
	switch align {
	case "left", "right", "wide", "full":
		width, _ := attrs.Number("width")
		return []markup.Attribute{
			{Key: "data-align", Val: align},
			{Key: "data-resized", Val: strconv.FormatBool(width != 0)},
		}
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
