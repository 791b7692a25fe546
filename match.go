package blocks

import (
	"context"
	"strings"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/media"
	"github.com/foomo/blocks/schema"
)

// MatchRaw finds the first raw transform accepting n. Block types are tried
// in registration order, their transforms in declaration order. The block is
// extracted from a detached copy of the matched node, so selectors may
// match the node itself.
func (r *Registry) MatchRaw(n markup.Node) (Block, bool) {
	if n == nil {
		return Block{}, false
	}
	for _, bt := range r.Types() {
		for _, t := range bt.Transforms {
			raw, ok := t.(RawTransform)
			if !ok || !raw.IsMatch(n) {
				continue
			}
			source := n
			if raw.Node != nil {
				if picked := raw.Node(n); picked != nil {
					source = picked
				}
			}
			return Block{
				Name:       bt.Name,
				Attributes: schema.Extract(bt.Schema, markup.Wrap(source)),
			}, true
		}
	}
	return Block{}, false
}

// MatchRawAll runs MatchRaw for every top level node of root. Consecutive
// nodes without a match are collected into freeform blocks, whitespace
// between blocks is dropped.
func (r *Registry) MatchRawAll(root markup.Node) []Block {
	result := []Block{}
	var pending strings.Builder
	flush := func() {
		raw := pending.String()
		pending.Reset()
		if strings.TrimSpace(raw) == "" {
			return
		}
		result = append(result, Freeform(markup.Fragment(raw)))
	}
	if root == nil {
		return result
	}
	for _, child := range root.Children() {
		if child.Kind() == markup.KindElement {
			if b, ok := r.MatchRaw(child); ok {
				flush()
				result = append(result, b)
				continue
			}
		}
		pending.WriteString(string(child.OuterHTML()))
	}
	flush()
	return result
}

// MatchFiles finds the first files transform accepting files
func (r *Registry) MatchFiles(files []media.File) (FilesTransform, BlockType, bool) {
	if len(files) == 0 {
		return FilesTransform{}, BlockType{}, false
	}
	for _, bt := range r.Types() {
		for _, t := range bt.Transforms {
			ft, ok := t.(FilesTransform)
			if ok && ft.IsMatch(files) {
				return ft, bt, true
			}
		}
	}
	return FilesTransform{}, BlockType{}, false
}

// TransformFiles starts the first matching files transform. The returned
// future yields the block or the unchanged ingestion error.
func (r *Registry) TransformFiles(ctx context.Context, files []media.File) (*Future, bool) {
	ft, bt, ok := r.MatchFiles(files)
	if !ok {
		return nil, false
	}
	return Go(ctx, func(ctx context.Context) (Block, error) {
		b, err := ft.Transform(ctx, files)
		if err != nil {
			return Block{}, err
		}
		if b.Name == "" {
			b.Name = bt.Name
		}
		return b, nil
	}), true
}
