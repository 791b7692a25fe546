// Package library registers the core block types.
package library

import (
	"github.com/foomo/blocks"
	"github.com/foomo/blocks/library/image"
	"github.com/foomo/blocks/library/latestposts"
	"github.com/foomo/blocks/media"
	"github.com/foomo/blocks/posts"
)

// Deps are the collaborators of the core block types
type Deps struct {
	Ingester media.Ingester
	Posts    posts.Source
}

// RegisterCore registers image and latest posts, in that order
func RegisterCore(r *blocks.Registry, deps Deps) error {
	for _, bt := range []blocks.BlockType{
		image.BlockType(deps.Ingester),
		latestposts.BlockType(deps.Posts),
	} {
		if err := r.Register(bt); err != nil {
			return err
		}
	}
	return nil
}
