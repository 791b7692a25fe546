// Package blocks maps structured attribute records to serialized markup and
// back, and decides which block type represents pasted markup or dropped
// files.
package blocks

import (
	"context"
	"errors"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/media"
	"github.com/foomo/blocks/schema"
)

var (
	ErrDuplicateBlockTypeName = errors.New("duplicate block type name")
	ErrInvalidBlockType       = errors.New("invalid block type")
	ErrRegistryFrozen         = errors.New("registry is frozen")
	ErrBlockTypeNotFound      = errors.New("block type not found")
)

// Serializer renders a record to markup. Serializers are pure and read
// nothing but the record.
type Serializer func(attrs schema.Record) markup.Fragment

// Renderer produces the final markup of a dynamic block at request time
type Renderer func(ctx context.Context, attrs schema.Record) (markup.Fragment, error)

// BlockType describes a kind of block
type BlockType struct {
	Name        string
	Title       string
	Description string
	Category    string
	Keywords    []string
	Schema      *schema.Schema
	Serialize   Serializer
	// Render is set for dynamic blocks, their serialized fragment is empty
	Render Renderer
	// EditWrapperProps are extra attributes for the element wrapping the
	// block in an editor
	EditWrapperProps func(attrs schema.Record) []markup.Attribute
	// Transforms are evaluated in declaration order
	Transforms []Transform
}

// Dynamic blocks are rendered at request time
func (bt BlockType) Dynamic() bool {
	return bt.Render != nil
}

// Transform is either a RawTransform or a FilesTransform
type Transform interface {
	transform()
}

// RawTransform converts pasted markup into a block
type RawTransform struct {
	IsMatch func(n markup.Node) bool
	// Node optionally picks the node to extract from, defaults to the matched node
	Node func(n markup.Node) markup.Node
}

// FilesTransform converts dropped files into a block
type FilesTransform struct {
	IsMatch   func(files []media.File) bool
	Transform func(ctx context.Context, files []media.File) (Block, error)
}

func (RawTransform) transform()   {}
func (FilesTransform) transform() {}

// Block is an instance of a block type. Freeform content between blocks and
// blocks of unknown types keep their markup in Raw.
type Block struct {
	Name       string          `json:"name"`
	Attributes schema.Record   `json:"attributes"`
	Raw        markup.Fragment `json:"raw,omitempty"`
}

// Freeform reports whether the block is plain markup without a type
func (b Block) Freeform() bool {
	return b.Name == ""
}

// Freeform creates a block of plain markup
func Freeform(raw markup.Fragment) Block {
	return Block{Raw: raw}
}
