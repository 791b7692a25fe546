package blocks

import (
	"fmt"
	"sync"

	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/schema"
)

// Registry holds block types in registration order. It is populated during
// startup and read only after Freeze.
type Registry struct {
	lock   sync.RWMutex
	frozen bool
	types  []BlockType
	index  map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		index: map[string]int{},
	}
}

// Register a block type
func (r *Registry) Register(bt BlockType) error {
	if err := validate(bt); err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: can not register %q", ErrRegistryFrozen, bt.Name)
	}
	if _, exists := r.index[bt.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateBlockTypeName, bt.Name)
	}
	r.index[bt.Name] = len(r.types)
	r.types = append(r.types, bt)
	return nil
}

// MustRegister panics on registration errors
func (r *Registry) MustRegister(types ...BlockType) {
	for _, bt := range types {
		if err := r.Register(bt); err != nil {
			panic(err)
		}
	}
}

func validate(bt BlockType) error {
	switch {
	case bt.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidBlockType)
	case bt.Schema == nil:
		return fmt.Errorf("%w: %q has no schema", ErrInvalidBlockType, bt.Name)
	case bt.Serialize == nil:
		return fmt.Errorf("%w: %q has no serializer", ErrInvalidBlockType, bt.Name)
	}
	for i, t := range bt.Transforms {
		switch transform := t.(type) {
		case RawTransform:
			if transform.IsMatch == nil {
				return fmt.Errorf("%w: %q raw transform %d has no predicate", ErrInvalidBlockType, bt.Name, i)
			}
		case FilesTransform:
			if transform.IsMatch == nil || transform.Transform == nil {
				return fmt.Errorf("%w: %q files transform %d is incomplete", ErrInvalidBlockType, bt.Name, i)
			}
		default:
			return fmt.Errorf("%w: %q transform %d has unknown type %T", ErrInvalidBlockType, bt.Name, i, t)
		}
	}
	return nil
}

// Freeze ends the registration phase
func (r *Registry) Freeze() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.frozen = true
}

// Lookup a block type by name
func (r *Registry) Lookup(name string) (BlockType, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return BlockType{}, fmt.Errorf("%w: %q", ErrBlockTypeNotFound, name)
	}
	return r.types[i], nil
}

// Types in registration order
func (r *Registry) Types() []BlockType {
	r.lock.RLock()
	defer r.lock.RUnlock()
	types := make([]BlockType, len(r.types))
	copy(types, r.types)
	return types
}

// CreateBlock instantiates a block from loosely typed attributes, missing
// attributes get their defaults
func (r *Registry) CreateBlock(name string, attrs map[string]any) (Block, error) {
	bt, err := r.Lookup(name)
	if err != nil {
		return Block{}, err
	}
	return Block{Name: bt.Name, Attributes: schema.Decode(bt.Schema, attrs)}, nil
}

// Serialize a block. Freeform blocks serialize to their raw markup.
func (r *Registry) Serialize(b Block) (markup.Fragment, error) {
	if b.Freeform() {
		return b.Raw, nil
	}
	bt, err := r.Lookup(b.Name)
	if err != nil {
		return "", err
	}
	return bt.Serialize(bt.Schema.Defaults().Merge(b.Attributes)), nil
}

// Parse extracts a block of the named type from a serialized fragment
func (r *Registry) Parse(name string, fragment markup.Fragment) (Block, error) {
	bt, err := r.Lookup(name)
	if err != nil {
		return Block{}, err
	}
	root, err := markup.ParseString(string(fragment))
	if err != nil {
		return Block{}, fmt.Errorf("could not parse %q markup: %w", name, err)
	}
	return Block{Name: bt.Name, Attributes: schema.Extract(bt.Schema, root)}, nil
}
