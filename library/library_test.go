package library

import (
	"testing"

	"github.com/foomo/blocks"
	"github.com/foomo/blocks/library/image"
	"github.com/foomo/blocks/library/latestposts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCore(t *testing.T) {
	r := blocks.NewRegistry()
	require.NoError(t, RegisterCore(r, Deps{}))
	names := []string{}
	for _, bt := range r.Types() {
		names = append(names, bt.Name)
	}
	assert.Equal(t, []string{image.Name, latestposts.Name}, names)

	assert.ErrorIs(t, RegisterCore(r, Deps{}), blocks.ErrDuplicateBlockTypeName)
}
