package matcher

import (
	"testing"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mappingOf(name string, dests ...string) *Mapping {
	m := &Mapping{Module: name}
	for _, d := range dests {
		m.Records = append(m.Records, Record{Module: name, Destination: d, Link: true})
	}
	return m
}

func TestCheckCollisions(t *testing.T) {
	t.Run("disjoint", func(t *testing.T) {
		err := CheckCollisions([]*Mapping{
			mappingOf("a", "/h/.vimrc", "/h/.config/nvim/init.lua"),
			mappingOf("b", "/h/.zshrc", "/h/.config/fish/config.fish"),
			nil,
		})
		assert.NoError(t, err)
	})

	t.Run("same destination", func(t *testing.T) {
		err := CheckCollisions([]*Mapping{
			mappingOf("a", "/h/.vimrc"),
			mappingOf("b", "/h/.zshrc", "/h/.vimrc"),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationCollision))
		assert.Equal(t, []string{"a", "b"}, errors.GetErrorDetails(err)["modules"])
	})

	t.Run("nested destination", func(t *testing.T) {
		err := CheckCollisions([]*Mapping{
			mappingOf("a", "/h/.config/fish"),
			mappingOf("b", "/h/.config/fish/config.fish"),
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDestinationCollision))
	})

	t.Run("unlinked records do not collide", func(t *testing.T) {
		b := mappingOf("b", "/h/.vimrc")
		b.Records[0].Link = false
		assert.NoError(t, CheckCollisions([]*Mapping{mappingOf("a", "/h/.vimrc"), b}))
	})
}
