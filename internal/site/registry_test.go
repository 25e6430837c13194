package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubSource{name: "beta"})
	reg.Register(&stubSource{name: "alpha"})

	assert.Equal(t, []string{"beta", "alpha"}, reg.Names(), "registration order preserved")

	s, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", s.Name())

	_, err = reg.Get("missing")
	assert.Error(t, err)

	assert.Len(t, reg.All(), 2)
}

func TestRegistry_ReRegisterReplaces(t *testing.T) {
	reg := NewRegistry()
	first := &stubSource{name: "dup"}
	second := &stubSource{name: "dup"}
	reg.Register(first)
	reg.Register(second)

	assert.Equal(t, []string{"dup"}, reg.Names())
	s, err := reg.Get("dup")
	require.NoError(t, err)
	assert.Same(t, second, s.(*stubSource))
}
