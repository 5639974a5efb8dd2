package env_vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
)

func TestGetenv(t *testing.T) {
	t.Setenv("BOOTGRAPH_TEST_VAR", "hello")

	r := registry.New()
	(&Module{}).Register(r)
	fn, ok := r.LookupBiF("getenv")
	require.True(t, ok)

	v, err := fn([]val.Value{val.NewStringVal("BOOTGRAPH_TEST_VAR")})
	require.NoError(t, err)
	assert.Equal(t, "hello", v.(*val.StringVal).String())

	v, err = HasEnv([]val.Value{val.NewStringVal("BOOTGRAPH_TEST_VAR")})
	require.NoError(t, err)
	assert.Equal(t, &val.BoolVal{V: true}, v)
}

func TestGetenv_BadArgs(t *testing.T) {
	_, err := Getenv(nil)
	assert.ErrorContains(t, err, "expected 1 argument")

	_, err = Getenv([]val.Value{&val.IntVal{V: 1}})
	assert.ErrorContains(t, err, "must be a string")
}
