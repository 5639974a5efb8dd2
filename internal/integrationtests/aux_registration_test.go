package integrationtests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

const handlerManifest = `
body "on_start" {
  flavor   = "event"
  events   = ["start"]
  priority = 10
  source   = "print \"starting\""
}
`

func TestBodiesAreBoundOncePerHash(t *testing.T) {
	// --- Arrange ---
	// Two separately compiled units carry the same body.
	first := compileManifests(t, map[string]string{"a.hcl": handlerManifest})
	second := compileManifests(t, map[string]string{"b.hcl": handlerManifest})
	reg := newRegistry(bodies{"on_start": noop})

	// --- Act ---
	r1 := replay(t, first, reg)
	r2 := replay(t, second, reg)

	// --- Assert ---
	require.NoError(t, r1.Err)
	require.NoError(t, r2.Err)
	require.Len(t, reg.Handlers("start"), 1, "the second image must not bind the body again")
	assert.Equal(t, 10, reg.Handlers("start")[0].Priority)
}

func TestMissingBiFIsFatal(t *testing.T) {
	img := compileManifests(t, map[string]string{"main.hcl": `bif "no_such_builtin" {}`})

	result := replay(t, img, newRegistry())

	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, plan.ErrUnknownName))
	assert.Contains(t, result.Err.Error(), "no_such_builtin")
}

func TestMappingsExtendTypes(t *testing.T) {
	// --- Arrange ---
	img := compileManifests(t, map[string]string{"main.hcl": `
enum "proto" {
  values = { tcp = 1, udp = 2 }
}

record "conn" {
  field "uid" { type = string }
}

global "proto_var" { type = proto }
global "conn_var"  { type = conn }

field_mapping "conn" "uid" { type = string }
field_mapping "conn" "service" {
  type = set(string)
  attr "optional" {}
}
enum_mapping "proto" "udp" {}
enum_mapping "proto" "icmp" {}
`})

	// --- Act ---
	result := replay(t, img, newRegistry())

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []int{0, 1}, result.Engine.FieldIndices())
	assert.Equal(t, []int{2, 3}, result.Engine.EnumOrdinals())

	conn := lookup(t, result.Scope, "conn_var").Type.(*val.RecordType)
	require.Len(t, conn.Fields, 2)
	assert.Equal(t, "service", conn.Fields[1].Name)
	assert.NotNil(t, conn.Fields[1].Attrs.Find(val.AttrOptional))

	proto := lookup(t, result.Scope, "proto_var").Type.(*val.EnumType)
	o, ok := proto.Lookup("icmp")
	require.True(t, ok)
	assert.Equal(t, 3, o)
}

func TestInitExpressionDefaults(t *testing.T) {
	// --- Arrange ---
	img := compileManifests(t, map[string]string{"main.hcl": `
global "retries" {
  type = count
  attr "default" { init = "retries_default" }
}
`})
	reg := newRegistry(initExprs{"retries_default": func([]val.Value) (val.Value, error) {
		return &val.CountVal{V: 3}, nil
	}})

	// --- Act ---
	result := replay(t, img, reg)

	// --- Assert ---
	require.NoError(t, result.Err)
	def := lookup(t, result.Scope, "retries").Attrs.Find(val.AttrDefault)
	require.NotNil(t, def)
	v, err := def.Expr.Eval()
	require.NoError(t, err)
	assert.Equal(t, &val.CountVal{V: 3}, v)
}
