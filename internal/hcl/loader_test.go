package hcl

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bootgraph/internal/config"
	"github.com/vk/bootgraph/internal/testutil"
	"github.com/vk/bootgraph/internal/val"
	"github.com/zclconf/go-cty/cty"
)

const fullManifest = `
enum "proto" {
  values = { tcp = 1, udp = 2 }
}

record "conn" {
  field "id" { type = string }
  field "parent" {
    type = conn
    attr "optional" {}
  }
  field "tries" {
    type = count
    attr "default" { value = 3 }
  }
}

constant "ports" {
  type  = table(count, proto)
  value = { "22" = "tcp", "53" = "udp" }
}

global "timeout" {
  type     = interval
  value    = 2.5
  exported = true
  attr "redef" {}
}

global "started" {
  type = conn
  attr "default" { init = "started_init" }
}

body "conn_established" {
  flavor   = "event"
  priority = 5
  events   = ["conn_established"]
  source   = "print c"
  param "c" { type = conn }
}

lambda "lambda_1" {
  yield    = bool
  captures = true
  param "x" { type = count }
}

bif "strlen" {}

field_mapping "conn" "extra" {
  type = vector(string)
  attr "optional" {}
}

enum_mapping "proto" "icmp" {}
`

func load(t *testing.T, files map[string]string) (*config.Model, error) {
	t.Helper()
	ctx, _ := testutil.LogContext(t)
	dir := testutil.WriteFiles(t, files)
	return NewLoader().Load(ctx, dir)
}

func TestLoad_FullManifest(t *testing.T) {
	m, err := load(t, map[string]string{"main.hcl": fullManifest})
	require.NoError(t, err)

	require.Len(t, m.Types, 2)
	assert.Equal(t, "proto", m.Types[0].Name)
	assert.Equal(t, "conn", m.Types[1].Name)

	proto, ok := m.Types[0].Type.(*val.EnumType)
	require.True(t, ok)
	o, ok := proto.Lookup("udp")
	require.True(t, ok)
	assert.Equal(t, 2, o)

	conn, ok := m.Types[1].Type.(*val.RecordType)
	require.True(t, ok)
	require.Len(t, conn.Fields, 3)
	assert.Same(t, conn, conn.Fields[1].Type, "a record may refer to itself")
	assert.NotNil(t, conn.Fields[1].Attrs.Find(val.AttrOptional))
	def := conn.Fields[2].Attrs.Find(val.AttrDefault)
	require.NotNil(t, def)
	assert.Equal(t, &val.ConstExpr{Val: &val.CountVal{V: 3}}, def.Expr)

	require.Len(t, m.Constants, 1)
	ports, ok := m.Constants[0].Value.(*val.TableVal)
	require.True(t, ok)
	require.Len(t, ports.Entries, 2)
	assert.Equal(t, &val.CountVal{V: 22}, ports.Entries[0].Key)
	assert.Equal(t, &val.EnumVal{EnumType: proto, Ordinal: 1}, ports.Entries[0].Value)
	assert.Equal(t, &val.CountVal{V: 53}, ports.Entries[1].Key)

	require.Len(t, m.Globals, 2)
	timeout := m.Globals[0]
	assert.Same(t, val.Base(val.TagInterval), timeout.Type)
	assert.Equal(t, &val.DoubleVal{V: 2.5, Tag: val.TagInterval}, timeout.Value)
	assert.True(t, timeout.Exported)
	assert.NotNil(t, timeout.Attrs.Find(val.AttrRedef))

	started := m.Globals[1]
	assert.Nil(t, started.Value)
	call, ok := started.Attrs.Find(val.AttrDefault).Expr.(*val.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "started_init", call.Func.Name)
	assert.Equal(t, []string{"started_init"}, m.InitExprs)

	require.Len(t, m.Bodies, 1)
	b := m.Bodies[0]
	assert.Equal(t, "conn_established", b.FuncName)
	assert.Equal(t, val.FlavorEvent, b.Type.Flavor)
	assert.Same(t, conn, b.Type.Params.Fields[0].Type)
	assert.Equal(t, 5, b.Priority)
	assert.Equal(t, []string{"conn_established"}, b.Events)
	assert.Equal(t, "print c", b.Source)

	require.Len(t, m.Lambdas, 1)
	assert.Same(t, val.Base(val.TagBool), m.Lambdas[0].Type.Yield)
	assert.True(t, m.Lambdas[0].HasCaptures)

	assert.Equal(t, []string{"strlen"}, m.BiFs)

	require.Len(t, m.FieldMappings, 1)
	assert.Same(t, conn, m.FieldMappings[0].Record)
	assert.Equal(t, &val.VectorType{Yield: val.Base(val.TagString)}, m.FieldMappings[0].FieldType)

	require.Len(t, m.EnumMappings, 1)
	assert.Same(t, proto, m.EnumMappings[0].Enum)
	assert.Equal(t, "icmp", m.EnumMappings[0].Name)
}

func TestLoad_TypesAcrossFiles(t *testing.T) {
	m, err := load(t, map[string]string{
		"a.hcl": `record "a" {
  field "b" { type = b }
}`,
		"nested/b.hcl": `record "b" {
  field "as" { type = vector(a) }
}`,
	})
	require.NoError(t, err)
	require.Len(t, m.Types, 2)

	a := m.Types[0].Type.(*val.RecordType)
	b := m.Types[1].Type.(*val.RecordType)
	assert.Same(t, b, a.Fields[0].Type)
	assert.Same(t, a, b.Fields[0].Type.(*val.VectorType).Yield)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		match string
	}{
		{"unknown type", `constant "c" {
  type  = nope
  value = 1
}`, `unknown type "nope"`},
		{"duplicate type", `opaque "x" {}
record "x" {}`, `declared twice`},
		{"shadowed base", `opaque "string" {}`, `shadows a base type`},
		{"bad value", `constant "c" {
  type  = count
  value = "many"
}`, `constant c`},
		{"unknown attr", `global "g" {
  type = int
  attr "sticky" {}
}`, `unknown attribute`},
		{"two expressions", `global "g" {
  type = int
  attr "default" {
    value = 1
    ref   = "other"
  }
}`, `only one of`},
		{"coerce to non-record", `global "g" {
  type = int
  attr "default" { coerce = string }
}`, `not a record type`},
		{"unknown flavor", `body "f" { flavor = "macro" }`, `unknown flavor`},
		{"unknown mapped record", `field_mapping "nope" "f" { type = int }`, `unknown record`},
		{"unknown mapped enum", `enum_mapping "nope" "x" {}`, `unknown enum`},
		{"syntax", `record "x" {`, `failed to parse`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, map[string]string{"main.hcl": tc.src})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.match)
		})
	}
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := load(t, map[string]string{"README.md": "nothing here"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files")
}

func parseType(t *testing.T, src string) (val.Type, error) {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "type.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	ctx, _ := testutil.LogContext(t)
	return newTranslator(ctx).typeExpr(expr)
}

func TestTypeExpr(t *testing.T) {
	str, count, addr := val.Base(val.TagString), val.Base(val.TagCount), val.Base(val.TagAddr)
	cases := []struct {
		src  string
		want val.Type
	}{
		{"string", str},
		{"vector(count)", &val.VectorType{Yield: count}},
		{"list(string, count)", &val.TypeList{Types: []val.Type{str, count}}},
		{"set(addr, count)", &val.TableType{Indices: &val.TypeList{Types: []val.Type{addr, count}}}},
		{"table(addr, string)", &val.TableType{Indices: &val.TypeList{Types: []val.Type{addr}}, Yield: str}},
		{"type(string)", &val.TypeType{Type: str}},
		{"file(string)", &val.FileType{Yield: str}},
		{"event()", &val.FuncType{Params: val.NewRecordType(""), Flavor: val.FlavorEvent}},
		{"function(count)", &val.FuncType{Params: val.NewRecordType(""), Yield: count}},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			got, err := parseType(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTypeExpr_Errors(t *testing.T) {
	for _, src := range []string{
		"nope",
		"vector(string, count)",
		"table(string)",
		"set()",
		"frob(string)",
		"conn.id",
		`"string"`,
		"hook(string, count)",
		"file()",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := parseType(t, src)
			assert.Error(t, err)
		})
	}
}

func TestCtyToValue(t *testing.T) {
	str, count := val.Base(val.TagString), val.Base(val.TagCount)

	t.Run("null is unset", func(t *testing.T) {
		v, err := ctyToValue(cty.NullVal(cty.String), str)
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("addresses", func(t *testing.T) {
		v, err := ctyToValue(cty.StringVal("10.0.0.1"), val.Base(val.TagAddr))
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.1", v.(*val.AddrVal).String())

		v, err = ctyToValue(cty.StringVal("10.1.2.3/16"), val.Base(val.TagSubNet))
		require.NoError(t, err)
		assert.Equal(t, "10.1.0.0/16", v.(*val.SubNetVal).String())
	})

	t.Run("pattern forms", func(t *testing.T) {
		v, err := ctyToValue(cty.StringVal("^a+$"), val.Base(val.TagPattern))
		require.NoError(t, err)
		p := v.(*val.PatternVal)
		assert.False(t, p.CaseInsensitive)
		assert.True(t, p.MatchString("aaa"))

		v, err = ctyToValue(cty.ObjectVal(map[string]cty.Value{
			"pattern":          cty.StringVal("^a+$"),
			"case_insensitive": cty.True,
		}), val.Base(val.TagPattern))
		require.NoError(t, err)
		assert.True(t, v.(*val.PatternVal).MatchString("AA"))
	})

	t.Run("any is inferred", func(t *testing.T) {
		anyT := val.Base(val.TagAny)
		v, err := ctyToValue(cty.NumberIntVal(3), anyT)
		require.NoError(t, err)
		assert.Equal(t, &val.IntVal{V: 3}, v)

		v, err = ctyToValue(cty.NumberFloatVal(2.5), anyT)
		require.NoError(t, err)
		assert.Equal(t, &val.DoubleVal{V: 2.5, Tag: val.TagDouble}, v)

		v, err = ctyToValue(cty.True, anyT)
		require.NoError(t, err)
		assert.Equal(t, &val.BoolVal{V: true}, v)
	})

	t.Run("file from name", func(t *testing.T) {
		ft := &val.FileType{Yield: str}
		v, err := ctyToValue(cty.StringVal("/var/log/conn.log"), ft)
		require.NoError(t, err)
		assert.Equal(t, &val.FileVal{FileType: ft, Name: "/var/log/conn.log"}, v)
	})

	t.Run("negative count", func(t *testing.T) {
		_, err := ctyToValue(cty.NumberIntVal(-1), count)
		assert.Error(t, err)
	})

	t.Run("record with unset and unknown fields", func(t *testing.T) {
		rt := val.NewRecordType("r")
		_, _ = rt.AddField("a", str, nil)
		_, _ = rt.AddField("b", count, nil)

		v, err := ctyToValue(cty.ObjectVal(map[string]cty.Value{"b": cty.NumberIntVal(7)}), rt)
		require.NoError(t, err)
		assert.Equal(t, &val.RecordVal{RecordType: rt, Fields: []val.Value{nil, &val.CountVal{V: 7}}}, v)

		_, err = ctyToValue(cty.ObjectVal(map[string]cty.Value{"c": cty.True}), rt)
		assert.ErrorContains(t, err, `no field "c"`)
	})

	t.Run("set from list", func(t *testing.T) {
		st := &val.TableType{Indices: &val.TypeList{Types: []val.Type{str}}}
		v, err := ctyToValue(cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.StringVal("y")}), st)
		require.NoError(t, err)
		tv := v.(*val.TableVal)
		require.Len(t, tv.Entries, 2)
		assert.Equal(t, val.TableEntry{Key: val.NewStringVal("y")}, tv.Entries[1])
	})

	t.Run("multi-index table from entries", func(t *testing.T) {
		tt := &val.TableType{Indices: &val.TypeList{Types: []val.Type{str, count}}, Yield: count}
		v, err := ctyToValue(cty.TupleVal([]cty.Value{
			cty.ObjectVal(map[string]cty.Value{
				"key":   cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.NumberIntVal(1)}),
				"value": cty.NumberIntVal(9),
			}),
		}), tt)
		require.NoError(t, err)
		tv := v.(*val.TableVal)
		require.Len(t, tv.Entries, 1)
		assert.Equal(t, &val.ListVal{Vals: []val.Value{val.NewStringVal("x"), &val.CountVal{V: 1}}}, tv.Entries[0].Key)
		assert.Equal(t, &val.CountVal{V: 9}, tv.Entries[0].Value)

		_, err = ctyToValue(cty.ObjectVal(map[string]cty.Value{"x": cty.NumberIntVal(1)}), tt)
		assert.ErrorContains(t, err, "several indices")
	})

	t.Run("vector rejects null elements", func(t *testing.T) {
		vt := &val.VectorType{Yield: str}
		_, err := ctyToValue(cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.NullVal(cty.String)}), vt)
		assert.ErrorContains(t, err, "element 1")
	})

	t.Run("list arity", func(t *testing.T) {
		lt := &val.TypeList{Types: []val.Type{str, count}}
		_, err := ctyToValue(cty.TupleVal([]cty.Value{cty.StringVal("x")}), lt)
		assert.ErrorContains(t, err, "needs 2 elements")
	})
}
