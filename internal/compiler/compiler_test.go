package compiler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bootgraph/internal/config"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

func TestRegisterConstant_Strings(t *testing.T) {
	c := New(context.Background())

	a, err := c.RegisterConstant(val.NewStringVal("a"))
	require.NoError(t, err)
	ab, err := c.RegisterConstant(val.NewStringVal("ab"))
	require.NoError(t, err)

	assert.Equal(t, 0, a.Offset())
	assert.Equal(t, 1, ab.Offset())
	assert.Equal(t, 0, a.Cohort())
	assert.Equal(t, 0, ab.Cohort())

	t.Run("equal content shares a slot", func(t *testing.T) {
		again, err := c.RegisterConstant(val.NewStringVal("a"))
		require.NoError(t, err)
		assert.Same(t, a, again)
		assert.Equal(t, 2, c.Pool(plan.String).Size())
	})
}

func TestRegisterType_ListCohorts(t *testing.T) {
	c := New(context.Background())

	elem := val.Base(val.TagString)
	list := &val.TypeList{Types: []val.Type{elem}}

	ld, err := c.RegisterType(list)
	require.NoError(t, err)
	ed, err := c.RegisterType(elem)
	require.NoError(t, err)

	assert.Equal(t, 0, ed.Cohort())
	assert.Equal(t, 1, ld.Cohort())
	assert.Equal(t, 0, ed.Offset(), "elements register before the list that cites them")
	assert.Equal(t, 1, ld.Offset())
}

func TestRegisterType_SelfReferentialRecord(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		c := New(context.Background())
		node := val.NewRecordType("node")
		_, err := node.AddField("next", node, nil)
		require.NoError(t, err)

		d, err := c.RegisterType(node)
		require.NoError(t, err)
		assert.Equal(t, 0, d.Cohort())
		assert.True(t, d.HasPreInit())
		assert.Contains(t, d.PreInit(), `RecordShell("node")`)

		img, err := c.Image()
		require.NoError(t, err)
		pi, ok := img.Pool(plan.Type)
		require.True(t, ok)
		require.Len(t, pi.Cohorts, 1)
		payload := pi.Cohorts[0][0].Payload
		// [TagRecord, name, field name, field type, field attrs]
		require.Len(t, payload, 5)
		assert.Equal(t, d.Offset(), payload[3])
		assert.Equal(t, plan.None, payload[4])
	})

	t.Run("through a vector", func(t *testing.T) {
		c := New(context.Background())
		tree := val.NewRecordType("tree")
		_, err := tree.AddField("kids", &val.VectorType{Yield: tree}, nil)
		require.NoError(t, err)

		d, err := c.RegisterType(tree)
		require.NoError(t, err)
		vec := c.Pool(plan.Type).At(1)

		assert.Equal(t, 0, d.Offset())
		assert.Equal(t, 0, vec.Cohort(), "the back edge to the shell is not an ordinary dependency")
		assert.Equal(t, 1, d.Cohort())

		_, err = c.Image()
		require.NoError(t, err)
	})
}

func TestRegister_NonRecordSelfReference(t *testing.T) {
	t.Run("type list containing itself", func(t *testing.T) {
		c := New(context.Background())
		tl := &val.TypeList{}
		tl.Types = append(tl.Types, tl)

		_, err := c.RegisterType(tl)
		require.Error(t, err)
		assert.ErrorIs(t, err, plan.ErrAssignment)
	})

	t.Run("list constant containing itself", func(t *testing.T) {
		c := New(context.Background())
		l := &val.ListVal{}
		l.Vals = append(l.Vals, l)

		_, err := c.RegisterConstant(l)
		require.Error(t, err)
		assert.ErrorIs(t, err, plan.ErrAssignment)
	})

	t.Run("field default of the record being defined", func(t *testing.T) {
		c := New(context.Background())
		node := val.NewRecordType("node")
		def := &val.RecordVal{RecordType: node, Fields: []val.Value{nil}}
		attrs := &val.Attributes{Attrs: []*val.Attr{{Tag: val.AttrDefault, Expr: &val.ConstExpr{Val: def}}}}
		_, err := node.AddField("next", node, attrs)
		require.NoError(t, err)

		_, err = c.RegisterType(node)
		require.ErrorIs(t, err, plan.ErrAssignment)
		assert.Contains(t, err.Error(), "field node.next")
	})
}

func TestRegisterConstant_Aggregates(t *testing.T) {
	c := New(context.Background())
	tt := &val.TableType{
		Indices: &val.TypeList{Types: []val.Type{val.Base(val.TagString)}},
		Yield:   val.Base(val.TagInt),
	}
	tv := &val.TableVal{TableType: tt}
	for i, k := range []string{"x", "y", "z"} {
		tv.Entries = append(tv.Entries, val.TableEntry{Key: val.NewStringVal(k), Value: &val.IntVal{V: int64(i)}})
	}

	d, err := c.RegisterConstant(tv)
	require.NoError(t, err)
	// string and int bases 0, index list 1, table type 2.
	assert.Equal(t, 3, d.Cohort())

	img, err := c.Image()
	require.NoError(t, err)
	pi, ok := img.Pool(plan.Table)
	require.True(t, ok)
	payload := pi.Cohorts[3][0].Payload
	// type, attrs, then three key/value pairs.
	assert.Len(t, payload, 2+6)
	assert.Equal(t, plan.None, payload[1])
	for i := 0; i < 3; i++ {
		key := img.Tables.ConstVals[payload[2+2*i]]
		value := img.Tables.ConstVals[payload[3+2*i]]
		assert.Equal(t, plan.Ref{Tag: plan.String, Offset: i}, key)
		assert.Equal(t, plan.Ref{Tag: plan.Int, Offset: i}, value)
	}

	t.Run("record arity must match its type", func(t *testing.T) {
		rt := val.NewRecordType("pair")
		_, _ = rt.AddField("a", val.Base(val.TagInt), nil)
		_, _ = rt.AddField("b", val.Base(val.TagInt), nil)
		_, err := c.RegisterConstant(&val.RecordVal{RecordType: rt, Fields: []val.Value{&val.IntVal{V: 1}}})
		assert.ErrorIs(t, err, plan.ErrAssignment)
	})

	t.Run("record fields may be unset", func(t *testing.T) {
		rt := val.NewRecordType("opt")
		_, _ = rt.AddField("a", val.Base(val.TagInt), nil)
		_, err := c.RegisterConstant(&val.RecordVal{RecordType: rt, Fields: []val.Value{nil}})
		assert.NoError(t, err)
	})
}

func TestRegisterAttr(t *testing.T) {
	c := New(context.Background())
	attrs := &val.Attributes{Attrs: []*val.Attr{
		{Tag: val.AttrOptional},
		{Tag: val.AttrDefault, Expr: &val.ConstExpr{Val: &val.IntVal{V: 5}}},
		{Tag: val.AttrOnChange, Expr: &val.CallExpr{Func: &val.FuncVal{Name: "init_on_change"}}},
	}}

	d, err := c.RegisterAttributes(attrs)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Pool(plan.Attr).Size())
	assert.Equal(t, 1, c.Pool(plan.CallExpr).Size())
	assert.Equal(t, 2, d.Cohort())

	again, err := c.RegisterAttributes(attrs)
	require.NoError(t, err)
	assert.Same(t, d, again)

	t.Run("call wrappers are shared by name", func(t *testing.T) {
		w, err := c.RegisterCallExpr("init_on_change")
		require.NoError(t, err)
		assert.Equal(t, 0, w.Cohort())
		assert.Equal(t, 1, c.Pool(plan.CallExpr).Size())
	})
}

func TestCompile_Model(t *testing.T) {
	node := val.NewRecordType("node")
	_, _ = node.AddField("next", node, nil)
	ft := &val.FuncType{Yield: val.Base(val.TagCount), Flavor: val.FlavorFunction}
	color := val.NewEnumType("color")
	require.NoError(t, color.AddName("red", 0))

	model := &config.Model{
		Types:     []*config.NamedType{{Name: "node", Type: node}},
		Constants: []*config.Constant{{Name: "greeting", Value: val.NewStringVal("hello")}},
		Globals: []*config.Global{
			{Name: "g", Type: val.Base(val.TagString), Value: val.NewStringVal("hello"), Exported: true},
		},
		InitExprs: []string{"init_g"},
		Bodies: []*config.Body{
			{FuncName: "f", Type: ft, Priority: 0, Source: "return 1"},
			{FuncName: "f", Type: ft, Priority: 0, Source: "return 1"},
		},
		Lambdas:       []*config.Lambda{{Name: "lambda_1", Type: ft, Source: "x"}},
		BiFs:          []string{"sha256"},
		FieldMappings: []*config.FieldMapping{{Record: node, FieldName: "next", FieldType: node}},
		EnumMappings:  []*config.EnumMapping{{Enum: color, Name: "green"}},
	}

	img, c, err := Compile(context.Background(), model)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 1, c.Pool(plan.String).Size(), "global value reuses the constant")
	require.Len(t, img.Globals, 1)
	assert.Equal(t, plan.Ref{Tag: plan.String, Offset: 0}, img.Tables.ConstVals[img.Globals[0].Val])
	assert.Equal(t, plan.None, img.Globals[0].Attrs)

	require.Len(t, img.Bodies, 2)
	assert.Equal(t, img.Bodies[0].Hash, img.Bodies[1].Hash, "identical bodies hash alike")
	require.Len(t, img.Lambdas, 1)
	assert.NotEqual(t, img.Tables.Hashes[img.Bodies[0].Hash], img.Tables.Hashes[img.Lambdas[0].Hash])

	assert.Equal(t, []string{"sha256"}, img.BiFs)
	require.Len(t, img.FieldMappings, 1)
	assert.Equal(t, img.FieldMappings[0].Record, img.FieldMappings[0].FieldType)
	require.Len(t, img.EnumMappings, 1)
	assert.Equal(t, "green", img.EnumMappings[0].Name)

	assert.NoError(t, img.Validate())
	assert.Equal(t, len(c.Pools()), len(img.Pools))
}

func TestCompile_UnsupportedConstant(t *testing.T) {
	model := &config.Model{
		Constants: []*config.Constant{{Name: "t", Value: &val.TypeVal{T: val.Base(val.TagInt)}}},
	}
	_, _, err := Compile(context.Background(), model)
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrAssignment))
	assert.Contains(t, err.Error(), "constant t")
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, ContentHash("f", "sig", "src"), ContentHash("f", "sig", "src"))
	assert.NotEqual(t, ContentHash("ab", "c"), ContentHash("a", "bc"))
	assert.NotZero(t, ContentHash())
}
