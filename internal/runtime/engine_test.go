package runtime

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bootgraph/internal/compiler"
	"github.com/vk/bootgraph/internal/config"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/val"
)

func compile(t *testing.T, model *config.Model) *plan.Image {
	t.Helper()
	img, _, err := compiler.Compile(context.Background(), model)
	require.NoError(t, err)
	return img
}

func replay(t *testing.T, img *plan.Image, reg *registry.Registry) (*Engine, *val.Scope) {
	t.Helper()
	if reg == nil {
		reg = registry.New()
	}
	scope := val.NewScope()
	e, err := New(img, reg, scope)
	require.NoError(t, err)
	require.NoError(t, e.InitializeAll(context.Background()))
	return e, scope
}

func constants(vs ...val.Value) *config.Model {
	m := &config.Model{}
	for _, v := range vs {
		m.Constants = append(m.Constants, &config.Constant{Value: v})
	}
	return m
}

// valueOpts compare values by content. Base types are singletons and
// netip values are compared with ==.
var valueOpts = []cmp.Option{
	cmp.Comparer(func(a, b *val.StringVal) bool { return a.String() == b.String() }),
	cmp.Comparer(func(a, b *val.BaseType) bool { return a == b }),
	cmp.Comparer(func(a, b *val.AddrVal) bool { return a.Addr == b.Addr }),
	cmp.Comparer(func(a, b *val.SubNetVal) bool { return a.Prefix == b.Prefix }),
	cmpopts.EquateEmpty(),
}

func TestReplay_Strings(t *testing.T) {
	img := compile(t, constants(val.NewStringVal("a"), val.NewStringVal("ab")))
	e, _ := replay(t, img, nil)

	for off, want := range []string{"a", "ab"} {
		v, err := e.Manager().Value(plan.String, off)
		require.NoError(t, err)
		sv, ok := v.(*val.StringVal)
		require.True(t, ok)
		assert.Equal(t, want, sv.String())
		assert.Equal(t, len(want), sv.Len())
	}
}

func TestReplay_ListTypeByCohort(t *testing.T) {
	elem := val.Base(val.TagString)
	img := compile(t, &config.Model{Types: []*config.NamedType{
		{Name: "names", Type: &val.TypeList{Types: []val.Type{elem}}},
	}})
	require.Equal(t, 1, img.MaxCohort)

	ctx := context.Background()
	e, err := New(img, registry.New(), val.NewScope())
	require.NoError(t, err)
	require.NoError(t, e.PreInit(ctx))
	require.NoError(t, e.GenerateCohort(ctx, 0))

	got, err := e.Manager().Types(0)
	require.NoError(t, err)
	assert.Same(t, elem, got)
	_, err = e.Manager().Types(1)
	assert.ErrorIs(t, err, plan.ErrUnresolved, "cohort 1 has not run yet")

	require.NoError(t, e.GenerateCohort(ctx, 1))
	tl, err := typeAt[*val.TypeList](e.Manager(), 1)
	require.NoError(t, err)
	require.Len(t, tl.Types, 1)
	assert.Same(t, elem, tl.Types[0])

	require.NoError(t, e.Finish(ctx))
}

func TestReplay_Table(t *testing.T) {
	tt := &val.TableType{
		Indices: &val.TypeList{Types: []val.Type{val.Base(val.TagString)}},
		Yield:   val.Base(val.TagInt),
	}
	keys := []string{"x", "y", "z"}
	want := &val.TableVal{TableType: tt}
	for i, k := range keys {
		want.Entries = append(want.Entries, val.TableEntry{Key: val.NewStringVal(k), Value: &val.IntVal{V: int64(10 * i)}})
	}
	img := compile(t, constants(want))

	e, _ := replay(t, img, nil)
	v, err := e.Manager().Value(plan.Table, 0)
	require.NoError(t, err)
	got := v.(*val.TableVal)
	require.Equal(t, 3, got.Len())
	for i, k := range keys {
		assert.Equal(t, k, got.Entries[i].Key.(*val.StringVal).String())
		assert.Equal(t, int64(10*i), got.Entries[i].Value.(*val.IntVal).V)
	}
	if diff := cmp.Diff(want, got, valueOpts...); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	t.Run("odd key/value list", func(t *testing.T) {
		img := compile(t, constants(want))
		pi, ok := img.Pool(plan.Table)
		require.True(t, ok)
		last := len(pi.Cohorts) - 1
		in := &pi.Cohorts[last][0]
		in.Payload = in.Payload[:len(in.Payload)-1]

		e, err := New(img, registry.New(), val.NewScope())
		require.NoError(t, err)
		err = e.InitializeAll(context.Background())
		assert.ErrorIs(t, err, plan.ErrPayloadShape)
	})

	t.Run("set", func(t *testing.T) {
		st := &val.TableType{Indices: &val.TypeList{Types: []val.Type{val.Base(val.TagCount)}}}
		set := &val.TableVal{TableType: st}
		for i := uint64(1); i <= 3; i++ {
			set.Entries = append(set.Entries, val.TableEntry{Key: &val.CountVal{V: i}})
		}
		e, _ := replay(t, compile(t, constants(set)), nil)
		v, err := e.Manager().Value(plan.Table, 0)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(set, v, valueOpts...))
	})
}

func TestReplay_SelfReferentialRecord(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		node := val.NewRecordType("node")
		_, _ = node.AddField("next", node, nil)
		img := compile(t, &config.Model{Types: []*config.NamedType{{Name: "node", Type: node}}})

		e, _ := replay(t, img, nil)
		rt, err := typeAt[*val.RecordType](e.Manager(), 0)
		require.NoError(t, err)
		assert.NotSame(t, node, rt)
		assert.Equal(t, "node", rt.Name)
		require.Len(t, rt.Fields, 1)
		assert.Same(t, rt, rt.Fields[0].Type, "the field type is the record itself")
	})

	t.Run("mutual, through a vector", func(t *testing.T) {
		tree := val.NewRecordType("tree")
		leaf := val.NewRecordType("leaf")
		_, _ = tree.AddField("kids", &val.VectorType{Yield: leaf}, nil)
		_, _ = leaf.AddField("parent", tree, nil)
		img := compile(t, &config.Model{Types: []*config.NamedType{{Name: "tree", Type: tree}}})

		e, _ := replay(t, img, nil)
		rt, err := typeAt[*val.RecordType](e.Manager(), 0)
		require.NoError(t, err)
		vt := rt.Fields[0].Type.(*val.VectorType)
		lt := vt.Yield.(*val.RecordType)
		assert.Equal(t, "leaf", lt.Name)
		assert.Same(t, rt, lt.Fields[0].Type)
	})

	t.Run("pre-init installs shells only", func(t *testing.T) {
		node := val.NewRecordType("node")
		_, _ = node.AddField("next", node, nil)
		img := compile(t, &config.Model{Types: []*config.NamedType{{Name: "node", Type: node}}})

		e, err := New(img, registry.New(), val.NewScope())
		require.NoError(t, err)
		require.NoError(t, e.PreInit(context.Background()))
		rt, err := typeAt[*val.RecordType](e.Manager(), 0)
		require.NoError(t, err)
		assert.Equal(t, "node", rt.Name)
		assert.Empty(t, rt.Fields)
	})
}

func TestReplay_RoundTrip(t *testing.T) {
	point := val.NewRecordType("point")
	_, _ = point.AddField("x", val.Base(val.TagInt), nil)
	_, _ = point.AddField("label", val.Base(val.TagString), &val.Attributes{Attrs: []*val.Attr{{Tag: val.AttrOptional}}})

	addr, err := val.NewAddrVal("10.0.0.1")
	require.NoError(t, err)
	subnet, err := val.NewSubNetVal("192.168.7.9/16")
	require.NoError(t, err)
	pattern, err := val.NewPatternVal("^a+b$", true)
	require.NoError(t, err)

	values := []val.Value{
		&val.BoolVal{V: true},
		&val.IntVal{V: -42},
		&val.CountVal{V: 7},
		&val.DoubleVal{V: 2.5, Tag: val.TagDouble},
		&val.DoubleVal{V: 1700000000.25, Tag: val.TagTime},
		addr,
		subnet,
		&val.RecordVal{RecordType: point, Fields: []val.Value{&val.IntVal{V: 3}, val.NewStringVal("p")}},
		&val.RecordVal{RecordType: point, Fields: []val.Value{&val.IntVal{V: 4}, nil}},
		&val.VectorVal{VectorType: &val.VectorType{Yield: val.Base(val.TagInt)}, Elems: []val.Value{&val.IntVal{V: 1}, &val.IntVal{V: 2}}},
		&val.ListVal{Vals: []val.Value{&val.BoolVal{V: false}, val.NewStringVal("s")}},
		&val.FileVal{FileType: &val.FileType{Yield: val.Base(val.TagString)}, Name: "conn.log"},
	}
	img := compile(t, constants(append(values, pattern)...))
	e, _ := replay(t, img, nil)

	for _, want := range values {
		tag := tagOf(want)
		got := findValue(t, e, tag, func(v val.Value) bool {
			return cmp.Equal(want, v, valueOpts...)
		})
		assert.True(t, got, "%T %v not reproduced", want, want)
	}

	pv, err := e.Manager().Value(plan.Pattern, 0)
	require.NoError(t, err)
	assert.True(t, pv.(*val.PatternVal).MatchString("AAB"))
	assert.False(t, pv.(*val.PatternVal).MatchString("ba"))
}

func tagOf(v val.Value) plan.Tag {
	switch v.(type) {
	case *val.BoolVal:
		return plan.Bool
	case *val.IntVal:
		return plan.Int
	case *val.CountVal:
		return plan.Count
	case *val.DoubleVal:
		return plan.Double
	case *val.AddrVal:
		return plan.Addr
	case *val.SubNetVal:
		return plan.SubNet
	case *val.RecordVal:
		return plan.Record
	case *val.VectorVal:
		return plan.Vector
	case *val.ListVal:
		return plan.List
	case *val.FileVal:
		return plan.File
	}
	return -1
}

func findValue(t *testing.T, e *Engine, tag plan.Tag, match func(val.Value) bool) bool {
	t.Helper()
	s := e.Manager().values[tag]
	require.NotNil(t, s)
	for off := range s.slots {
		v, err := e.Manager().Value(tag, off)
		require.NoError(t, err)
		if match(v) {
			return true
		}
	}
	return false
}

func TestReplay_AssignmentDefect(t *testing.T) {
	// type[0] = vector of type[1], but type[1] is only built in cohort 1.
	img := &plan.Image{
		MaxCohort: 1,
		Pools: []plan.PoolImage{{
			Tag:  plan.Type,
			Size: 2,
			Cohorts: [][]plan.Init{
				{{Offset: 0, Payload: []int{int(val.TagVector), 1}}},
				{{Offset: 1, Payload: []int{int(val.TagInt)}}},
			},
		}},
	}
	e, err := New(img, registry.New(), val.NewScope())
	require.NoError(t, err)
	err = e.InitializeAll(context.Background())
	require.ErrorIs(t, err, plan.ErrUnresolved)
	assert.Contains(t, err.Error(), "cohort 0")

	assert.ErrorIs(t, e.GenerateCohort(context.Background(), 1), plan.ErrProtocol, "a failed engine accepts no further work")
}

func TestEngine_Protocol(t *testing.T) {
	ctx := context.Background()
	node := val.NewRecordType("node")
	_, _ = node.AddField("next", node, nil)
	_, _ = node.AddField("n", val.Base(val.TagInt), nil)
	img := compile(t, &config.Model{Types: []*config.NamedType{{Name: "node", Type: node}}})
	require.Equal(t, 1, img.MaxCohort)

	newEngine := func() *Engine {
		e, err := New(img, registry.New(), val.NewScope())
		require.NoError(t, err)
		return e
	}

	t.Run("generate before pre-init", func(t *testing.T) {
		assert.ErrorIs(t, newEngine().GenerateCohort(ctx, 0), plan.ErrProtocol)
	})

	t.Run("pre-init twice", func(t *testing.T) {
		e := newEngine()
		require.NoError(t, e.PreInit(ctx))
		assert.ErrorIs(t, e.PreInit(ctx), plan.ErrProtocol)
	})

	t.Run("cohorts out of order", func(t *testing.T) {
		e := newEngine()
		require.NoError(t, e.PreInit(ctx))
		assert.ErrorIs(t, e.GenerateCohort(ctx, 1), plan.ErrProtocol)
		require.NoError(t, e.GenerateCohort(ctx, 0))
		assert.ErrorIs(t, e.GenerateCohort(ctx, 0), plan.ErrProtocol)
		require.NoError(t, e.GenerateCohort(ctx, 1))
		assert.ErrorIs(t, e.GenerateCohort(ctx, 2), plan.ErrProtocol)
	})

	t.Run("finish early", func(t *testing.T) {
		e := newEngine()
		require.NoError(t, e.PreInit(ctx))
		require.NoError(t, e.GenerateCohort(ctx, 0))
		assert.ErrorIs(t, e.Finish(ctx), plan.ErrProtocol)
		require.NoError(t, e.GenerateCohort(ctx, 1))
		require.NoError(t, e.Finish(ctx))
		assert.ErrorIs(t, e.Finish(ctx), plan.ErrProtocol)
	})

	t.Run("empty image", func(t *testing.T) {
		e, err := New(&plan.Image{MaxCohort: -1}, registry.New(), val.NewScope())
		require.NoError(t, err)
		assert.NoError(t, e.InitializeAll(ctx))
	})
}

func TestNew_RejectsMalformedImages(t *testing.T) {
	tests := []struct {
		name string
		img  *plan.Image
		want error
	}{
		{
			name: "offset initialized twice",
			img: &plan.Image{MaxCohort: 0, Pools: []plan.PoolImage{{
				Tag: plan.Int, Size: 1,
				Cohorts: [][]plan.Init{{{Offset: 0, Payload: []int{1}}, {Offset: 0, Payload: []int{2}}}},
			}}},
			want: plan.ErrDoubleInit,
		},
		{
			name: "slot without instruction",
			img: &plan.Image{MaxCohort: 0, Pools: []plan.PoolImage{{
				Tag: plan.Int, Size: 2,
				Cohorts: [][]plan.Init{{{Offset: 0, Payload: []int{1}}}},
			}}},
			want: plan.ErrPayloadShape,
		},
		{
			name: "cohort beyond maximum",
			img: &plan.Image{MaxCohort: 0, Pools: []plan.PoolImage{{
				Tag: plan.Int, Size: 1,
				Cohorts: [][]plan.Init{nil, {{Offset: 0, Payload: []int{1}}}},
			}}},
			want: plan.ErrAssignment,
		},
		{
			name: "unknown pool",
			img:  &plan.Image{MaxCohort: -1, Pools: []plan.PoolImage{{Tag: plan.Tag(99)}}},
			want: plan.ErrPayloadShape,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.img, registry.New(), val.NewScope())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
