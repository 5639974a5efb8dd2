package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/val"
)

func TestStore(t *testing.T) {
	s := newStore[val.Value](plan.Int, 2)

	_, err := s.get(0)
	assert.ErrorIs(t, err, plan.ErrUnresolved)
	_, err = s.get(2)
	assert.ErrorIs(t, err, plan.ErrPayloadShape)

	require.NoError(t, s.put(0, &val.IntVal{V: 1}))
	assert.ErrorIs(t, s.put(0, &val.IntVal{V: 2}), plan.ErrDoubleInit)
	v, err := s.get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.(*val.IntVal).V)
	assert.Equal(t, []int{1}, s.unbuilt())

	t.Run("shell then build", func(t *testing.T) {
		ts := newStore[val.Type](plan.Type, 1)
		shell := val.NewRecordType("r")
		require.NoError(t, ts.shell(0, shell))
		assert.ErrorIs(t, ts.shell(0, shell), plan.ErrDoubleInit)
		got, err := ts.get(0)
		require.NoError(t, err)
		assert.Same(t, shell, got)
		assert.Equal(t, []int{0}, ts.unbuilt(), "a shell is resolvable but not built")
		require.NoError(t, ts.put(0, shell))
		assert.Empty(t, ts.unbuilt())
	})
}

func TestManager(t *testing.T) {
	img := &plan.Image{
		Tables: plan.Tables{
			Strings:   []string{"a"},
			Indices:   [][]int{{1, 2}},
			Hashes:    []uint64{0xfeed},
			ConstVals: []plan.Ref{{Tag: plan.Int, Offset: 0}, {Tag: plan.Type, Offset: 0}},
		},
		Pools: []plan.PoolImage{{Tag: plan.Int, Size: 1}},
	}
	m := NewManager(img)

	s, err := m.Strings(0)
	require.NoError(t, err)
	assert.Equal(t, "a", s)
	_, err = m.Strings(1)
	assert.ErrorIs(t, err, plan.ErrPayloadShape)

	ix, err := m.Indices(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ix)
	h, err := m.Hashes(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xfeed), h)

	_, err = m.ConstVal(0)
	assert.ErrorIs(t, err, plan.ErrUnresolved)
	require.NoError(t, m.values[plan.Int].put(0, &val.IntVal{V: 9}))
	v, err := m.ConstVal(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.(*val.IntVal).V)

	_, err = m.ConstVal(1)
	assert.ErrorIs(t, err, plan.ErrPayloadShape, "const values only cite value pools")

	r, err := m.Resolve(plan.Int, 0)
	require.NoError(t, err)
	assert.Same(t, v, r)
	_, err = m.Resolve(plan.Type, 0)
	assert.ErrorIs(t, err, plan.ErrPayloadShape, "the image has no type pool")

	nilAttrs, err := m.OptAttrs(plan.None)
	require.NoError(t, err)
	assert.Nil(t, nilAttrs)
	assert.Len(t, m.unbuiltRefs(), 0)
}
