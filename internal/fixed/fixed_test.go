package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monolith/internal/errs"
	"monolith/internal/heap"
)

type Player struct {
	ID   uint64
	HP   uint32
	MP   uint32
	Name [32]byte
}

func NewPlayer(id uint64, hp, mp uint32, name string) *Player {
	p := Player{ID: id, HP: hp, MP: mp}
	copy(p.Name[:], []byte(name))
	return &p
}

func newHeap(t *testing.T) *heap.Heap {
	t.Helper()
	h, err := heap.New(heap.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestFixedRoundTrip(t *testing.T) {
	h := newHeap(t)
	p, err := NewFixed(h, NewPlayer(7, 100, 50, "player7"))
	require.NoError(t, err)

	got, err := LoadFixed[Player](h, p)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, uint32(100), got.HP)
	assert.Equal(t, "player7", string(got.Name[:7]))

	got.HP = 1
	require.NoError(t, StoreFixed(h, p, got))
	again, err := LoadFixed[Player](h, p)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), again.HP)
}

func TestFixedRejectsPointerTypes(t *testing.T) {
	h := newHeap(t)
	type withString struct {
		ID   uint64
		Name string
	}
	_, err := NewFixed(h, &withString{ID: 1})
	assert.ErrorIs(t, err, errs.ErrNotFixed)

	_, err = LoadFixed[[]byte](h, 0)
	assert.ErrorIs(t, err, errs.ErrNotFixed)
}

func TestFixedNoSpace(t *testing.T) {
	h := newHeap(t)
	for {
		if _, err := NewFixed(h, NewPlayer(1, 1, 1, "x")); err != nil {
			assert.ErrorIs(t, err, errs.ErrNoSpace)
			break
		}
	}
	assert.NoError(t, h.Validate())
}

func TestFixedTooSmallBlock(t *testing.T) {
	h := newHeap(t)
	p, ok := h.Alloc(4)
	require.True(t, ok)
	_, err := LoadFixed[Player](h, p)
	assert.Error(t, err)
	assert.ErrorIs(t, StoreFixed(h, p, NewPlayer(1, 1, 1, "x")), errs.ErrBadArgument)
}
