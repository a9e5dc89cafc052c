package state

import (
	"testing"

	"github.com/cbodonnell/broadside/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_InitialState(t *testing.T) {
	s := NewInMemoryStore()
	assert.Equal(t, types.Waiting{}, s.Get())
	assert.Equal(t, uint64(0), s.Version())
}

func TestInMemoryStore_ReplaceNotMerge(t *testing.T) {
	tests := []struct {
		name   string
		first  types.GameState
		second types.GameState
	}{
		{
			name:   "adding then won",
			first:  types.Adding{Ships: []types.Ship{{{X: 0, Y: 0}}}, Size: 10},
			second: types.Won{Who: types.Player2},
		},
		{
			name:   "adding then adding with fewer ships",
			first:  types.Adding{Ships: []types.Ship{{{X: 0, Y: 0}}, {{X: 5, Y: 5}}}, Size: 10},
			second: types.Adding{Ships: []types.Ship{}, Size: 8},
		},
		{
			name:   "won then waiting",
			first:  types.Won{Who: types.Player1},
			second: types.Waiting{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewInMemoryStore()
			require.NoError(t, s.Replace(tt.first))
			require.NoError(t, s.Replace(tt.second))
			assert.Equal(t, tt.second, s.Get())
			assert.Equal(t, uint64(2), s.Version())
		})
	}
}

func TestInMemoryStore_ReplaceNil(t *testing.T) {
	s := NewInMemoryStore()
	assert.ErrorIs(t, s.Replace(nil), ErrNilState)
	assert.Equal(t, types.Waiting{}, s.Get())
}

func TestInMemoryStore_SubscribersInOrder(t *testing.T) {
	s := NewInMemoryStore()

	var calls []string
	s.Subscribe(func(previous, next types.GameState) {
		calls = append(calls, "first:"+string(previous.Type())+"->"+string(next.Type()))
	})
	s.Subscribe(func(previous, next types.GameState) {
		calls = append(calls, "second:"+string(next.Type()))
		// the new value is visible to subscribers
		assert.Equal(t, next, s.Get())
	})

	require.NoError(t, s.Replace(types.Adding{Ships: []types.Ship{}, Size: 10}))
	require.NoError(t, s.Replace(types.Won{Who: types.Player1}))

	assert.Equal(t, []string{
		"first:Waiting->Adding",
		"second:Adding",
		"first:Adding->Won",
		"second:Won",
	}, calls)
}

func TestInMemoryStore_Unsubscribe(t *testing.T) {
	s := NewInMemoryStore()

	count := 0
	unsubscribe := s.Subscribe(func(types.GameState, types.GameState) {
		count++
	})

	require.NoError(t, s.Replace(types.Guessing{}))
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Replace(types.Won{Who: types.Player2}))

	assert.Equal(t, 1, count)
}

func TestInMemoryStore_UnsubscribeDuringNotification(t *testing.T) {
	s := NewInMemoryStore()

	count := 0
	var unsubscribe func()
	unsubscribe = s.Subscribe(func(types.GameState, types.GameState) {
		count++
		unsubscribe()
	})

	require.NoError(t, s.Replace(types.Guessing{}))
	require.NoError(t, s.Replace(types.Guessing{}))
	assert.Equal(t, 1, count)
}

func TestInMemoryStore_RejectsReentrantReplace(t *testing.T) {
	s := NewInMemoryStore()

	var nestedErr error
	s.Subscribe(func(_, next types.GameState) {
		if next.Type() == types.StateTypeGuessing {
			nestedErr = s.Replace(types.Won{Who: types.Player1})
		}
	})

	require.NoError(t, s.Replace(types.Guessing{}))
	assert.ErrorIs(t, nestedErr, ErrReentrantReplace)
	assert.Equal(t, types.Guessing{}, s.Get())

	// the store is usable again once notification finished
	require.NoError(t, s.Replace(types.Won{Who: types.Player1}))
	assert.Equal(t, types.Won{Who: types.Player1}, s.Get())
}
