package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rps-frame/internal/game"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	tok, err := NewTokenStore("test-secret", time.Hour)
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"token":  tok,
	}
}

func bump(prev game.State) (game.State, error) {
	prev.Score++
	return prev, nil
}

func TestStore_SaveThenUpdate(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := &Session{State: game.Initial(5)}
			tok, err := st.Save(ctx, s)
			require.NoError(t, err)
			require.NotEmpty(t, tok)
			require.NotEmpty(t, s.ID)

			got, tok2, err := st.Update(ctx, tok, bump)
			require.NoError(t, err)
			assert.Equal(t, s.ID, got.ID)
			assert.Equal(t, 1, got.State.Score)
			assert.Equal(t, 5, got.State.Seed)

			got, _, err = st.Update(ctx, tok2, bump)
			require.NoError(t, err)
			assert.Equal(t, 2, got.State.Score)
		})
	}
}

func TestStore_UnknownToken(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, tok := range []string{"", "nope", "a.b.c"} {
				called := false
				_, _, err := st.Update(ctx, tok, func(p game.State) (game.State, error) {
					called = true
					return p, nil
				})
				assert.True(t, errors.Is(err, ErrNotFound), "token %q: %v", tok, err)
				assert.False(t, called)
			}
		})
	}
}

func TestStore_TransitionErrorPropagates(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tok, err := st.Save(ctx, &Session{State: game.Initial(1)})
			require.NoError(t, err)
			_, _, err = st.Update(ctx, tok, func(game.State) (game.State, error) {
				return game.State{}, boom
			})
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestMemory_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	tok, err := m.Save(ctx, &Session{State: game.Initial(0)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.Update(ctx, tok, bump)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _, err := m.Update(ctx, tok, func(p game.State) (game.State, error) { return p, nil })
	require.NoError(t, err)
	assert.Equal(t, 50, got.State.Score)
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	old, _ := m.Save(ctx, &Session{State: game.Initial(0)})
	now = now.Add(30 * time.Minute)
	fresh, _ := m.Save(ctx, &Session{State: game.Initial(0)})

	assert.Equal(t, 1, m.Sweep(10*time.Minute))
	assert.Equal(t, 1, m.Len())

	_, _, err := m.Update(ctx, old, bump)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = m.Update(ctx, fresh, bump)
	assert.NoError(t, err)
}

func TestToken_Expired(t *testing.T) {
	ctx := context.Background()
	st, err := NewTokenStore("s", time.Minute)
	require.NoError(t, err)
	now := time.Now()
	st.now = func() time.Time { return now }

	tok, err := st.Save(ctx, &Session{State: game.Initial(3)})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, _, err = st.Update(ctx, tok, bump)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToken_WrongSecret(t *testing.T) {
	ctx := context.Background()
	a, err := NewTokenStore("alpha", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenStore("beta", time.Hour)
	require.NoError(t, err)

	tok, err := a.Save(ctx, &Session{State: game.Initial(3)})
	require.NoError(t, err)
	_, _, err = b.Update(ctx, tok, bump)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToken_StateIsNormalized(t *testing.T) {
	ctx := context.Background()
	st, err := NewTokenStore("s", time.Hour)
	require.NoError(t, err)

	tok, err := st.Save(ctx, &Session{State: game.State{UserMove: "lizard", AIMove: "paper", Outcome: "??", Score: -1}})
	require.NoError(t, err)

	var seen game.State
	_, _, err = st.Update(ctx, tok, func(p game.State) (game.State, error) {
		seen = p
		return p, nil
	})
	require.NoError(t, err)
	assert.Equal(t, game.Rock, seen.UserMove)
	assert.Equal(t, game.Paper, seen.AIMove)
	assert.Equal(t, game.Draw, seen.Outcome)
	assert.Equal(t, 0, seen.Score)
}

func TestNewTokenStore_Validation(t *testing.T) {
	_, err := NewTokenStore("", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenStore("s", 0)
	assert.Error(t, err)
}
