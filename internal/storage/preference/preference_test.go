package preference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetray/internal/storage/preference"
)

type failingStore struct {
	getErr error
	setErr error
}

func (f failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, f.getErr
}

func (f failingStore) Set(context.Context, string, string) error {
	return f.setErr
}

func TestNew_AbsentUsesFallbackAndWritesIt(t *testing.T) {
	ctx := context.Background()
	store := preference.NewMemoryStore()

	p, err := preference.New(ctx, store, "expr", "1d20", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "1d20", p.Get())
	assert.Equal(t, "expr", p.Key())

	raw, ok, err := store.Get(ctx, "expr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"1d20"`, raw)
}

func TestNew_ReadsStoredValue(t *testing.T) {
	ctx := context.Background()
	store := preference.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "expr", `"3d8+2"`))

	p, err := preference.New(ctx, store, "expr", "1d20", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "3d8+2", p.Get())
}

func TestNew_UndecodableUsesFallback(t *testing.T) {
	ctx := context.Background()
	store := preference.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "count", `not json`))

	p, err := preference.New(ctx, store, "count", 7, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 7, p.Get())

	raw, _, _ := store.Get(ctx, "count")
	assert.Equal(t, "7", raw)
}

func TestSet_WritesThrough(t *testing.T) {
	ctx := context.Background()
	store := preference.NewMemoryStore()
	p, err := preference.New(ctx, store, "expr", "1d20", zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, p.Set(ctx, "4d6"))
	assert.Equal(t, "4d6", p.Get())
	raw, _, _ := store.Get(ctx, "expr")
	assert.Equal(t, `"4d6"`, raw)
}

func TestNew_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := preference.New(ctx, failingStore{getErr: boom}, "k", 1, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, boom)

	_, err = preference.New(ctx, failingStore{setErr: boom}, "k", 1, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, boom)
}

type settings struct {
	Expression string         `json:"expression"`
	History    []string       `json:"history"`
	Weights    map[string]int `json:"weights"`
}

// Property: a value written under a key is read back after re-initialising
// against the same store.
func TestPreference_RoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		store := preference.NewMemoryStore()
		v := settings{
			Expression: rapid.StringMatching(`[ -~]{0,24}`).Draw(rt, "expression"),
			History:    rapid.SliceOfN(rapid.StringMatching(`[0-9]{1,2}d[0-9]{1,3}`), 1, 5).Draw(rt, "history"),
			Weights:    rapid.MapOfN(rapid.StringMatching(`[a-z]{1,6}`), rapid.Int(), 1, 4).Draw(rt, "weights"),
		}

		p, err := preference.New(ctx, store, "settings", settings{}, zaptest.NewLogger(t))
		require.NoError(rt, err)
		require.NoError(rt, p.Set(ctx, v))

		again, err := preference.New(ctx, store, "settings", settings{}, zaptest.NewLogger(t))
		require.NoError(rt, err)
		assert.Equal(rt, v, again.Get())
	})
}
