package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolsaas/core/user"
)

func TestTokenStores(t *testing.T) {
	stores := map[string]TokenStore{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "conf", "tokens.json")),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, ok := store.Get(KeyAccessToken)
			assert.False(t, ok)

			require.NoError(t, store.Set(KeyAccessToken, "acc"))
			require.NoError(t, store.Set(KeyRefreshToken, "ref"))
			val, ok := store.Get(KeyAccessToken)
			assert.True(t, ok)
			assert.Equal(t, "acc", val)

			require.NoError(t, store.Delete(KeyAccessToken, KeyRefreshToken))
			_, ok = store.Get(KeyAccessToken)
			assert.False(t, ok)
			_, ok = store.Get(KeyRefreshToken)
			assert.False(t, ok)
		})
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileStore(path)
	require.NoError(t, store.Set(KeyAccessToken, "acc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accessToken": "acc"}`, string(b))

	// persisted across instances
	val, ok := NewFileStore(path).Get(KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "acc", val)

	t.Run("corrupted file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("lol"), 0o600))
		_, ok := store.Get(KeyAccessToken)
		assert.False(t, ok)
		assert.Error(t, store.Set(KeyAccessToken, "acc"))

		require.NoError(t, os.WriteFile(path, []byte(`{"accessToken": "acc", "refre`), 0o600))
		require.NoError(t, store.Delete(KeyAccessToken, KeyRefreshToken))
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(b))

		sess := NewSession()
		require.NoError(t, os.WriteFile(path, []byte("lol"), 0o600))
		assert.NoError(t, sess.Logout(store))
	})
}

func TestSession(t *testing.T) {
	s := NewSession()
	assert.True(t, s.Loading)
	assert.False(t, s.Authenticated)
	assert.Nil(t, s.User)

	usr := &user.User{Email: "hero@test.in"}
	s.SetUser(usr)
	assert.True(t, s.Authenticated)
	assert.Same(t, usr, s.User)

	s.SetUser(nil)
	assert.False(t, s.Authenticated)

	s.SetAuthenticated(true)
	assert.True(t, s.Authenticated)
	s.SetLoading(false)
	assert.False(t, s.Loading)

	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyAccessToken, "acc"))
	require.NoError(t, store.Set(KeyRefreshToken, "ref"))
	s.SetUser(usr)

	require.NoError(t, s.Logout(store))
	assert.Nil(t, s.User)
	assert.False(t, s.Authenticated)
	_, ok := store.Get(KeyAccessToken)
	assert.False(t, ok)
	_, ok = store.Get(KeyRefreshToken)
	assert.False(t, ok)
}

func TestQueryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	cache := NewQueryCache()
	cache.now = func() time.Time { return now }
	assert.Equal(t, 5*time.Minute, cache.StaleTime)
	assert.Equal(t, 1, cache.Retry)

	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	t.Run("fresh value is served from cache", func(t *testing.T) {
		v, err := Query(ctx, cache, "me", fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		now = now.Add(4 * time.Minute)
		v, err = Query(ctx, cache, "me", fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.Equal(t, 1, calls)
	})

	t.Run("stale value is refetched", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		v, err := Query(ctx, cache, "me", fetch)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("invalidate", func(t *testing.T) {
		cache.Invalidate("me")
		v, err := Query(ctx, cache, "me", fetch)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})

	t.Run("one retry", func(t *testing.T) {
		attempts := 0
		flaky := func(context.Context) (string, error) {
			attempts++
			if attempts == 1 {
				return "", errors.New("boom")
			}
			return "ok", nil
		}
		v, err := Query(ctx, cache, "flaky", flaky)
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 2, attempts)

		attempts = 0
		failing := func(context.Context) (string, error) {
			attempts++
			return "", errors.New("boom")
		}
		_, err = Query(ctx, cache, "failing", failing)
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 2, attempts)
	})
}
