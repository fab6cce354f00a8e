package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestHolderLifecycle(t *testing.T) {
	h := NewHolder(nil)
	require.NoError(t, h.Init())
	assert.False(t, h.IsAuthenticated())

	require.NoError(t, h.Set("opaque-token"))
	assert.True(t, h.IsAuthenticated())
	assert.Equal(t, "opaque-token", h.Token())

	require.NoError(t, h.Clear())
	assert.False(t, h.IsAuthenticated())
	assert.Empty(t, h.Token())
}

func TestHolderExpiredJWTIsAbsent(t *testing.T) {
	h := NewHolder(nil)
	require.NoError(t, h.Set(signedToken(t, time.Now().Add(-time.Minute))))

	assert.False(t, h.IsAuthenticated())
	assert.Empty(t, h.Token())
}

func TestHolderExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	h := NewHolder(nil)
	require.NoError(t, h.Set(signedToken(t, exp)))

	got, ok := h.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.Equal(got), "expected %v, got %v", exp, got)
	assert.True(t, h.IsAuthenticated())

	require.NoError(t, h.Set("not-a-jwt"))
	_, ok = h.ExpiresAt()
	assert.False(t, ok)
}

func TestHolderInitClearsExpiredStoredToken(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(signedToken(t, time.Now().Add(-time.Hour))))

	h := NewHolder(store)
	require.NoError(t, h.Init())

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestFileStorePersistsAcrossHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first := NewHolder(NewFileStore(path))
	require.NoError(t, first.Init())
	require.NoError(t, first.Set("persisted-token"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hemocore_token": "persisted-token"}`, string(data))

	second := NewHolder(NewFileStore(path))
	require.NoError(t, second.Init())
	assert.Equal(t, "persisted-token", second.Token())

	require.NoError(t, second.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	token, err := NewFileStore(filepath.Join(dir, "absent.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0600))
	_, err = NewFileStore(corrupt).Load()
	assert.Error(t, err)

	assert.NoError(t, NewFileStore(filepath.Join(dir, "absent.json")).Clear())
}

func TestContextToken(t *testing.T) {
	_, ok := TokenFrom(context.Background())
	assert.False(t, ok)

	_, ok = TokenFrom(WithToken(context.Background(), ""))
	assert.False(t, ok)

	token, ok := TokenFrom(WithToken(context.Background(), "caller-token"))
	assert.True(t, ok)
	assert.Equal(t, "caller-token", token)
}
