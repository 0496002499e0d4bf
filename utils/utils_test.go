package utils

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	token, claims, err := GenerateToken("secret", 42, time.Hour, now)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := VerifyToken("secret", token)
	require.NoError(t, err)
	uid, err := got.UserIDUint()
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
	assert.Equal(t, claims.ID, got.ID)

	_, err = VerifyToken("other", token)
	assert.Error(t, err)

	expired, _, err := GenerateToken("secret", 42, time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = VerifyToken("secret", expired)
	assert.Error(t, err)

	_, _, err = GenerateToken("", 42, time.Hour, now)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

func TestNullableTime(t *testing.T) {
	var body struct {
		ExpiresAt NullableTime `json:"expires_at"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &body))
	assert.False(t, body.ExpiresAt.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"expires_at":null}`), &body))
	assert.True(t, body.ExpiresAt.Set)
	assert.Nil(t, body.ExpiresAt.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"expires_at":"2024-06-01T14:00:00+02:00"}`), &body))
	require.NotNil(t, body.ExpiresAt.Value)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), *body.ExpiresAt.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"expires_at":"tomorrow"}`), &body))
}

func TestLocalFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	store := LocalFileStore{Dir: dir}

	got, err := store.Save(context.Background(), "../escape.csv", []byte("a,b\n"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.csv"), got.Path)
	assert.Empty(t, got.URL)

	data, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestSetLogLevel(t *testing.T) {
	prev := Log.GetLevel()
	defer Log.SetLevel(prev)

	SetLogLevel("debug")
	assert.Equal(t, "debug", Log.GetLevel().String())
	SetLogLevel("chatty")
	assert.Equal(t, "debug", Log.GetLevel().String())
}
