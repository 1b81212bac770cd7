package memsession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/taskdog/taskdog/internal/domain/auth"
	"github.com/taskdog/taskdog/internal/ports"
)

var _ ports.SessionStore = (*Store)(nil)

func TestStore_SaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-123",
		Email:     "user@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}

	require.NoError(t, store.Save(ctx, session))

	retrieved, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session, retrieved)
}

func TestStore_GetNonExistent(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "non-existent")
	assert.Equal(t, ErrNotFound, err)
}

func TestStore_SaveRejectsEmptyIDAndExpired(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.Save(ctx, domainauth.Session{ExpiresAt: time.Now().Add(time.Hour)})
	require.Error(t, err)

	err = store.Save(ctx, domainauth.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestStore_GetEvictsExpired(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "short-lived",
		UserID:    "user-123",
		ExpiresAt: time.Now().Add(10 * time.Millisecond),
	}
	require.NoError(t, store.Save(ctx, session))

	time.Sleep(20 * time.Millisecond)

	_, err := store.Get(ctx, "short-lived")
	assert.Equal(t, ErrNotFound, err)
	assert.Empty(t, store.sessions)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	session := domainauth.Session{
		ID:        "sess-del",
		UserID:    "user-123",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, session))

	require.NoError(t, store.Delete(ctx, "sess-del"))

	_, err := store.Get(ctx, "sess-del")
	assert.Equal(t, ErrNotFound, err)

	// Deleting again or with an empty id is a no-op.
	require.NoError(t, store.Delete(ctx, "sess-del"))
	require.NoError(t, store.Delete(ctx, ""))
}
