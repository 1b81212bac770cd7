package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
	"github.com/taskdog/taskdog/internal/testutil"
)

// createTestSink registers a sink with a unique name and fails the test on error.
func createTestSink(t *testing.T, repo *WebhookSinkRepo, namePrefix string) *model.WebhookSink {
	t.Helper()

	sink, err := repo.Create(context.Background(), &model.CreateWebhookSinkRequest{
		Name: fmt.Sprintf("%s-%d", namePrefix, time.Now().UnixNano()),
		URL:  "https://hooks.example.com/taskdog",
	})
	require.NoError(t, err)
	require.NotNil(t, sink)
	return sink
}

func TestWebhookSinkRepo_Create(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewWebhookSinkRepo(db)

		t.Run("successful creation with defaults", func(t *testing.T) {
			name := fmt.Sprintf("slack-%d", time.Now().UnixNano())
			sink, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
				Name: name,
				URL:  "https://hooks.example.com/taskdog",
			})
			require.NoError(t, err)
			require.NotNil(t, sink)

			_, parseErr := uuid.Parse(sink.ID)
			assert.NoError(t, parseErr)
			assert.Equal(t, name, sink.Name)
			assert.Equal(t, "https://hooks.example.com/taskdog", sink.URL)
			assert.Empty(t, sink.EventFilter)
			assert.Empty(t, sink.Secret)
			assert.True(t, sink.Enabled)
			assert.NotZero(t, sink.CreatedAt)
			assert.True(t, sink.UpdatedAt.Equal(sink.CreatedAt))
		})

		t.Run("explicit fields kept", func(t *testing.T) {
			sink, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
				Name:        fmt.Sprintf("filtered-%d", time.Now().UnixNano()),
				URL:         "https://hooks.example.com/completed",
				EventFilter: `type == 'task_completed'`,
				Secret:      "hunter2",
				Enabled:     testutil.BoolPtr(false),
			})
			require.NoError(t, err)

			assert.Equal(t, `type == 'task_completed'`, sink.EventFilter)
			assert.Equal(t, "hunter2", sink.Secret)
			assert.False(t, sink.Enabled)
		})

		t.Run("client supplied id honored", func(t *testing.T) {
			id := uuid.NewString()
			sink, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
				Name: fmt.Sprintf("seeded-%d", time.Now().UnixNano()),
				URL:  "https://hooks.example.com/seeded",
				ID:   &id,
			})
			require.NoError(t, err)
			assert.Equal(t, id, sink.ID)
		})

		t.Run("validation error", func(t *testing.T) {
			sink, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
				Name: "ab",
				URL:  "https://hooks.example.com/taskdog",
			})
			require.Error(t, err)
			assert.Nil(t, sink)
			assert.Contains(t, err.Error(), "at least 3 characters")

			sink, err = repo.Create(ctx, &model.CreateWebhookSinkRequest{
				Name: "valid name",
				URL:  "ftp://hooks.example.com/taskdog",
			})
			require.Error(t, err)
			assert.Nil(t, sink)
			assert.Contains(t, err.Error(), "http or https")
		})

		t.Run("duplicate name conflict", func(t *testing.T) {
			name := fmt.Sprintf("dup-%d", time.Now().UnixNano())
			_, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
				Name: name,
				URL:  "https://hooks.example.com/one",
			})
			require.NoError(t, err)

			sink, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
				Name: name,
				URL:  "https://hooks.example.com/two",
			})
			require.Error(t, err)
			assert.Nil(t, sink)
			assert.True(t, apperrors.IsConflict(err))
		})

		t.Run("nil request rejected", func(t *testing.T) {
			sink, err := repo.Create(ctx, nil)
			require.Error(t, err)
			assert.Nil(t, sink)
			assert.Equal(t, ErrSinkRequestRequired, err)
		})
	})
}

func TestWebhookSinkRepo_GetByIDAndName(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewWebhookSinkRepo(db)

		created := createTestSink(t, repo, "lookup")

		t.Run("get by id", func(t *testing.T) {
			sink, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, sink)
			assert.Equal(t, created.ID, sink.ID)
			assert.Equal(t, created.Name, sink.Name)
		})

		t.Run("get by name", func(t *testing.T) {
			sink, err := repo.GetByName(ctx, created.Name)
			require.NoError(t, err)
			require.NotNil(t, sink)
			assert.Equal(t, created.ID, sink.ID)
		})

		t.Run("unknown id", func(t *testing.T) {
			sink, err := repo.GetByID(ctx, uuid.NewString())
			require.Error(t, err)
			assert.Nil(t, sink)
			assert.Equal(t, ErrSinkNotFound, err)
		})

		t.Run("malformed id", func(t *testing.T) {
			sink, err := repo.GetByID(ctx, "not-a-uuid")
			require.Error(t, err)
			assert.Nil(t, sink)
			assert.Equal(t, ErrSinkNotFound, err)
		})

		t.Run("unknown name", func(t *testing.T) {
			sink, err := repo.GetByName(ctx, "no-such-sink")
			require.Error(t, err)
			assert.Nil(t, sink)
			assert.Equal(t, ErrSinkNotFound, err)
		})
	})
}

func TestWebhookSinkRepo_List(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewWebhookSinkRepo(db)

		for i := 0; i < 3; i++ {
			createTestSink(t, repo, fmt.Sprintf("page-%d", i))
		}

		t.Run("list all newest first", func(t *testing.T) {
			sinks, err := repo.List(ctx, 10, 0)
			require.NoError(t, err)
			require.Len(t, sinks, 3)

			for i := 1; i < len(sinks); i++ {
				prev, curr := sinks[i-1], sinks[i]
				assert.True(t,
					prev.CreatedAt.After(curr.CreatedAt) ||
						(prev.CreatedAt.Equal(curr.CreatedAt) && prev.ID > curr.ID))
			}
		})

		t.Run("pagination", func(t *testing.T) {
			page1, err := repo.List(ctx, 2, 0)
			require.NoError(t, err)
			require.Len(t, page1, 2)

			page2, err := repo.List(ctx, 2, 2)
			require.NoError(t, err)
			require.Len(t, page2, 1)

			assert.NotEqual(t, page1[0].ID, page2[0].ID)
			assert.NotEqual(t, page1[1].ID, page2[0].ID)
		})

		t.Run("defaults applied to bad paging values", func(t *testing.T) {
			sinks, err := repo.List(ctx, 0, -5)
			require.NoError(t, err)
			assert.Len(t, sinks, 3)
		})
	})
}

func TestWebhookSinkRepo_ListEnabled(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewWebhookSinkRepo(db)

		nano := time.Now().UnixNano()
		_, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
			Name: fmt.Sprintf("b-sink-%d", nano),
			URL:  "https://hooks.example.com/b",
		})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &model.CreateWebhookSinkRequest{
			Name: fmt.Sprintf("a-sink-%d", nano),
			URL:  "https://hooks.example.com/a",
		})
		require.NoError(t, err)
		disabled, err := repo.Create(ctx, &model.CreateWebhookSinkRequest{
			Name:    fmt.Sprintf("c-sink-%d", nano),
			URL:     "https://hooks.example.com/c",
			Enabled: testutil.BoolPtr(false),
		})
		require.NoError(t, err)

		sinks, err := repo.ListEnabled(ctx)
		require.NoError(t, err)
		require.Len(t, sinks, 2)

		assert.Equal(t, fmt.Sprintf("a-sink-%d", nano), sinks[0].Name)
		assert.Equal(t, fmt.Sprintf("b-sink-%d", nano), sinks[1].Name)
		for _, sink := range sinks {
			assert.True(t, sink.Enabled)
		}

		// re-enabling shows up on the next round
		_, err = repo.Update(ctx, disabled.ID, &model.UpdateWebhookSinkRequest{
			Enabled: testutil.BoolPtr(true),
		})
		require.NoError(t, err)

		sinks, err = repo.ListEnabled(ctx)
		require.NoError(t, err)
		assert.Len(t, sinks, 3)
	})
}

func TestWebhookSinkRepo_Update(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewWebhookSinkRepoWithTimeProvider(db, tp)

		created := createTestSink(t, repo, "update")

		t.Run("partial update touches only named fields", func(t *testing.T) {
			tp.AddTime(time.Hour)

			updated, err := repo.Update(ctx, created.ID, &model.UpdateWebhookSinkRequest{
				URL: testutil.StringPtr("https://hooks.example.com/moved"),
			})
			require.NoError(t, err)
			require.NotNil(t, updated)

			assert.Equal(t, "https://hooks.example.com/moved", updated.URL)
			assert.Equal(t, created.Name, updated.Name)
			assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
			assert.True(t, updated.UpdatedAt.Equal(testutil.TestTime().Add(time.Hour)))
		})

		t.Run("secret rotation", func(t *testing.T) {
			updated, err := repo.Update(ctx, created.ID, &model.UpdateWebhookSinkRequest{
				Secret: testutil.StringPtr("rotated"),
			})
			require.NoError(t, err)
			assert.Equal(t, "rotated", updated.Secret)
			assert.Equal(t, "https://hooks.example.com/moved", updated.URL)
		})

		t.Run("disable toggle", func(t *testing.T) {
			updated, err := repo.Update(ctx, created.ID, &model.UpdateWebhookSinkRequest{
				Enabled: testutil.BoolPtr(false),
			})
			require.NoError(t, err)
			assert.False(t, updated.Enabled)
		})

		t.Run("empty update rejected", func(t *testing.T) {
			updated, err := repo.Update(ctx, created.ID, &model.UpdateWebhookSinkRequest{})
			require.Error(t, err)
			assert.Nil(t, updated)
			assert.Contains(t, err.Error(), "at least one field")
		})

		t.Run("unknown id", func(t *testing.T) {
			updated, err := repo.Update(ctx, uuid.NewString(), &model.UpdateWebhookSinkRequest{
				Enabled: testutil.BoolPtr(true),
			})
			require.Error(t, err)
			assert.Nil(t, updated)
			assert.Equal(t, ErrSinkNotFound, err)
		})

		t.Run("malformed id", func(t *testing.T) {
			updated, err := repo.Update(ctx, "bogus", &model.UpdateWebhookSinkRequest{
				Enabled: testutil.BoolPtr(true),
			})
			require.Error(t, err)
			assert.Nil(t, updated)
			assert.Equal(t, ErrSinkNotFound, err)
		})

		t.Run("rename onto taken name conflicts", func(t *testing.T) {
			other := createTestSink(t, repo, "taken")

			updated, err := repo.Update(ctx, created.ID, &model.UpdateWebhookSinkRequest{
				Name: testutil.StringPtr(other.Name),
			})
			require.Error(t, err)
			assert.Nil(t, updated)
			assert.True(t, apperrors.IsConflict(err))
		})
	})
}

func TestWebhookSinkRepo_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewWebhookSinkRepo(db)

		created := createTestSink(t, repo, "delete")

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.GetByID(ctx, created.ID)
		assert.Equal(t, ErrSinkNotFound, err)

		deleted, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = repo.Delete(ctx, "not-a-uuid")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
