package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/testutil"
)

// appendTestAuditEntry stores one entry and fails the test on error.
func appendTestAuditEntry(t *testing.T, repo *AuditLogRepo, operation string, taskID *int64, success bool) *model.AuditEntry {
	t.Helper()

	entry := &model.AuditEntry{
		Operation:  operation,
		TaskID:     taskID,
		ClientName: "test-client",
		Success:    success,
	}
	if !success {
		entry.ErrorMessage = "forced failure"
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestAuditLogRepo_Append(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()

		t.Run("store fills id and timestamp", func(t *testing.T) {
			tp := NewFixedTimeProvider(testutil.TestTime())
			repo := NewAuditLogRepoWithTimeProvider(db, tp)

			taskID := int64(101)
			entry := &model.AuditEntry{
				Operation:  model.AuditOpCreateTask,
				TaskID:     &taskID,
				TaskName:   "write report",
				ClientName: "cli",
				NewValues:  map[string]any{"name": "write report", "status": "pending"},
				Success:    true,
			}
			require.NoError(t, repo.Append(ctx, entry))

			assert.NotZero(t, entry.ID)
			assert.True(t, entry.Timestamp.Equal(testutil.TestTime()))
			require.NotNil(t, entry.TaskID)
			assert.Equal(t, int64(101), *entry.TaskID)
			assert.Equal(t, map[string]any{"name": "write report", "status": "pending"}, entry.NewValues)
			assert.Nil(t, entry.OldValues)
		})

		t.Run("caller timestamp preserved", func(t *testing.T) {
			repo := NewAuditLogRepo(db)

			stamp := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
			entry := &model.AuditEntry{
				Timestamp: stamp,
				Operation: model.AuditOpLogHours,
				Success:   true,
			}
			require.NoError(t, repo.Append(ctx, entry))
			assert.True(t, entry.Timestamp.Equal(stamp))
		})

		t.Run("failed write recorded", func(t *testing.T) {
			repo := NewAuditLogRepo(db)

			entry := &model.AuditEntry{
				Operation:    model.AuditOpStartTask,
				TaskName:     "blocked task",
				Success:      false,
				ErrorMessage: "dependency not met",
			}
			require.NoError(t, repo.Append(ctx, entry))
			assert.NotZero(t, entry.ID)
			assert.False(t, entry.Success)
			assert.Equal(t, "dependency not met", entry.ErrorMessage)
		})

		t.Run("nil entry rejected", func(t *testing.T) {
			repo := NewAuditLogRepo(db)

			err := repo.Append(ctx, nil)
			require.Error(t, err)
			assert.Equal(t, ErrAuditEntryRequired, err)
		})
	})
}

func TestAuditLogRepo_List(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAuditLogRepo(db)

		taskA := int64(201)
		taskB := int64(202)
		appendTestAuditEntry(t, repo, model.AuditOpCreateTask, &taskA, true)
		appendTestAuditEntry(t, repo, model.AuditOpUpdateTask, &taskA, true)
		appendTestAuditEntry(t, repo, model.AuditOpUpdateTask, &taskB, false)
		appendTestAuditEntry(t, repo, model.AuditOpOptimizeSchedule, nil, true)

		t.Run("newest first", func(t *testing.T) {
			entries, err := repo.List(ctx, model.AuditListOptions{Limit: 10})
			require.NoError(t, err)
			require.Len(t, entries, 4)

			for i := 1; i < len(entries); i++ {
				assert.Greater(t, entries[i-1].ID, entries[i].ID)
			}
			assert.Equal(t, model.AuditOpOptimizeSchedule, entries[0].Operation)
		})

		t.Run("cursor pages do not overlap", func(t *testing.T) {
			page1, err := repo.List(ctx, model.AuditListOptions{Limit: 2})
			require.NoError(t, err)
			require.Len(t, page1, 2)

			page2, err := repo.List(ctx, model.AuditListOptions{Limit: 2, BeforeID: page1[1].ID})
			require.NoError(t, err)
			require.Len(t, page2, 2)

			assert.Less(t, page2[0].ID, page1[1].ID)

			rest, err := repo.List(ctx, model.AuditListOptions{Limit: 2, BeforeID: page2[1].ID})
			require.NoError(t, err)
			assert.Empty(t, rest)
		})

		t.Run("filter by operation", func(t *testing.T) {
			entries, err := repo.List(ctx, model.AuditListOptions{Operation: model.AuditOpUpdateTask, Limit: 10})
			require.NoError(t, err)
			require.Len(t, entries, 2)
			for _, entry := range entries {
				assert.Equal(t, model.AuditOpUpdateTask, entry.Operation)
			}
		})

		t.Run("filter by task id", func(t *testing.T) {
			entries, err := repo.List(ctx, model.AuditListOptions{TaskID: &taskA, Limit: 10})
			require.NoError(t, err)
			require.Len(t, entries, 2)
			for _, entry := range entries {
				require.NotNil(t, entry.TaskID)
				assert.Equal(t, taskA, *entry.TaskID)
			}
		})

		t.Run("filters combine", func(t *testing.T) {
			entries, err := repo.List(ctx, model.AuditListOptions{
				Operation: model.AuditOpUpdateTask,
				TaskID:    &taskB,
				Limit:     10,
			})
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.False(t, entries[0].Success)
		})

		t.Run("zero options use default page size", func(t *testing.T) {
			entries, err := repo.List(ctx, model.AuditListOptions{})
			require.NoError(t, err)
			assert.Len(t, entries, 4)
		})

		t.Run("no matches returns empty slice", func(t *testing.T) {
			entries, err := repo.List(ctx, model.AuditListOptions{Operation: model.AuditOpDeleteTask, Limit: 10})
			require.NoError(t, err)
			require.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	})
}

func TestAuditLogRepo_Stats(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewAuditLogRepo(db)

		taskID := int64(301)
		appendTestAuditEntry(t, repo, model.AuditOpCreateTask, &taskID, true)
		appendTestAuditEntry(t, repo, model.AuditOpCreateTask, &taskID, true)
		appendTestAuditEntry(t, repo, model.AuditOpCompleteTask, &taskID, false)

		t.Run("global stats", func(t *testing.T) {
			stats, err := repo.Stats(ctx, nil)
			require.NoError(t, err)
			require.NotNil(t, stats)

			assert.Equal(t, 3, stats.Total)
			assert.Equal(t, 2, stats.Succeeded)
			assert.Equal(t, 1, stats.Failed)
		})

		t.Run("stats for one operation", func(t *testing.T) {
			op := model.AuditOpCreateTask
			stats, err := repo.Stats(ctx, &op)
			require.NoError(t, err)
			require.NotNil(t, stats)

			assert.Equal(t, 2, stats.Total)
			assert.Equal(t, 2, stats.Succeeded)
			assert.Equal(t, 0, stats.Failed)
		})

		t.Run("unknown operation yields zeroes", func(t *testing.T) {
			op := "no_such_operation"
			stats, err := repo.Stats(ctx, &op)
			require.NoError(t, err)
			require.NotNil(t, stats)

			assert.Equal(t, 0, stats.Total)
		})
	})
}
