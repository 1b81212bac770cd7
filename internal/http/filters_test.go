package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

func TestParseTaskListOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := ParseTaskListOptions(httptest.NewRequest("GET", "/api/v1/tasks", nil))

	require.NoError(t, err)
	assert.False(t, opts.IncludeArchived)
	assert.Nil(t, opts.Status)
	assert.Empty(t, opts.Tags)
	assert.False(t, opts.Reverse)
}

func TestParseTaskListOptions_FullQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET",
		"/api/v1/tasks?all=true&status=in_progress&tags=work,%20urgent&start_date=2025-03-01&end_date=2025-03-31&sort=deadline&reverse=true", nil)
	opts, err := ParseTaskListOptions(req)

	require.NoError(t, err)
	assert.True(t, opts.IncludeArchived)
	require.NotNil(t, opts.Status)
	assert.Equal(t, model.TaskStatusInProgress, *opts.Status)
	assert.Equal(t, []string{"work", "urgent"}, opts.Tags)
	assert.Equal(t, model.Date("2025-03-01"), opts.StartDate)
	assert.Equal(t, model.Date("2025-03-31"), opts.EndDate)
	assert.Equal(t, "deadline", opts.Sort)
	assert.True(t, opts.Reverse)
}

func TestParseTaskListOptions_InvalidStatus(t *testing.T) {
	t.Parallel()

	_, err := ParseTaskListOptions(httptest.NewRequest("GET", "/api/v1/tasks?status=paused", nil))

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, "status", appErr.Field)
}

func TestParseTaskListOptions_InvalidDate(t *testing.T) {
	t.Parallel()

	_, err := ParseTaskListOptions(httptest.NewRequest("GET", "/api/v1/tasks?start_date=03-01-2025", nil))

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "start_date", appErr.Field)
}

func TestParseTaskListOptions_WindowEndsBeforeStart(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/api/v1/tasks?start_date=2025-03-31&end_date=2025-03-01", nil)
	_, err := ParseTaskListOptions(req)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "end_date", appErr.Field)
}

func TestParseTaskListOptions_UnknownSortField(t *testing.T) {
	t.Parallel()

	_, err := ParseTaskListOptions(httptest.NewRequest("GET", "/api/v1/tasks?sort=color", nil))

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "sort", appErr.Field)
}

func TestParseTaskListOptions_SortDirectionSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		query       string
		wantSort    string
		wantReverse bool
		wantErr     bool
	}{
		{name: "desc suffix", query: "sort=name:desc", wantSort: "name", wantReverse: true},
		{name: "asc suffix", query: "sort=priority:asc", wantSort: "priority"},
		{name: "desc plus reverse cancels out", query: "sort=name:desc&reverse=true", wantSort: "name"},
		{name: "bare field unchanged", query: "sort=deadline", wantSort: "deadline"},
		{name: "unknown direction", query: "sort=name:down", wantErr: true},
		{name: "empty field", query: "sort=:desc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts, err := ParseTaskListOptions(httptest.NewRequest("GET", "/api/v1/tasks?"+tt.query, nil))
			if tt.wantErr {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, "sort", appErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, opts.Sort)
			assert.Equal(t, tt.wantReverse, opts.Reverse)
		})
	}
}

func TestParseLimitOffset_Bounds(t *testing.T) {
	t.Parallel()

	limit, offset := ParseLimitOffset(httptest.NewRequest("GET", "/?limit=25&offset=50", nil), 10, 100)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 50, offset)

	limit, offset = ParseLimitOffset(httptest.NewRequest("GET", "/", nil), 10, 100)
	assert.Equal(t, 10, limit)
	assert.Zero(t, offset)

	limit, _ = ParseLimitOffset(httptest.NewRequest("GET", "/?limit=5000", nil), 10, 100)
	assert.Equal(t, 100, limit)

	limit, offset = ParseLimitOffset(httptest.NewRequest("GET", "/?limit=-3&offset=-9", nil), 10, 100)
	assert.Equal(t, 1, limit)
	assert.Zero(t, offset)
}
