package httpx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/domain/model"
)

func sampleSink(id, name string) *model.WebhookSink {
	return &model.WebhookSink{
		ID:        id,
		Name:      name,
		URL:       "https://hooks.example.com/taskdog",
		Enabled:   true,
		CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestWebhookSinkHandlers_Create(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.sinks.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateWebhookSinkRequest) (*model.WebhookSink, error) {
			sink := sampleSink("ws-1", req.Name)
			sink.URL = req.URL
			return sink, nil
		})

	rec := f.do(t, http.MethodPost, "/api/v1/webhook-sinks", map[string]any{
		"name": "slack",
		"url":  "https://hooks.example.com/taskdog",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var sink model.WebhookSink
	decodeBody(t, rec, &sink)
	assert.Equal(t, "ws-1", sink.ID)
	assert.Equal(t, "slack", sink.Name)
}

func TestWebhookSinkHandlers_Create_BadFilterIsUnprocessable(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/webhook-sinks", map[string]any{
		"name":         "slack",
		"url":          "https://hooks.example.com/taskdog",
		"event_filter": "][", // unparseable expression
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "validation", body.Error)
}

func TestWebhookSinkHandlers_List(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.sinks.EXPECT().List(gomock.Any(), defaultWebhookSinkListLimit, 0).Return(
		[]*model.WebhookSink{sampleSink("ws-1", "slack"), sampleSink("ws-2", "pager")}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/webhook-sinks", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sinks  []*model.WebhookSink `json:"webhook_sinks"`
		Limit  int                  `json:"limit"`
		Offset int                  `json:"offset"`
	}
	decodeBody(t, rec, &body)
	assert.Len(t, body.Sinks, 2)
	assert.Equal(t, defaultWebhookSinkListLimit, body.Limit)
}

func TestWebhookSinkHandlers_GetByID(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.sinks.EXPECT().GetByID(gomock.Any(), "ws-1").Return(sampleSink("ws-1", "slack"), nil)

	rec := f.do(t, http.MethodGet, "/api/v1/webhook-sinks/ws-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var sink model.WebhookSink
	decodeBody(t, rec, &sink)
	assert.Equal(t, "slack", sink.Name)
}

func TestWebhookSinkHandlers_GetByID_MissingIs404(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.sinks.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, data.ErrSinkNotFound)

	rec := f.do(t, http.MethodGet, "/api/v1/webhook-sinks/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookSinkHandlers_Update(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.sinks.EXPECT().Update(gomock.Any(), "ws-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, id string, req *model.UpdateWebhookSinkRequest) (*model.WebhookSink, error) {
			require.NotNil(t, req.Enabled)
			sink := sampleSink(id, "slack")
			sink.Enabled = *req.Enabled
			return sink, nil
		})

	rec := f.do(t, http.MethodPatch, "/api/v1/webhook-sinks/ws-1", map[string]any{
		"enabled": false,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var sink model.WebhookSink
	decodeBody(t, rec, &sink)
	assert.False(t, sink.Enabled)
}

func TestWebhookSinkHandlers_Delete(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.sinks.EXPECT().Delete(gomock.Any(), "ws-1").Return(true, nil)

	rec := f.do(t, http.MethodDelete, "/api/v1/webhook-sinks/ws-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	decodeBody(t, rec, &body)
	assert.True(t, body["deleted"])
}

func TestWebhookSinkHandlers_Delete_MissingIs404(t *testing.T) {
	t.Parallel()
	f := newRouterFixture(t)

	f.sinks.EXPECT().Delete(gomock.Any(), "nope").Return(false, nil)

	rec := f.do(t, http.MethodDelete, "/api/v1/webhook-sinks/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
