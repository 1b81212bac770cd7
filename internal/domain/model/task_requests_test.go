//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  CreateTaskRequest{Name: "write report", Priority: intPtr(50)},
		},
		{
			name:    "missing name",
			req:     CreateTaskRequest{Name: "  "},
			wantErr: true,
		},
		{
			name:    "non positive priority",
			req:     CreateTaskRequest{Name: "x", Priority: intPtr(-1)},
			wantErr: true,
		},
		{
			name:    "non positive estimate",
			req:     CreateTaskRequest{Name: "x", EstimatedDuration: floatPtr(0)},
			wantErr: true,
		},
		{
			name:    "bad tag",
			req:     CreateTaskRequest{Name: "x", Tags: []string{"ok", "not ok"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateTaskRequest_UnmarshalJSON_TracksPresence(t *testing.T) {
	var req UpdateTaskRequest
	body := `{"name":"renamed","priority":25,"unknown_field":"ignored"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, []string{"name", "priority"}, req.Fields())
	assert.True(t, req.Has(FieldName))
	assert.True(t, req.Has(FieldPriority))
	assert.False(t, req.Has(FieldDeadline))
	require.NotNil(t, req.Name)
	assert.Equal(t, "renamed", *req.Name)
	require.NotNil(t, req.Priority)
	assert.Equal(t, 25, *req.Priority)
}

func TestUpdateTaskRequest_UnmarshalJSON_NullClearsNullableFields(t *testing.T) {
	var req UpdateTaskRequest
	body := `{"priority":null,"deadline":null,"estimated_duration":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.True(t, req.Clears(FieldPriority))
	assert.True(t, req.Clears(FieldDeadline))
	assert.True(t, req.Clears(FieldEstimatedDuration))
	assert.Nil(t, req.Priority)
	assert.Nil(t, req.Deadline)
	assert.True(t, req.TouchesSchedule())
}

func TestUpdateTaskRequest_UnmarshalJSON_RejectsNullForRequiredFields(t *testing.T) {
	var req UpdateTaskRequest
	assert.Error(t, json.Unmarshal([]byte(`{"name":null}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"status":null}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"is_fixed":null}`), &req))
}

func TestUpdateTaskRequest_UnmarshalJSON_ParsesStatus(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed"}`), &req))
	require.NotNil(t, req.Status)
	assert.Equal(t, TaskStatusCompleted, *req.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"done"}`), &req))
}

func TestUpdateTaskRequest_UnmarshalJSON_EmptyListsClear(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"tags":[],"depends_on":[]}`), &req))

	assert.True(t, req.Has(FieldTags))
	assert.NotNil(t, req.Tags)
	assert.Empty(t, req.Tags)
	assert.NotNil(t, req.DependsOn)
	assert.Empty(t, req.DependsOn)
}

func TestUpdateTaskRequest_Validate(t *testing.T) {
	var empty UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Error(t, empty.Validate())

	var blank UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"  "}`), &blank))
	assert.Error(t, blank.Validate())

	var ok UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"fine"}`), &ok))
	assert.NoError(t, ok.Validate())
}
