package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	for _, status := range TaskStatuses() {
		parsed, err := ParseTaskStatus(string(status))
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	for _, raw := range []string{"", "pending", "in_progress", "Archived"} {
		_, err := ParseTaskStatus(raw)
		assert.ErrorIs(t, err, ErrUnknownTaskStatus, raw)
	}
}

func TestTaskStatus_UnmarshalJSON(t *testing.T) {
	var body struct {
		Status TaskStatus `json:"status"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"status":"In Progress"}`), &body))
	assert.Equal(t, StatusInProgress, body.Status)

	err := json.Unmarshal([]byte(`{"status":"Done"}`), &body)
	assert.ErrorIs(t, err, ErrUnknownTaskStatus)
}

func TestTask_Visibility(t *testing.T) {
	task := Task{OwnerID: "owner", SharedWith: []string{"friend"}}

	assert.True(t, task.IsOwner("owner"))
	assert.True(t, task.CanView("owner"))
	assert.True(t, task.CanView("friend"))
	assert.False(t, task.IsOwner("friend"))
	assert.False(t, task.CanView("stranger"))
}
