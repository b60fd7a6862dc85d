package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/testutil"
)

func TestTaskService_ActionsReportUseCases(t *testing.T) {
	local, _ := setupBackend(t)
	ctx := context.Background()
	p, err := local.CreateProject(ctx, testutil.NewTestProject("Site"), "")
	require.NoError(t, err)

	obs := &recordingUseCaseObserver{}
	pm := NewTaskService(local, pmUser, obs)
	field := NewTaskService(local, fieldUser, obs)

	task, err := pm.Create(ctx, &domain.Task{ProjectID: p.ID, Title: "Verify anchor bolts", AssigneeID: fieldUser.UserID})
	require.NoError(t, err)

	_, err = pm.Acknowledge(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	acked, err := field.Acknowledge(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskAcknowledged, acked.Status)

	require.Len(t, obs.events, 3)
	assert.Equal(t, "task.create", obs.events[0].Name)
	assert.Equal(t, task.ID, obs.events[0].Fields["task_id"])

	assert.Equal(t, "task.acknowledge", obs.events[1].Name)
	assert.False(t, obs.events[1].Success)
	assert.ErrorIs(t, obs.events[1].Err, domain.ErrForbidden)

	assert.Equal(t, "task.acknowledge", obs.events[2].Name)
	assert.True(t, obs.events[2].Success)
	assert.Equal(t, fieldUser.UserID, obs.events[2].Fields["user_id"])
}
