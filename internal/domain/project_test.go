package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectNumber(t *testing.T) {
	on := time.Date(2026, 1, 18, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "Q12-20260118", ProjectNumber(12, on))
	assert.Equal(t, "Q1-20260118", ProjectNumber(1, on))
}

func TestPrepareDraft(t *testing.T) {
	now := time.Now().UTC()

	p := &Project{Name: "  "}
	assert.True(t, IsValidation(p.PrepareDraft(now)))

	p = &Project{Name: " Warehouse TI ", Status: ProjectActive}
	require.NoError(t, p.PrepareDraft(now))
	assert.Equal(t, "Warehouse TI", p.Name)
	assert.Equal(t, ProjectDraft, p.Status)
	assert.True(t, p.IsDraft())
}

func TestPublish(t *testing.T) {
	now := time.Now().UTC()

	p := &Project{ID: "p-1", Name: "x", Status: ProjectDraft}
	require.NoError(t, p.Publish(ProjectActive, now))
	assert.Equal(t, ProjectActive, p.Status)

	// planning -> active is a valid edge but not a publish.
	p = &Project{ID: "p-2", Name: "x", Status: ProjectPlanning}
	assert.True(t, IsInvalidTransition(p.Publish(ProjectActive, now)))

	p = &Project{ID: "p-3", Name: "x", Status: ProjectDraft}
	assert.True(t, IsInvalidTransition(p.Publish(ProjectClosed, now)))
	assert.Equal(t, ProjectDraft, p.Status)
}

func TestNewProjectFromQuote(t *testing.T) {
	now := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	lat := 30.27
	q := &QuoteRequest{
		ID: "q-9", Title: "Chiller swap", Description: "Two units", Address: "1 Main St",
		City: "Austin", State: "TX", Latitude: &lat, CustomerName: "Acme",
		Status: QuoteQuoted, QuotedAmount: Float64Ptr(18500),
	}

	p, err := NewProjectFromQuote(q, "p-1", ProjectNumber(9, now), now)
	require.NoError(t, err)
	assert.Equal(t, ProjectPlanning, p.Status)
	assert.Equal(t, "Q9-20260202", p.Number)
	assert.Equal(t, "Chiller swap", p.Name)
	assert.Equal(t, "Acme", p.ClientName)
	assert.Equal(t, "q-9", p.SourceQuoteID)
	require.NotNil(t, p.ContractValue)
	assert.Equal(t, 18500.0, *p.ContractValue)

	*q.QuotedAmount = 1
	assert.Equal(t, 18500.0, *p.ContractValue, "contract value is a copy")

	q.Status = QuoteInReview
	_, err = NewProjectFromQuote(q, "p-2", "Q10-20260202", now)
	assert.True(t, IsInvalidTransition(err))
}

func TestProjectTransitions(t *testing.T) {
	assert.True(t, CanTransitionProject(ProjectDraft, ProjectPlanning))
	assert.True(t, CanTransitionProject(ProjectOnHold, ProjectActive))
	assert.True(t, CanTransitionProject(ProjectCompleted, ProjectClosed))
	assert.False(t, CanTransitionProject(ProjectClosed, ProjectActive))
	assert.False(t, CanTransitionProject(ProjectPlanning, ProjectDraft))
}
