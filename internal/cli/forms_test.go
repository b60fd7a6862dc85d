package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/fieldbridge/internal/app"
	"github.com/alexanderramin/fieldbridge/internal/domain"
	"github.com/alexanderramin/fieldbridge/internal/testutil"
)

func interactiveApp(t *testing.T, actor domain.Actor, run func(*huh.Form) error) *App {
	t.Helper()
	a := testApp(t, testutil.NewTestDB(t), actor)
	a.IsInteractive = func() bool { return true }
	a.RunForm = run
	return a
}

func TestQuoteSubmit_MissingFieldsOpenForm(t *testing.T) {
	var forms int
	a := interactiveApp(t, fieldUser, func(f *huh.Form) error {
		forms++
		require.NotNil(t, f)
		return huh.ErrUserAborted
	})

	out, err := executeCmd(t, a, "quote", "submit", "--urgency", "rush")
	require.NoError(t, err)
	assert.Equal(t, 1, forms)
	assert.Contains(t, out, "Cancelled.")

	quotes, err := a.Quotes.ListMine(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes, "a cancelled form sends nothing")
}

func TestQuoteSubmit_CompleteFlagsSkipForm(t *testing.T) {
	a := interactiveApp(t, fieldUser, func(*huh.Form) error {
		t.Fatal("form must not open when the flags are complete")
		return nil
	})

	out, err := executeCmd(t, a, "quote", "submit", "--title", "Replace RTU", "--description", "Unit 3 leaking")
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted quote request")
}

func TestQuoteSubmit_FormResultStillValidated(t *testing.T) {
	a := interactiveApp(t, fieldUser, func(*huh.Form) error { return nil })

	_, err := executeCmd(t, a, "quote", "submit", "--title", "Replace RTU")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	quotes, err := a.Quotes.ListMine(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestQuoteSubmit_FormErrorIsReturned(t *testing.T) {
	boom := errors.New("tty closed")
	a := interactiveApp(t, fieldUser, func(*huh.Form) error { return boom })

	_, err := executeCmd(t, a, "quote", "submit")
	assert.ErrorIs(t, err, boom)
}

func TestQuoteSubmit_NonInteractiveNeverPrompts(t *testing.T) {
	a := testApp(t, testutil.NewTestDB(t), fieldUser)
	a.IsInteractive = func() bool { return false }
	a.RunForm = func(*huh.Form) error {
		t.Fatal("form must not open without a terminal")
		return nil
	}

	_, err := executeCmd(t, a, "quote", "submit", "--description", "no title")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestProjectDraft_MissingNameOpensForm(t *testing.T) {
	var forms int
	a := interactiveApp(t, fieldUser, func(*huh.Form) error {
		forms++
		return huh.ErrUserAborted
	})

	out, err := executeCmd(t, a, "project", "draft", "--client", "Dana Ortiz")
	require.NoError(t, err)
	assert.Equal(t, 1, forms)
	assert.Contains(t, out, "Cancelled.")

	drafts, err := a.Projects.List(context.Background(), domain.ProjectDraft)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestProjectDraft_RejectsBadValue(t *testing.T) {
	a := testApp(t, testutil.NewTestDB(t), fieldUser)

	_, err := executeCmd(t, a, "project", "draft", "--name", "Elm St", "--value", "NaN")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	out, err := executeCmd(t, a, "project", "draft", "--name", "Elm St", "--value", "42,000")
	require.NoError(t, err)
	assert.Contains(t, out, "Created draft project")
}

func TestIntakeForms_PrefillDefaults(t *testing.T) {
	var req app.SubmitQuoteRequest
	urgency := ""
	require.NotNil(t, quoteIntakeForm(&req, &urgency))
	assert.Equal(t, string(domain.UrgencyStandard), urgency)

	value := ""
	require.NotNil(t, draftProjectForm(&app.CreateDraftRequest{}, &value))
}

func TestValidateOptionalAmount(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"", true},
		{"  ", true},
		{"4200", true},
		{"1,234.50", true},
		{"0", false},
		{"-12", false},
		{"abc", false},
		{"NaN", false},
		{"Inf", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validateOptionalAmount(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRequiredText(t *testing.T) {
	check := requiredText("Title")
	assert.EqualError(t, check(" "), "title is required")
	assert.NoError(t, check("Replace RTU"))
}
