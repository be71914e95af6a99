package issuebook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/command/issuebook"
)

func Test_Decide_Success_WhenCopyAvailable(t *testing.T) {
	// arrange
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	command := issuebook.BuildCommand("I1", "S1", "B1", now)
	state := issuebook.State{BookInCatalog: true, AvailableCopies: 1, Policy: core.DefaultPolicy()}

	// act
	result := issuebook.Decide(state, command)

	// assert
	require.NoError(t, result.HasError())

	event, ok := result.Event.(core.BookIssued)
	require.True(t, ok)
	assert.Equal(t, "I1", event.IssueID)
	assert.Equal(t, "S1", event.StudentID)
	assert.Equal(t, "B1", event.BookID)
	assert.Equal(t, now, event.OccurredAt)
	assert.Equal(t, now.Add(14*24*time.Hour), event.DueDate)
	assert.Empty(t, event.FulfilledReservationID)
}

func Test_Decide_Success_FulfillsStudentsActiveReservation(t *testing.T) {
	// arrange
	command := issuebook.BuildCommand("I1", "S1", "B1", time.Now())
	state := issuebook.State{
		BookInCatalog:       true,
		AvailableCopies:     1,
		ActiveReservationID: "R1",
		Policy:              core.DefaultPolicy(),
	}

	// act
	result := issuebook.Decide(state, command)

	// assert
	require.NoError(t, result.HasError())
	assert.Equal(t, "R1", result.Event.(core.BookIssued).FulfilledReservationID)
}

func Test_Decide_Error(t *testing.T) {
	testCases := []struct {
		name    string
		state   issuebook.State
		wantErr error
	}{
		{
			name:    "book not in catalog",
			state:   issuebook.State{BookInCatalog: false, AvailableCopies: 1},
			wantErr: core.ErrNotFound,
		},
		{
			name:    "no copies available",
			state:   issuebook.State{BookInCatalog: true, AvailableCopies: 0},
			wantErr: core.ErrUnavailable,
		},
		{
			name:    "student already holds the book",
			state:   issuebook.State{BookInCatalog: true, AvailableCopies: 1, StudentHoldsOpenIssue: true},
			wantErr: core.ErrDuplicateIssue,
		},
		{
			name:    "duplicate rule is checked before availability",
			state:   issuebook.State{BookInCatalog: true, AvailableCopies: 0, StudentHoldsOpenIssue: true},
			wantErr: core.ErrDuplicateIssue,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := issuebook.Decide(tc.state, issuebook.BuildCommand("I1", "S1", "B1", time.Now()))

			assert.Nil(t, result.Event)
			assert.ErrorIs(t, result.HasError(), tc.wantErr)
			assert.True(t, core.IsRefusal(result.HasError()))
		})
	}
}
