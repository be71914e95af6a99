package addbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/features/command/addbook"
)

func Test_Decide_Success(t *testing.T) {
	// arrange
	now := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	command := addbook.BuildCommand(" CS101 ", "Introduction to Algorithms ", "Cormen", "978-0262046305", "Computer Science", 4, now)

	// act
	result := addbook.Decide(addbook.State{}, command)

	// assert
	require.NoError(t, result.HasError())
	event, ok := result.Event.(core.BookAddedToCatalog)
	require.True(t, ok)
	assert.Equal(t, "CS101", event.BookID)
	assert.Equal(t, "Introduction to Algorithms", event.Title)
	assert.Equal(t, 4, event.Copies)
	assert.Equal(t, now, event.OccurredAt)
}

func Test_Decide_Error(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name    string
		state   addbook.State
		command addbook.Command
		wantErr error
	}{
		{
			name:    "blank id",
			command: addbook.BuildCommand("  ", "Title", "", "", "", 1, now),
			wantErr: core.ErrInvalidBook,
		},
		{
			name:    "blank title",
			command: addbook.BuildCommand("B1", "", "", "", "", 1, now),
			wantErr: core.ErrInvalidBook,
		},
		{
			name:    "no copies",
			command: addbook.BuildCommand("B1", "Title", "", "", "", 0, now),
			wantErr: core.ErrInvalidBook,
		},
		{
			name:    "duplicate id",
			state:   addbook.State{BookInCatalog: true},
			command: addbook.BuildCommand("B1", "Title", "", "", "", 1, now),
			wantErr: core.ErrDuplicateBook,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := addbook.Decide(tc.state, tc.command)

			assert.Nil(t, result.Event)
			assert.ErrorIs(t, result.HasError(), tc.wantErr)
		})
	}
}
