package shell_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/library-circulation/circulation/core"
	"github.com/campusops/library-circulation/circulation/shell"
	"github.com/campusops/library-circulation/journal"
)

func Test_StorableEventFrom_And_DomainEventFrom(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	issue := core.Issue{ID: "I1", StudentID: "S1", BookID: "B1", DueDate: now.Add(core.DefaultLoanPeriod)}
	reservation := core.Reservation{ID: "R1", StudentID: "S2", BookID: "B1"}

	testCases := []struct {
		name  string
		event core.DomainEvent
	}{
		{
			name: "BookAddedToCatalog",
			event: core.BuildBookAddedToCatalog(
				core.Book{ID: "B1", Title: "Calculus", Author: "Stewart", ISBN: "978-1", Subject: "Mathematics", TotalCopies: 3},
				now,
			),
		},
		{name: "BookIssued", event: core.BuildBookIssued("I1", "S1", "B1", issue.DueDate, "R9", now)},
		{name: "BookIssued without reservation", event: core.BuildBookIssued("I1", "S1", "B1", issue.DueDate, "", now)},
		{name: "BookReturned", event: core.BuildBookReturned(issue, 10, now)},
		{name: "LoanRenewed", event: core.BuildLoanRenewed(issue, issue.DueDate.Add(core.DefaultLoanPeriod), 1, now)},
		{name: "BookReserved", event: core.BuildBookReserved("R1", "S2", "B1", 2, now.Add(core.DefaultReservationHoldPeriod), now)},
		{name: "ReservationCancelled", event: core.BuildReservationCancelled(reservation, now)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			metadata := shell.BuildEventMetadata("test", uuid.New(), uuid.New())

			// act
			storable, err := shell.StorableEventFrom(tc.event, metadata)
			require.NoError(t, err)

			mapped, err := shell.DomainEventFrom(storable)
			require.NoError(t, err)

			mappedMetadata, err := shell.EventMetadataFrom(storable)
			require.NoError(t, err)

			// assert
			assert.Equal(t, tc.event.EventType(), storable.EventType)
			assert.Equal(t, tc.event, mapped)
			assert.Equal(t, metadata, mappedMetadata)
		})
	}
}

func Test_StorableEventFrom_PayloadCarriesFilterKeys(t *testing.T) {
	event := core.BuildBookIssued("I1", "S1", "B1", time.Now(), "", time.Now())

	storable, err := shell.StorableEventFrom(event, shell.EventMetadata{Operation: "issueBook"})
	require.NoError(t, err)

	assert.Contains(t, string(storable.PayloadJSON), `"BookID":"B1"`)
	assert.Contains(t, string(storable.PayloadJSON), `"StudentID":"S1"`)
	assert.NotContains(t, string(storable.PayloadJSON), "FulfilledReservationID")
	assert.Contains(t, string(storable.MetadataJSON), `"Operation":"issueBook"`)
	assert.NotContains(t, string(storable.MetadataJSON), "BookID", "payload and metadata stay apart")
}

func Test_DomainEventFrom_UnknownEventType(t *testing.T) {
	storable, err := journal.BuildStorableEventWithEmptyMetadata("BookBurned", time.Now(), []byte(`{}`))
	require.NoError(t, err)

	_, err = shell.DomainEventFrom(storable)

	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventFailed)
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)
}

func Test_DomainEventsFrom_KeepsOrder(t *testing.T) {
	now := time.Now()
	first, err := shell.StorableEventFrom(core.BuildBookIssued("I1", "S1", "B1", now, "", now), shell.EventMetadata{})
	require.NoError(t, err)
	second, err := shell.StorableEventFrom(core.BuildBookIssued("I2", "S2", "B1", now, "", now), shell.EventMetadata{})
	require.NoError(t, err)

	events, err := shell.DomainEventsFrom(journal.StorableEvents{first, second})

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "I1", events[0].(core.BookIssued).IssueID)
	assert.Equal(t, "I2", events[1].(core.BookIssued).IssueID)
}
