package returnbook

import (
	"github.com/campusops/library-circulation/circulation/core"
)

const (
	failureReasonIssueNotFound   = "Issue not found"
	failureReasonAlreadyReturned = "Book already returned"
)

// State holds the issue being returned, if the ledger knows it.
type State struct {
	IssueKnown bool
	Issue      core.Issue
	Policy     core.Policy
}

// Decide determines whether the issue can be closed and computes the final fine.
//
// Business Rules:
//
//	GIVEN: An issue with IssueID
//	WHEN: ReturnBook command is received
//	THEN: BookReturned event is generated with fine = whole days past due * fine per day
//	ERROR: ErrNotFound if the issue is unknown
//	ERROR: ErrAlreadyReturned if the issue is already closed
func Decide(s State, command Command) core.DecisionResult {
	if !s.IssueKnown {
		return core.ErrorDecision(core.Refuse(core.ErrNotFound, failureReasonIssueNotFound))
	}

	if !s.Issue.Status.IsOpen() {
		return core.ErrorDecision(core.Refuse(core.ErrAlreadyReturned, failureReasonAlreadyReturned))
	}

	fine := s.Policy.FineFor(s.Issue.DueDate, command.OccurredAt)

	return core.SuccessDecision(core.BuildBookReturned(s.Issue, fine, command.OccurredAt))
}
