package renewbook

import (
	"github.com/campusops/library-circulation/circulation/core"
)

const (
	failureReasonIssueNotFound   = "Issue not found"
	failureReasonAlreadyReturned = "Book already returned"
	failureReasonLimitReached    = "Maximum renewal limit reached"
	failureReasonOverdue         = "Cannot renew overdue book"
)

// State holds the issue being renewed, if the ledger knows it.
type State struct {
	IssueKnown bool
	Issue      core.Issue
	Policy     core.Policy
}

// Decide determines whether the loan may be extended.
//
// The renewal limit is checked before the due date, so a loan at the limit is refused with
// ErrRenewalLimitReached even when it is also overdue. The new due date is counted from the
// old one, not from now.
func Decide(s State, command Command) core.DecisionResult {
	if !s.IssueKnown {
		return core.ErrorDecision(core.Refuse(core.ErrNotFound, failureReasonIssueNotFound))
	}

	if !s.Issue.Status.IsOpen() {
		return core.ErrorDecision(core.Refuse(core.ErrAlreadyReturned, failureReasonAlreadyReturned))
	}

	if s.Issue.RenewalCount >= s.Policy.MaxRenewals {
		return core.ErrorDecision(core.Refuse(core.ErrRenewalLimitReached, failureReasonLimitReached))
	}

	if s.Issue.DueDate.Before(command.OccurredAt) {
		return core.ErrorDecision(core.Refuse(core.ErrOverdue, failureReasonOverdue))
	}

	return core.SuccessDecision(
		core.BuildLoanRenewed(
			s.Issue,
			s.Issue.DueDate.Add(s.Policy.LoanPeriod),
			s.Issue.RenewalCount+1,
			command.OccurredAt))
}
