package treasury

import (
	"bytes"

	"golang.org/x/exp/maps"
)

// Queries return snapshot copies; callers cannot mutate engine state through
// them.

func (ts *treasurySystem) GetMembers() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	members := make([]string, len(ts.state.memberOrder))
	copy(members, ts.state.memberOrder)
	return members
}

func (ts *treasurySystem) IsMember(account string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return ts.state.isMember(account)
}

func (ts *treasurySystem) GetAction(id uint64) (ActionRecord, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	record, err := ts.findAction(id)
	if err != nil {
		return ActionRecord{}, err
	}
	return copyAction(record), nil
}

func (ts *treasurySystem) GetActionCount() uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return uint64(len(ts.state.actions))
}

func (ts *treasurySystem) GetProposal(id uint64) (ProposalRecord, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	record, err := ts.findProposal(id)
	if err != nil {
		return ProposalRecord{}, err
	}
	return copyProposal(record), nil
}

func (ts *treasurySystem) GetProposalCount() uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return uint64(len(ts.state.proposals))
}

func (ts *treasurySystem) GetBalance() uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return ts.state.balance
}

func (ts *treasurySystem) ContributionOf(account string) uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return ts.state.contributions[account]
}

func (ts *treasurySystem) TotalWeight() uint64 {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return ts.state.totalWeight
}

func (ts *treasurySystem) Quorum() QuorumConfig {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	return ts.state.conf
}

func (ts *treasurySystem) PendingActions() []ActionRecord {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	pending := make([]ActionRecord, 0)
	for _, record := range ts.state.actions {
		if !record.Executed {
			pending = append(pending, copyAction(record))
		}
	}
	return pending
}

func (ts *treasurySystem) PendingProposals() []ProposalRecord {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	pending := make([]ProposalRecord, 0)
	for _, record := range ts.state.proposals {
		if !record.Executed {
			pending = append(pending, copyProposal(record))
		}
	}
	return pending
}

func copyApprovals(approvals ApprovalState) ApprovalState {
	return ApprovalState{
		ApprovedBy: maps.Clone(approvals.ApprovedBy),
		Count:      approvals.Count,
		Weight:     approvals.Weight,
	}
}

func copyAction(record *ActionRecord) ActionRecord {
	copied := *record
	copied.Data = bytes.Clone(record.Data)
	copied.Approvals = copyApprovals(record.Approvals)
	return copied
}

func copyProposal(record *ProposalRecord) ProposalRecord {
	copied := *record
	copied.Approvals = copyApprovals(record.Approvals)
	return copied
}
