package treasury

// Shared approve/revoke mechanic used by both registries. Callers hold the
// system lock.

func (ts *treasurySystem) approve(approvals *ApprovalState, executed bool, voter string) error {
	if !ts.state.isMember(voter) {
		return ErrNotMember
	}
	if executed {
		return ErrAlreadyExecuted
	}
	if _, ok := approvals.ApprovedBy[voter]; ok {
		return ErrAlreadyApproved
	}

	// Weight is captured at approval time. The sum of captured weights over
	// distinct voters never exceeds the total weight, so this cannot
	// overflow.
	weight := ts.state.contributions[voter]
	approvals.ApprovedBy[voter] = weight
	approvals.Count += 1
	approvals.Weight += weight

	return nil
}

func (ts *treasurySystem) revoke(approvals *ApprovalState, executed bool, voter string) error {
	if executed {
		return ErrAlreadyExecuted
	}
	weight, ok := approvals.ApprovedBy[voter]
	if !ok {
		return ErrNotApproved
	}

	// Refund the weight captured at approval time, not the voter's current
	// contribution, so a deposit between approve and revoke cannot skew the
	// tally.
	delete(approvals.ApprovedBy, voter)
	approvals.Count -= 1
	approvals.Weight -= weight

	return nil
}

func newApprovalState() ApprovalState {
	return ApprovalState{
		ApprovedBy: make(map[string]uint64),
	}
}
