package treasury

import (
	"errors"
	"fmt"
	"treasury-node/modules/common"
	"treasury-node/modules/events"
)

func (ts *treasurySystem) SubmitProposal(submitter string, params ProposalParams) (uint64, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.state.isMember(submitter) {
		return 0, ErrUnauthorized
	}

	// Threshold bounds are not validated here; genesis seeding is the only
	// place bounds are enforced.
	index := uint64(len(ts.state.proposals))
	record := &ProposalRecord{
		Index:                     index,
		Submitter:                 submitter,
		Kind:                      params.Kind,
		Member:                    params.Member.TakeOr(""),
		NewCountThreshold:         params.NewCountThreshold.TakeOr(0),
		NewWeightThresholdPercent: params.NewWeightThresholdPercent.TakeOr(0),
		NewMode:                   params.NewMode.TakeOr(""),
		Approvals:                 newApprovalState(),
	}

	recordCid, err := common.RecordCid(map[string]interface{}{
		"index":                        index,
		"submitter":                    submitter,
		"kind":                         record.Kind,
		"member":                       record.Member,
		"new_count_threshold":          record.NewCountThreshold,
		"new_weight_threshold_percent": record.NewWeightThresholdPercent,
		"new_mode":                     record.NewMode,
	})
	if err != nil {
		return 0, err
	}
	record.Cid = recordCid.String()

	ts.state.proposals = append(ts.state.proposals, record)
	ts.persistProposal(record)

	ts.bus.Publish(events.Event{
		Kind:    events.KindProposalSubmitted,
		Account: submitter,
		Index:   index,
		Cid:     record.Cid,
	})
	return index, nil
}

func (ts *treasurySystem) ApproveProposal(id uint64, voter string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	record, err := ts.findProposal(id)
	if err != nil {
		return err
	}
	if err := ts.approve(&record.Approvals, record.Executed, voter); err != nil {
		return err
	}
	ts.persistProposal(record)

	ts.bus.Publish(events.Event{
		Kind:    events.KindProposalApproved,
		Account: voter,
		Index:   id,
		Cid:     record.Cid,
	})
	return nil
}

func (ts *treasurySystem) RevokeProposalApproval(id uint64, voter string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	record, err := ts.findProposal(id)
	if err != nil {
		return err
	}
	if err := ts.revoke(&record.Approvals, record.Executed, voter); err != nil {
		return err
	}
	ts.persistProposal(record)

	ts.bus.Publish(events.Event{
		Kind:    events.KindProposalRevoked,
		Account: voter,
		Index:   id,
		Cid:     record.Cid,
	})
	return nil
}

// ExecuteProposal applies the self modification the proposal carries. The
// executed flag and the registry mutation stand or fall together; a failed
// mutation (duplicate add, removing an absent member) leaves the proposal
// unexecuted.
func (ts *treasurySystem) ExecuteProposal(id uint64, caller string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.state.isMember(caller) {
		return ErrUnauthorized
	}
	record, err := ts.findProposal(id)
	if err != nil {
		return err
	}
	if record.Executed {
		return ErrAlreadyExecuted
	}
	if !QuorumPasses(record.Approvals, ts.state.totalWeight, ts.state.conf) {
		return ErrQuorumNotMet
	}

	record.Executed = true

	switch record.Kind {
	case KindAddMember:
		if err := ts.state.addMember(record.Member); err != nil {
			record.Executed = false
			return err
		}
		ts.persistMember(record.Member)
	case KindRemoveMember:
		// Removal does not retroactively touch the member's contributions or
		// approvals already tallied into executed records.
		if err := ts.state.removeMember(record.Member); err != nil {
			record.Executed = false
			return err
		}
		ts.persistMember(record.Member)
	case KindChangeParameters:
		// Unconditional overwrite, no revalidation of bounds.
		ts.state.conf = QuorumConfig{
			CountThreshold:         record.NewCountThreshold,
			WeightThresholdPercent: record.NewWeightThresholdPercent,
			Mode:                   record.NewMode,
		}
		ts.persistGovernance()
	default:
		record.Executed = false
		return errors.Join(ErrEffectDispatchFailed, fmt.Errorf("unknown proposal kind %q", record.Kind))
	}

	ts.persistProposal(record)

	ts.bus.Publish(events.Event{
		Kind:    events.KindProposalExecuted,
		Account: caller,
		Index:   id,
		Cid:     record.Cid,
	})
	return nil
}

func (ts *treasurySystem) findProposal(id uint64) (*ProposalRecord, error) {
	if id >= uint64(len(ts.state.proposals)) {
		return nil, ErrNotFound
	}
	return ts.state.proposals[id], nil
}
