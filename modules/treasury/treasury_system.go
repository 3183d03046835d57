package treasury

import (
	"errors"
	"sync"
	"treasury-node/lib/logger"
	"treasury-node/lib/utils"
	"treasury-node/modules/config"
	"treasury-node/modules/db/treasury/governance"
	"treasury-node/modules/db/treasury/members"
	"treasury-node/modules/db/treasury/records"
	"treasury-node/modules/events"
	"treasury-node/modules/treasury/effects"

	"github.com/chebyrash/promise"
	"github.com/go-playground/validator/v10"
)

// Implementation notes:
// The engine owns the authoritative in-memory aggregate and writes every
// mutation through to the collections. The host model is single writer:
// every exported call takes the lock, runs to completion and only then is the
// next call admitted, so reads never observe a record mid mutation.

var configValidator = validator.New(validator.WithRequiredStructEnabled())

type treasurySystem struct {
	mu    sync.Mutex
	state *treasuryState

	actionsDb    records.Actions
	proposalsDb  records.Proposals
	membersDb    members.Members
	governanceDb governance.Governance

	dispatcher effects.Dispatcher
	bus        *events.Bus
	genesis    *config.Config[GenesisConfig]
	log        logger.Logger
}

var _ TreasurySystem = &treasurySystem{}

func New(
	actionsDb records.Actions,
	proposalsDb records.Proposals,
	membersDb members.Members,
	governanceDb governance.Governance,
	dispatcher effects.Dispatcher,
	bus *events.Bus,
	genesis *config.Config[GenesisConfig],
	log logger.Logger,
) TreasurySystem {
	return &treasurySystem{
		state:        newTreasuryState(),
		actionsDb:    actionsDb,
		proposalsDb:  proposalsDb,
		membersDb:    membersDb,
		governanceDb: governanceDb,
		dispatcher:   dispatcher,
		bus:          bus,
		genesis:      genesis,
		log:          log,
	}
}

// Init implements aggregate.Plugin. Loads the persisted aggregate, or seeds
// it from the genesis configuration on first start.
func (ts *treasurySystem) Init() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	govDoc, err := ts.governanceDb.GetConfig()
	if err != nil {
		return err
	}

	if govDoc == nil {
		return ts.seedGenesis()
	}

	return ts.loadState(*govDoc)
}

// Start implements aggregate.Plugin.
func (ts *treasurySystem) Start() *promise.Promise[any] {
	return utils.PromiseResolve[any](nil)
}

// Stop implements aggregate.Plugin.
func (ts *treasurySystem) Stop() error {
	return nil
}

func (ts *treasurySystem) seedGenesis() error {
	genesis := ts.genesis.Get()

	if err := configValidator.Struct(&genesis); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	for _, account := range genesis.Members {
		if err := ts.state.addMember(account); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
	}
	ts.state.conf = QuorumConfig{
		CountThreshold:         genesis.CountThreshold,
		WeightThresholdPercent: genesis.WeightThresholdPercent,
		Mode:                   genesis.Mode,
	}

	for _, account := range ts.state.memberOrder {
		ts.persistMember(account)
	}
	ts.persistGovernance()

	ts.log.Debug("seeded genesis treasury", genesis.Members, genesis.Mode)
	return nil
}

func (ts *treasurySystem) loadState(govDoc governance.GovernanceDoc) error {
	ts.state.conf = QuorumConfig{
		CountThreshold:         govDoc.CountThreshold,
		WeightThresholdPercent: govDoc.WeightThresholdPercent,
		Mode:                   Mode(govDoc.Mode),
	}
	ts.state.totalWeight = govDoc.TotalWeight
	ts.state.balance = govDoc.Balance

	memberDocs, err := ts.membersDb.GetMembers()
	if err != nil {
		return err
	}
	for _, doc := range memberDocs {
		ts.state.contributions[doc.Account] = doc.Contribution
		ts.state.positions[doc.Account] = doc.Position
		if doc.Position >= ts.state.nextPosition {
			ts.state.nextPosition = doc.Position + 1
		}
		if doc.Active {
			ts.state.members[doc.Account] = struct{}{}
			ts.state.memberOrder = append(ts.state.memberOrder, doc.Account)
		}
	}

	actionDocs, err := ts.actionsDb.GetActions()
	if err != nil {
		return err
	}
	for _, doc := range actionDocs {
		record := actionFromDoc(doc)
		ts.state.actions = append(ts.state.actions, &record)
	}

	proposalDocs, err := ts.proposalsDb.GetProposals()
	if err != nil {
		return err
	}
	for _, doc := range proposalDocs {
		record := proposalFromDoc(doc)
		ts.state.proposals = append(ts.state.proposals, &record)
	}

	ts.log.Debug("loaded treasury state", len(memberDocs), len(actionDocs), len(proposalDocs))
	return nil
}

// ===== write through =====

func (ts *treasurySystem) persistMember(account string) {
	_, active := ts.state.members[account]
	ts.membersDb.StoreMember(members.MemberDoc{
		Account:      account,
		Contribution: ts.state.contributions[account],
		Position:     ts.state.positions[account],
		Active:       active,
	})
}

func (ts *treasurySystem) persistGovernance() {
	ts.governanceDb.StoreConfig(governance.GovernanceDoc{
		CountThreshold:         ts.state.conf.CountThreshold,
		WeightThresholdPercent: ts.state.conf.WeightThresholdPercent,
		Mode:                   string(ts.state.conf.Mode),
		TotalWeight:            ts.state.totalWeight,
		Balance:                ts.state.balance,
	})
}

func (ts *treasurySystem) persistAction(record *ActionRecord) {
	ts.actionsDb.StoreAction(actionToDoc(*record))
}

func (ts *treasurySystem) persistProposal(record *ProposalRecord) {
	ts.proposalsDb.StoreProposal(proposalToDoc(*record))
}

// ===== doc conversions =====

func approvalsToDoc(approvals ApprovalState) records.ApprovalDoc {
	approvedBy := make(map[string]uint64, len(approvals.ApprovedBy))
	for voter, weight := range approvals.ApprovedBy {
		approvedBy[voter] = weight
	}
	return records.ApprovalDoc{
		ApprovedBy: approvedBy,
		Count:      approvals.Count,
		Weight:     approvals.Weight,
	}
}

func approvalsFromDoc(doc records.ApprovalDoc) ApprovalState {
	approvals := newApprovalState()
	for voter, weight := range doc.ApprovedBy {
		approvals.ApprovedBy[voter] = weight
	}
	approvals.Count = doc.Count
	approvals.Weight = doc.Weight
	return approvals
}

func actionToDoc(record ActionRecord) records.ActionDoc {
	return records.ActionDoc{
		Index:     record.Index,
		Cid:       record.Cid,
		Submitter: record.Submitter,
		Target:    record.Target,
		Value:     record.Value,
		Data:      record.Data,
		Approvals: approvalsToDoc(record.Approvals),
		Executed:  record.Executed,
	}
}

func actionFromDoc(doc records.ActionDoc) ActionRecord {
	return ActionRecord{
		Index:     doc.Index,
		Cid:       doc.Cid,
		Submitter: doc.Submitter,
		Target:    doc.Target,
		Value:     doc.Value,
		Data:      doc.Data,
		Approvals: approvalsFromDoc(doc.Approvals),
		Executed:  doc.Executed,
	}
}

func proposalToDoc(record ProposalRecord) records.ProposalDoc {
	return records.ProposalDoc{
		Index:                     record.Index,
		Cid:                       record.Cid,
		Submitter:                 record.Submitter,
		Kind:                      string(record.Kind),
		Member:                    record.Member,
		NewCountThreshold:         record.NewCountThreshold,
		NewWeightThresholdPercent: record.NewWeightThresholdPercent,
		NewMode:                   string(record.NewMode),
		Approvals:                 approvalsToDoc(record.Approvals),
		Executed:                  record.Executed,
	}
}

func proposalFromDoc(doc records.ProposalDoc) ProposalRecord {
	return ProposalRecord{
		Index:                     doc.Index,
		Cid:                       doc.Cid,
		Submitter:                 doc.Submitter,
		Kind:                      ProposalKind(doc.Kind),
		Member:                    doc.Member,
		NewCountThreshold:         doc.NewCountThreshold,
		NewWeightThresholdPercent: doc.NewWeightThresholdPercent,
		NewMode:                   Mode(doc.NewMode),
		Approvals:                 approvalsFromDoc(doc.Approvals),
		Executed:                  doc.Executed,
	}
}
