package treasury

import (
	a "treasury-node/modules/aggregate"

	"github.com/moznion/go-optional"
)

type Mode string

const (
	ModeCount  Mode = "count"
	ModeWeight Mode = "weight"
)

// QuorumConfig is mutable only through an executed change-parameters
// proposal. Bounds are validated at construction time only; a proposal can
// drive the thresholds outside these ranges post genesis.
type QuorumConfig struct {
	CountThreshold         uint64 `json:"count_threshold"`
	WeightThresholdPercent uint64 `json:"weight_threshold_percent" validate:"lte=100"`
	Mode                   Mode   `json:"mode" validate:"oneof=count weight"`
}

// ApprovalState tracks which members approved a record. ApprovedBy maps each
// voter to the weight captured for them when they approved; later deposits do
// not retroactively change it, and revocation refunds exactly that amount.
type ApprovalState struct {
	ApprovedBy map[string]uint64 `json:"approved_by"`
	Count      uint64            `json:"count"`
	Weight     uint64            `json:"weight"`
}

type ActionRecord struct {
	Index     uint64        `json:"index"`
	Cid       string        `json:"cid"`
	Submitter string        `json:"submitter"`
	Target    string        `json:"target"`
	Value     uint64        `json:"value"`
	Data      []byte        `json:"data"`
	Approvals ApprovalState `json:"approvals"`
	Executed  bool          `json:"executed"`
}

type ProposalKind string

const (
	KindAddMember        ProposalKind = "add-member"
	KindRemoveMember     ProposalKind = "remove-member"
	KindChangeParameters ProposalKind = "change-parameters"
)

type ProposalRecord struct {
	Index     uint64       `json:"index"`
	Cid       string       `json:"cid"`
	Submitter string       `json:"submitter"`
	Kind      ProposalKind `json:"kind"`

	Member                    string `json:"member,omitempty"`
	NewCountThreshold         uint64 `json:"new_count_threshold,omitempty"`
	NewWeightThresholdPercent uint64 `json:"new_weight_threshold_percent,omitempty"`
	NewMode                   Mode   `json:"new_mode,omitempty"`

	Approvals ApprovalState `json:"approvals"`
	Executed  bool          `json:"executed"`
}

// ProposalParams carries the kind specific payload of a submission. Absent
// options default to zero values; submission does not validate threshold
// bounds, only execution of the resulting proposal gives them meaning.
type ProposalParams struct {
	Kind                      ProposalKind
	Member                    optional.Option[string]
	NewCountThreshold         optional.Option[uint64]
	NewWeightThresholdPercent optional.Option[uint64]
	NewMode                   optional.Option[Mode]
}

// GenesisConfig seeds the treasury on first start. Ignored once a governance
// record exists in storage.
type GenesisConfig struct {
	Members                []string `json:"members" validate:"required,min=1,unique"`
	CountThreshold         uint64   `json:"count_threshold"`
	WeightThresholdPercent uint64   `json:"weight_threshold_percent" validate:"lte=100"`
	Mode                   Mode     `json:"mode" validate:"oneof=count weight"`
}

type TreasurySystem interface {
	a.Plugin

	Deposit(from string, amount uint64) error

	SubmitAction(submitter string, target string, value uint64, data []byte) (uint64, error)
	ApproveAction(id uint64, voter string) error
	RevokeActionApproval(id uint64, voter string) error
	ExecuteAction(id uint64, caller string) error

	SubmitProposal(submitter string, params ProposalParams) (uint64, error)
	ApproveProposal(id uint64, voter string) error
	RevokeProposalApproval(id uint64, voter string) error
	ExecuteProposal(id uint64, caller string) error

	GetMembers() []string
	IsMember(account string) bool
	GetAction(id uint64) (ActionRecord, error)
	GetActionCount() uint64
	GetProposal(id uint64) (ProposalRecord, error)
	GetProposalCount() uint64
	GetBalance() uint64
	ContributionOf(account string) uint64
	TotalWeight() uint64
	Quorum() QuorumConfig
	PendingActions() []ActionRecord
	PendingProposals() []ProposalRecord
}
