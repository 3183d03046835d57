package records

// ApprovalDoc mirrors the per-record approval state. ApprovedBy maps each
// voter to the weight captured for them at approval time; revocation refunds
// exactly that amount.
type ApprovalDoc struct {
	ApprovedBy map[string]uint64 `bson:"approved_by" json:"approved_by"`
	Count      uint64            `bson:"count" json:"count"`
	Weight     uint64            `bson:"weight" json:"weight"`
}

type ActionDoc struct {
	Index     uint64      `bson:"index" json:"index"`
	Cid       string      `bson:"cid" json:"cid"`
	Submitter string      `bson:"submitter" json:"submitter"`
	Target    string      `bson:"target" json:"target"`
	Value     uint64      `bson:"value" json:"value"`
	Data      []byte      `bson:"data" json:"data"`
	Approvals ApprovalDoc `bson:"approvals" json:"approvals"`
	Executed  bool        `bson:"executed" json:"executed"`
}

type ProposalDoc struct {
	Index     uint64 `bson:"index" json:"index"`
	Cid       string `bson:"cid" json:"cid"`
	Submitter string `bson:"submitter" json:"submitter"`
	Kind      string `bson:"kind" json:"kind"`

	// Kind specific payload fields. Member is set for add-member and
	// remove-member, the rest only for change-parameters.
	Member                    string `bson:"member,omitempty" json:"member,omitempty"`
	NewCountThreshold         uint64 `bson:"new_count_threshold,omitempty" json:"new_count_threshold,omitempty"`
	NewWeightThresholdPercent uint64 `bson:"new_weight_threshold_percent,omitempty" json:"new_weight_threshold_percent,omitempty"`
	NewMode                   string `bson:"new_mode,omitempty" json:"new_mode,omitempty"`

	Approvals ApprovalDoc `bson:"approvals" json:"approvals"`
	Executed  bool        `bson:"executed" json:"executed"`
}
