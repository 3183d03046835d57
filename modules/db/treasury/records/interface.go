package records

import (
	a "treasury-node/modules/aggregate"
)

type Actions interface {
	a.Plugin
	StoreAction(doc ActionDoc)
	GetActions() ([]ActionDoc, error)
}

type Proposals interface {
	a.Plugin
	StoreProposal(doc ProposalDoc)
	GetProposals() ([]ProposalDoc, error)
}
