package test_utils

import (
	"fmt"
	"sort"
	"treasury-node/modules/aggregate"
	"treasury-node/modules/db/treasury/governance"
	"treasury-node/modules/db/treasury/members"
	"treasury-node/modules/db/treasury/records"
	"treasury-node/modules/treasury/effects"

	result "github.com/JustinKnueppel/go-result"
)

// In-memory stand-ins for the treasury collections, for engine tests that
// should not need a running mongo.

type MockActions struct {
	aggregate.Plugin

	Docs map[uint64]records.ActionDoc
}

func NewMockActions() *MockActions {
	return &MockActions{Docs: make(map[uint64]records.ActionDoc)}
}

func (m *MockActions) StoreAction(doc records.ActionDoc) {
	m.Docs[doc.Index] = doc
}

func (m *MockActions) GetActions() ([]records.ActionDoc, error) {
	out := make([]records.ActionDoc, 0, len(m.Docs))
	for _, doc := range m.Docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

type MockProposals struct {
	aggregate.Plugin

	Docs map[uint64]records.ProposalDoc
}

func NewMockProposals() *MockProposals {
	return &MockProposals{Docs: make(map[uint64]records.ProposalDoc)}
}

func (m *MockProposals) StoreProposal(doc records.ProposalDoc) {
	m.Docs[doc.Index] = doc
}

func (m *MockProposals) GetProposals() ([]records.ProposalDoc, error) {
	out := make([]records.ProposalDoc, 0, len(m.Docs))
	for _, doc := range m.Docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

type MockMembers struct {
	aggregate.Plugin

	Docs map[string]members.MemberDoc
}

func NewMockMembers() *MockMembers {
	return &MockMembers{Docs: make(map[string]members.MemberDoc)}
}

func (m *MockMembers) StoreMember(doc members.MemberDoc) {
	m.Docs[doc.Account] = doc
}

func (m *MockMembers) GetMembers() ([]members.MemberDoc, error) {
	out := make([]members.MemberDoc, 0, len(m.Docs))
	for _, doc := range m.Docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

type MockGovernance struct {
	aggregate.Plugin

	Doc *governance.GovernanceDoc
}

func NewMockGovernance() *MockGovernance {
	return &MockGovernance{}
}

func (m *MockGovernance) StoreConfig(doc governance.GovernanceDoc) {
	m.Doc = &doc
}

func (m *MockGovernance) GetConfig() (*governance.GovernanceDoc, error) {
	return m.Doc, nil
}

// MockDispatcher records disbursements and can be told to refuse them.
type MockDispatcher struct {
	Fail  bool
	Calls []effects.Disbursement
}

func (m *MockDispatcher) Dispatch(disb effects.Disbursement) result.Result[effects.Receipt] {
	m.Calls = append(m.Calls, disb)
	if m.Fail {
		return result.Err[effects.Receipt](fmt.Errorf("dispatch refused"))
	}
	return result.Ok(effects.Receipt{Reference: "ref-" + disb.Cid})
}
