package members

import (
	a "treasury-node/modules/aggregate"
)

type Members interface {
	a.Plugin
	StoreMember(doc MemberDoc)
	GetMembers() ([]MemberDoc, error)
}
