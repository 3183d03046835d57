package members

// MemberDoc holds one account's registry entry. Position preserves the
// insertion order of the membership listing across restarts. Contribution is
// the account's cumulative deposited amount (its voting weight).
//
// Active distinguishes current members from removed ones. Removal keeps the
// row: a removed member's contributions stay tallied into the total weight
// and are restored as voting weight if the member is ever re-added.
type MemberDoc struct {
	Account      string `bson:"account" json:"account"`
	Contribution uint64 `bson:"contribution" json:"contribution"`
	Position     uint64 `bson:"position" json:"position"`
	Active       bool   `bson:"active" json:"active"`
}
