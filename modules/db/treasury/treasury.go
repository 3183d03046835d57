package treasury

import (
	a "treasury-node/modules/aggregate"
	"treasury-node/modules/db"
)

type TreasuryDb struct {
	*db.DbInstance
}

var _ a.Plugin = &TreasuryDb{}

func New(d db.Db, name string) *TreasuryDb {
	return &TreasuryDb{db.NewDbInstance(d, name)}
}
