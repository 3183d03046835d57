package governance

import (
	"context"
	a "treasury-node/modules/aggregate"
	"treasury-node/modules/db"
	treasury_db "treasury-node/modules/db/treasury"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GovernanceDoc is the single durable configuration record: the active quorum
// parameters plus the running fund totals.
type GovernanceDoc struct {
	CountThreshold         uint64 `bson:"count_threshold" json:"count_threshold"`
	WeightThresholdPercent uint64 `bson:"weight_threshold_percent" json:"weight_threshold_percent"`
	Mode                   string `bson:"mode" json:"mode"`
	TotalWeight            uint64 `bson:"total_weight" json:"total_weight"`
	Balance                uint64 `bson:"balance" json:"balance"`
}

type Governance interface {
	a.Plugin
	StoreConfig(doc GovernanceDoc)
	GetConfig() (*GovernanceDoc, error)
}

type governanceDb struct {
	*db.Collection
}

func New(d *treasury_db.TreasuryDb) Governance {
	return &governanceDb{db.NewCollection(d.DbInstance, "treasury_governance")}
}

func (g *governanceDb) StoreConfig(doc GovernanceDoc) {
	findUpdateOpts := options.FindOneAndUpdate().SetUpsert(true)
	g.FindOneAndUpdate(context.Background(), bson.M{
		"_id": "governance",
	}, bson.M{
		"$set": doc,
	}, findUpdateOpts)
}

func (g *governanceDb) GetConfig() (*GovernanceDoc, error) {
	findResult := g.FindOne(context.Background(), bson.M{
		"_id": "governance",
	})

	if findResult.Err() != nil {
		if findResult.Err() == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, findResult.Err()
	}

	doc := GovernanceDoc{}
	if err := findResult.Decode(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}
