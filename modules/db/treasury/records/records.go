package records

import (
	"context"
	"treasury-node/modules/db"
	treasury_db "treasury-node/modules/db/treasury"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type actions struct {
	*db.Collection
}

func NewActions(d *treasury_db.TreasuryDb) Actions {
	return &actions{db.NewCollection(d.DbInstance, "treasury_actions")}
}

func (ac *actions) StoreAction(doc ActionDoc) {
	findUpdateOpts := options.FindOneAndUpdate().SetUpsert(true)
	ac.FindOneAndUpdate(context.Background(), bson.M{
		"index": doc.Index,
	}, bson.M{
		"$set": doc,
	}, findUpdateOpts)
}

// Returns the full action log ordered by index.
func (ac *actions) GetActions() ([]ActionDoc, error) {
	opts := options.Find().SetSort(bson.M{"index": 1})
	cursor, err := ac.Find(context.Background(), bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.Background())

	results := make([]ActionDoc, 0)
	for cursor.Next(context.Background()) {
		doc := ActionDoc{}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, doc)
	}

	return results, nil
}

type proposals struct {
	*db.Collection
}

func NewProposals(d *treasury_db.TreasuryDb) Proposals {
	return &proposals{db.NewCollection(d.DbInstance, "treasury_proposals")}
}

func (pr *proposals) StoreProposal(doc ProposalDoc) {
	findUpdateOpts := options.FindOneAndUpdate().SetUpsert(true)
	pr.FindOneAndUpdate(context.Background(), bson.M{
		"index": doc.Index,
	}, bson.M{
		"$set": doc,
	}, findUpdateOpts)
}

func (pr *proposals) GetProposals() ([]ProposalDoc, error) {
	opts := options.Find().SetSort(bson.M{"index": 1})
	cursor, err := pr.Find(context.Background(), bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.Background())

	results := make([]ProposalDoc, 0)
	for cursor.Next(context.Background()) {
		doc := ProposalDoc{}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, doc)
	}

	return results, nil
}
