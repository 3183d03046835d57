package members

import (
	"context"
	"treasury-node/modules/db"
	treasury_db "treasury-node/modules/db/treasury"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type membersDb struct {
	*db.Collection
}

func New(d *treasury_db.TreasuryDb) Members {
	return &membersDb{db.NewCollection(d.DbInstance, "treasury_members")}
}

func (m *membersDb) StoreMember(doc MemberDoc) {
	findUpdateOpts := options.FindOneAndUpdate().SetUpsert(true)
	m.FindOneAndUpdate(context.Background(), bson.M{
		"account": doc.Account,
	}, bson.M{
		"$set": doc,
	}, findUpdateOpts)
}

// Returns all rows (current and removed members) in insertion order.
func (m *membersDb) GetMembers() ([]MemberDoc, error) {
	opts := options.Find().SetSort(bson.M{"position": 1})
	cursor, err := m.Find(context.Background(), bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(context.Background())

	results := make([]MemberDoc, 0)
	for cursor.Next(context.Background()) {
		doc := MemberDoc{}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		results = append(results, doc)
	}

	return results, nil
}
