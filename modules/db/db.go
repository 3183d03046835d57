package db

import (
	"context"
	"treasury-node/lib/utils"
	a "treasury-node/modules/aggregate"
	"treasury-node/modules/config"

	"github.com/chebyrash/promise"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Db interface {
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
}

type db struct {
	conf *config.Config[DbConfig]
	*mongo.Client
}

var _ a.Plugin = &db{}
var _ Db = &db{}

func New(conf *config.Config[DbConfig]) *db {
	return &db{conf: conf}
}

func (db *db) Init() error {
	ctx := context.Background()

	driver, err := mongo.Connect(ctx, options.Client().ApplyURI(db.conf.Get().DbURI))
	if err != nil {
		return err
	}
	db.Client = driver
	return nil
}

func (db *db) Start() *promise.Promise[any] {
	return utils.PromiseResolve[any](nil)
}

func (db *db) Stop() error {
	return db.Disconnect(context.Background())
}
