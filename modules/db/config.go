package db

import "treasury-node/modules/config"

type DbConfig struct {
	DbURI string
}

func NewDbConfig(dataDir ...string) *config.Config[DbConfig] {
	var dataDirPtr *string
	if len(dataDir) > 0 {
		dataDirPtr = &dataDir[0]
	}

	return config.New(DbConfig{
		DbURI: "mongodb://localhost:27017",
	}, dataDirPtr)
}
