package announcer

import "treasury-node/modules/config"

type announcerConfig struct {
	// cron spec, e.g. "@every 1h"
	Schedule string
}

func NewAnnouncerConfig(dataDir ...string) *config.Config[announcerConfig] {
	var dataDirPtr *string
	if len(dataDir) > 0 {
		dataDirPtr = &dataDir[0]
	}

	return config.New(announcerConfig{
		Schedule: "@every 1h",
	}, dataDirPtr)
}
