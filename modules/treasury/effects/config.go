package effects

import "treasury-node/modules/config"

type DispatcherConfig struct {
	// endpoint the disbursement is posted to on action execution
	WebhookUrl string
}

func NewDispatcherConfig(dataDir ...string) *config.Config[DispatcherConfig] {
	var dataDirPtr *string
	if len(dataDir) > 0 {
		dataDirPtr = &dataDir[0]
	}

	return config.New(DispatcherConfig{
		WebhookUrl: "http://localhost:9595/disburse",
	}, dataDirPtr)
}
