package treasury

import "treasury-node/modules/config"

func NewGenesisConfig(dataDir ...string) *config.Config[GenesisConfig] {
	var dataDirPtr *string
	if len(dataDir) > 0 {
		dataDirPtr = &dataDir[0]
	}

	return config.New(GenesisConfig{
		Members:                []string{"treasury.root"},
		CountThreshold:         1,
		WeightThresholdPercent: 50,
		Mode:                   ModeCount,
	}, dataDirPtr)
}
