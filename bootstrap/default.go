package bootstrap

import (
	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/configuration"
	"github.com/blocklords/ballot/contracts"
)

const (
	SourceName        = "CONTRACT_SOURCE"
	SolcName          = "SOLC_BIN"
	ContractName      = "CONTRACT_NAME"
	DeployerIndexName = "DEPLOYER_INDEX"
)

// DefaultConfiguration of the contract deployment.
// The deployer is the first account of the node.
func DefaultConfiguration() configuration.DefaultConfig {
	return configuration.DefaultConfig{
		Title: "Bootstrap",
		Parameters: key_value.Empty().
			Set(SourceName, contracts.BallotSourcePath).
			Set(SolcName, "solc").
			Set(ContractName, contracts.BallotName).
			Set(DeployerIndexName, uint64(0)),
	}
}
