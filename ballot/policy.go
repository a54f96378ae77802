package ballot

import (
	"fmt"

	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/configuration"
)

// ChainPolicy defines whether the transfer waits for the voting right transaction to be mined.
type ChainPolicy string

const (
	// ChainConfirmed submits the transfer only after the voting right transaction is mined.
	// The transfer is waited for as well.
	ChainConfirmed ChainPolicy = "confirmed"
	// ChainSubmitted submits the transfer right after the voting right transaction was accepted.
	// Neither is waited for.
	ChainSubmitted ChainPolicy = "submitted"
)

const ChainPolicyName = "CHAIN_POLICY"

// NewChainPolicy validates the policy name
func NewChainPolicy(name string) (ChainPolicy, error) {
	policy := ChainPolicy(name)
	if policy != ChainConfirmed && policy != ChainSubmitted {
		return "", fmt.Errorf("'%s' chain policy, expected '%s' or '%s'", name, ChainConfirmed, ChainSubmitted)
	}
	return policy, nil
}

func (policy ChainPolicy) confirms() bool {
	return policy == ChainConfirmed
}

// DefaultConfiguration of the core
func DefaultConfiguration() configuration.DefaultConfig {
	return configuration.DefaultConfig{
		Title:      "Ballot",
		Parameters: key_value.Empty().Set(ChainPolicyName, string(ChainConfirmed)),
	}
}
