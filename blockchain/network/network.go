// Package network describes the remote ledger that the service works with.
package network

import (
	"fmt"

	"github.com/blocklords/ballot/blockchain/network/provider"
	"github.com/blocklords/ballot/configuration"
)

type Network struct {
	Id        string              `json:"id"`
	Providers []provider.Provider `json:"providers"`
}

// New network with the providers.
// At least one provider is required.
func New(id string, providers ...provider.Provider) (*Network, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("missing network id")
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("atleast one provider should be given")
	}

	return &Network{
		Id:        id,
		Providers: providers,
	}, nil
}

// NewFromConfig returns the network described by the LEDGER_* parameters.
// If LEDGER_URL is set, then it's used instead of the host and port.
func NewFromConfig(config *configuration.Config) (*Network, error) {
	config.SetDefaults(DefaultConfiguration())

	var p provider.Provider
	var err error
	if config.Exist(LedgerUrl) {
		p, err = provider.NewFromUrl(config.GetString(LedgerUrl))
	} else {
		p, err = provider.New(config.GetString(LedgerScheme), config.GetString(LedgerHost), config.GetUint64(LedgerPort))
	}
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	return New(config.GetString(LedgerNetworkId), p)
}

// GetFirstProviderUrl returns the provider url
func (n *Network) GetFirstProviderUrl() (string, error) {
	if len(n.Providers) == 0 {
		return "", fmt.Errorf("there is no providers")
	}
	return n.Providers[0].Url, nil
}
