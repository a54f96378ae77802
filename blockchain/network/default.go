package network

import (
	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/configuration"
)

const (
	LedgerNetworkId = "LEDGER_NETWORK_ID"
	LedgerScheme    = "LEDGER_SCHEME"
	LedgerHost      = "LEDGER_HOST"
	LedgerPort      = "LEDGER_PORT"
	LedgerUrl       = "LEDGER_URL"
)

// DefaultConfiguration of the ledger endpoint.
// The default port is the one of the local development node.
func DefaultConfiguration() configuration.DefaultConfig {
	return configuration.DefaultConfig{
		Title: "Ledger",
		Parameters: key_value.Empty().
			Set(LedgerNetworkId, "local").
			Set(LedgerScheme, "http").
			Set(LedgerHost, "127.0.0.1").
			Set(LedgerPort, uint64(7545)),
	}
}
