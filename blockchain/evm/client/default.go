package client

import (
	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/configuration"
)

const (
	ReceiptTimeoutName = "RECEIPT_TIMEOUT"
	ReceiptDelayName   = "RECEIPT_POLL_DELAY"
)

// DefaultConfiguration of the receipt waiting
func DefaultConfiguration() configuration.DefaultConfig {
	return configuration.DefaultConfig{
		Title: "Ledger client",
		Parameters: key_value.Empty().
			Set(ReceiptTimeoutName, ReceiptTimeout.String()).
			Set(ReceiptDelayName, AttemptDelay.String()),
	}
}
