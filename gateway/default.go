package gateway

import (
	"time"

	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/configuration"
)

const (
	PortName           = "HTTP_PORT"
	RateLimitName      = "RATE_LIMIT_RPS"
	RateLimitBurstName = "RATE_LIMIT_BURST"
	RateLimitIdleName  = "RATE_LIMIT_IDLE"

	IdleTimeout = 10 * time.Minute
)

// DefaultConfiguration of the gateway.
// By default, a host can grant one voting right per second with the burst of five.
func DefaultConfiguration() configuration.DefaultConfig {
	return configuration.DefaultConfig{
		Title: "Gateway",
		Parameters: key_value.Empty().
			Set(PortName, uint64(8080)).
			Set(RateLimitName, float64(1)).
			Set(RateLimitBurstName, uint64(5)).
			Set(RateLimitIdleName, IdleTimeout.String()),
	}
}
