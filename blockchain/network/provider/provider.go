package provider

import (
	"fmt"
	"net/url"
	"strconv"
)

// Provider is the Url wrapper to the remote
// ledger node.
//
// The Provider is not responsible for connecting.
// Refer to blockchain/evm/client
type Provider struct {
	Url string `json:"url"`
}

// New provider from the ledger endpoint parts.
// The scheme is either http or https.
func New(scheme string, host string, port uint64) (Provider, error) {
	if scheme != "http" && scheme != "https" {
		return Provider{}, fmt.Errorf("unsupported scheme '%s', expected http or https", scheme)
	}
	if len(host) == 0 {
		return Provider{}, fmt.Errorf("missing host")
	}
	if port == 0 || port > 65535 {
		return Provider{}, fmt.Errorf("port %d is out of range", port)
	}

	endpoint := url.URL{
		Scheme: scheme,
		Host:   host + ":" + strconv.FormatUint(port, 10),
	}

	return Provider{Url: endpoint.String()}, nil
}

// NewFromUrl validates the raw url and returns the provider
func NewFromUrl(raw string) (Provider, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return Provider{}, fmt.Errorf("url.Parse('%s'): %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Provider{}, fmt.Errorf("unsupported scheme in '%s', expected http or https", raw)
	}
	if len(parsed.Host) == 0 {
		return Provider{}, fmt.Errorf("missing host in '%s'", raw)
	}

	return Provider{Url: raw}, nil
}
