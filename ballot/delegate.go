package ballot

import (
	"strings"

	"github.com/blocklords/ballot/blockchain/evm/abi"
)

// DelegateView has the coordinates for the user to call the delegate method of the contract.
// The service doesn't submit the delegation itself.
type DelegateView struct {
	DelegateAddress string   `json:"delegate_address"`
	ContractAddress string   `json:"contract_address"`
	Abi             *abi.Abi `json:"abi,omitempty"`
}

// Delegate returns the delegate address as given along with the contract coordinates.
func (c *Core) Delegate(delegateAddress string) DelegateView {
	return DelegateView{
		DelegateAddress: strings.TrimSpace(delegateAddress),
		ContractAddress: c.contract.Address().Hex(),
		Abi:             c.contract.Abi(),
	}
}
