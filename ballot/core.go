// Package ballot authorizes and orchestrates the operations on the deployed Ballot contract.
//
// The package doesn't keep any mutable state.
// The contract address, the administrator and the chaining policy are set
// once on construction and used by every operation.
package ballot

import (
	"context"
	"math/big"

	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/blocklords/ballot/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Contract is the proxy of the deployed contract
type Contract interface {
	Address() common.Address
	Abi() *abi.Abi
	Read(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	Write(ctx context.Context, from common.Address, method string, args ...interface{}) (common.Hash, error)
	Confirm(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Ledger moves the native currency
type Ledger interface {
	Transfer(ctx context.Context, from common.Address, to common.Address, value *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Counter records the outcomes of the operations
type Counter interface {
	CountGrant(state string)
	CountSnapshot(failed bool)
}

type noCounter struct{}

func (noCounter) CountGrant(string)   {}
func (noCounter) CountSnapshot(bool) {}

type Core struct {
	contract Contract
	ledger   Ledger
	admin    Administrator
	policy   ChainPolicy
	counter  Counter
	logger   *log.Logger
}

// New core bound to the deployed contract.
// The administrator is the account that deployed the contract.
func New(contract Contract, ledger Ledger, admin Administrator, policy ChainPolicy, parent *log.Logger) *Core {
	return &Core{
		contract: contract,
		ledger:   ledger,
		admin:    admin,
		policy:   policy,
		counter:  noCounter{},
		logger:   parent.Child("ballot", "policy", string(policy)),
	}
}

// SetCounter sets where the outcomes are counted
func (c *Core) SetCounter(counter Counter) {
	if counter == nil {
		c.counter = noCounter{}
		return
	}
	c.counter = counter
}

// Administrator returns the account allowed to grant the voting rights
func (c *Core) Administrator() Administrator {
	return c.admin
}

// ContractAddress of the deployed contract
func (c *Core) ContractAddress() common.Address {
	return c.contract.Address()
}
