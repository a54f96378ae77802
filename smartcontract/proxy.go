package smartcontract

import (
	"context"
	"fmt"

	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/blocklords/ballot/blockchain/evm/client"
	"github.com/blocklords/ballot/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Proxy is bound to the deployed contract.
// It translates the method names into the ledger calls and transactions.
type Proxy struct {
	backend  Backend
	contract *Deployed
	caller   common.Address
	logger   *log.Logger
}

// NewProxy returns the proxy of the deployed contract.
// The caller is used as the sender of the read only calls.
func NewProxy(backend Backend, contract *Deployed, caller common.Address, parent *log.Logger) *Proxy {
	return &Proxy{
		backend:  backend,
		contract: contract,
		caller:   caller,
		logger:   parent.Child("proxy", "address", contract.Address.Hex()),
	}
}

// Address of the contract
func (p *Proxy) Address() common.Address {
	return p.contract.Address
}

// Abi of the contract
func (p *Proxy) Abi() *abi.Abi {
	return p.contract.Artifact.Abi
}

// Read calls the read only method. Returns the decoded values.
func (p *Proxy) Read(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := p.Abi().Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContractCall, err)
	}

	raw, err := p.backend.Call(ctx, p.caller, p.contract.Address, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrContractCall, method, err)
	}

	values, err := p.Abi().Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrContractCall, method, err)
	}

	return values, nil
}

// Write submits the transaction that calls the method from the given account.
// It doesn't wait for the transaction to be mined, call Confirm for that.
func (p *Proxy) Write(ctx context.Context, from common.Address, method string, args ...interface{}) (common.Hash, error) {
	data, err := p.Abi().Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrContractTransaction, err)
	}

	to := p.contract.Address
	hash, err := p.backend.SendTransaction(ctx, client.Transaction{
		From: from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s: %w", ErrContractTransaction, method, err)
	}
	p.logger.Debug("submitted", "method", method, "from", from.Hex(), "hash", hash.Hex())

	return hash, nil
}

// Confirm waits until the transaction is mined.
// Returns ErrContractTransaction if the transaction reverted.
// If the transaction was not mined in time, the error wraps client.ErrTimeout.
func (p *Proxy) Confirm(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := p.backend.WaitMined(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("backend.WaitMined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s reverted", ErrContractTransaction, hash.Hex())
	}

	return receipt, nil
}
