package smartcontract

import (
	"context"
	"fmt"

	"github.com/blocklords/ballot/blockchain/evm/client"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the part of the ledger client that the contracts need.
type Backend interface {
	Call(ctx context.Context, from common.Address, to common.Address, data []byte) ([]byte, error)
	SendTransaction(ctx context.Context, tx client.Transaction) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Deployed is the contract created on the ledger.
// The address is the only handle used to interact with it.
type Deployed struct {
	Address  common.Address
	Artifact *Artifact
	Deployer common.Address
	TxHash   common.Hash
}

// Deploy submits the creation transaction from the deployer, waits for it to be mined
// and returns the contract address from the receipt.
//
// Any failure is returned as ErrDeployment.
func Deploy(ctx context.Context, backend Backend, artifact *Artifact, deployer common.Address, args ...interface{}) (*Deployed, error) {
	packed, err := artifact.Abi.PackConstructor(args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeployment, err)
	}

	code := make([]byte, 0, len(artifact.Bytecode)+len(packed))
	code = append(code, artifact.Bytecode...)
	code = append(code, packed...)

	hash, err := backend.SendTransaction(ctx, client.Transaction{
		From: deployer,
		Data: code,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: backend.SendTransaction: %w", ErrDeployment, err)
	}

	receipt, err := backend.WaitMined(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: backend.WaitMined: %w", ErrDeployment, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: creation transaction %s reverted", ErrDeployment, hash.Hex())
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: receipt of %s has no contract address", ErrDeployment, hash.Hex())
	}

	return &Deployed{
		Address:  receipt.ContractAddress,
		Artifact: artifact,
		Deployer: deployer,
		TxHash:   hash,
	}, nil
}
