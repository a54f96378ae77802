// Package bootstrap prepares the ballot before serving:
// connects to the ledger, compiles and deploys the contract.
//
// Any failure here is fatal, the service can't work without the deployed contract.
package bootstrap

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/blocklords/ballot/ballot"
	"github.com/blocklords/ballot/blockchain/evm/client"
	"github.com/blocklords/ballot/blockchain/network"
	"github.com/blocklords/ballot/configuration"
	"github.com/blocklords/ballot/log"
	"github.com/blocklords/ballot/smartcontract"
	"github.com/ethereum/go-ethereum/common"
)

// Compiler returns the artifact of the named contract in the source file
type Compiler func(ctx context.Context, solc string, sourcePath string, name string) (*smartcontract.Artifact, error)

// Dialer connects to the ledger
type Dialer func(ctx context.Context, network *network.Network, parent *log.Logger) (*client.Client, error)

// Bootstrap keeps the parameters of the deployment
type Bootstrap struct {
	Network        *network.Network
	Solc           string
	SourcePath     string
	ContractName   string
	DeployerIndex  uint64
	Policy         ballot.ChainPolicy
	ReceiptTimeout time.Duration
	ReceiptDelay   time.Duration

	Compile Compiler
	Dial    Dialer
}

// Service is the deployed ballot ready to serve
type Service struct {
	Client   *client.Client
	Contract *smartcontract.Deployed
	Proxy    *smartcontract.Proxy
	Core     *ballot.Core

	ChainId    *big.Int
	StartBlock uint64 // the ledger height before the deployment
}

// Close the connection to the ledger
func (s *Service) Close() {
	s.Client.Close()
}

// NewFromConfig reads the parameters from the configuration
func NewFromConfig(config *configuration.Config) (*Bootstrap, error) {
	config.SetDefaults(DefaultConfiguration())
	config.SetDefaults(client.DefaultConfiguration())
	config.SetDefaults(ballot.DefaultConfiguration())

	ledger, err := network.NewFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("network.NewFromConfig: %w", err)
	}
	policy, err := ballot.NewChainPolicy(config.GetString(ballot.ChainPolicyName))
	if err != nil {
		return nil, fmt.Errorf("ballot.NewChainPolicy: %w", err)
	}

	return &Bootstrap{
		Network:        ledger,
		Solc:           config.GetString(SolcName),
		SourcePath:     config.GetString(SourceName),
		ContractName:   config.GetString(ContractName),
		DeployerIndex:  config.GetUint64(DeployerIndexName),
		Policy:         policy,
		ReceiptTimeout: config.GetDuration(client.ReceiptTimeoutName),
		ReceiptDelay:   config.GetDuration(client.ReceiptDelayName),
		Compile:        smartcontract.Compile,
		Dial:           client.New,
	}, nil
}

// Run connects to the ledger, compiles the contract and deploys it
// with the candidates from the deployer account.
//
// The ledger is checked first. If it's unreachable, then nothing is compiled.
// The deployer becomes the administrator of the ballot.
func (b *Bootstrap) Run(ctx context.Context, parent *log.Logger) (*Service, error) {
	ledger, err := b.Dial(ctx, b.Network, parent)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ledger.SetReceiptWait(b.ReceiptTimeout, b.ReceiptDelay)

	service, err := b.deploy(ctx, ledger, parent)
	if err != nil {
		ledger.Close()
		return nil, err
	}

	return service, nil
}

func (b *Bootstrap) deployer(ctx context.Context, ledger *client.Client) (common.Address, error) {
	accounts, err := ledger.Accounts(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("ledger.Accounts: %w", err)
	}
	if b.DeployerIndex >= uint64(len(accounts)) {
		return common.Address{}, fmt.Errorf("the node has %d accounts, no account at %d index", len(accounts), b.DeployerIndex)
	}

	return accounts[b.DeployerIndex], nil
}

func (b *Bootstrap) deploy(ctx context.Context, ledger *client.Client, parent *log.Logger) (*Service, error) {
	logger := parent.Child("bootstrap")

	deployer, err := b.deployer(ctx, ledger)
	if err != nil {
		return nil, fmt.Errorf("deployer: %w", err)
	}
	startBlock, err := ledger.GetRecentBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger.GetRecentBlockNumber: %w", err)
	}
	logger.Info("ledger", "chain_id", ledger.ChainId(), "block_number", startBlock, "deployer", deployer.Hex())

	logger.Info("compiling", "source", b.SourcePath, "contract", b.ContractName)
	artifact, err := b.Compile(ctx, b.Solc, b.SourcePath, b.ContractName)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	candidates, err := ballot.CandidateNames()
	if err != nil {
		return nil, fmt.Errorf("ballot.CandidateNames: %w", err)
	}
	deployed, err := smartcontract.Deploy(ctx, ledger, artifact, deployer, candidates)
	if err != nil {
		return nil, fmt.Errorf("smartcontract.Deploy: %w", err)
	}
	logger.Info("deployed", "contract", artifact.Name, "address", deployed.Address.Hex(), "administrator", deployer.Hex(), "tx", deployed.TxHash.Hex())

	proxy := smartcontract.NewProxy(ledger, deployed, deployer, parent)
	core := ballot.New(proxy, ledger, ballot.NewAdministrator(deployer), b.Policy, parent)

	return &Service{
		Client:   ledger,
		Contract: deployed,
		Proxy:    proxy,
		Core:     core,

		ChainId:    ledger.ChainId(),
		StartBlock: startBlock,
	}, nil
}
