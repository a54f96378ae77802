package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/blocklords/ballot/ballot"
	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/blocklords/ballot/blockchain/evm/client"
	"github.com/blocklords/ballot/blockchain/evm/ledgertest"
	"github.com/blocklords/ballot/blockchain/network"
	"github.com/blocklords/ballot/blockchain/network/provider"
	"github.com/blocklords/ballot/configuration"
	"github.com/blocklords/ballot/contracts"
	"github.com/blocklords/ballot/contracts/ballottest"
	"github.com/blocklords/ballot/log"
	"github.com/blocklords/ballot/smartcontract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
)

// Define the suite, and absorb the built-in basic suite
// functionality from testify - including a T() method which
// returns the current testing context
type TestBootstrapSuite struct {
	suite.Suite
	node      *ledgertest.Node
	logger    *log.Logger
	ctx       context.Context
	compiled  int
	bootstrap *Bootstrap
}

func (suite *TestBootstrapSuite) SetupTest() {
	node, err := ledgertest.New(3)
	suite.Require().NoError(err)
	node.SetDeployer(ballottest.Deployer())
	suite.node = node

	logger, err := log.New("test_suite", false)
	suite.Require().NoError(err)
	suite.logger = logger
	suite.ctx = context.Background()
	suite.compiled = 0

	ledger, err := network.New("local", provider.Provider{Url: node.Url()})
	suite.Require().NoError(err)

	suite.bootstrap = &Bootstrap{
		Network:        ledger,
		Solc:           "solc",
		SourcePath:     contracts.BallotSourcePath,
		ContractName:   contracts.BallotName,
		DeployerIndex:  0,
		Policy:         ballot.ChainConfirmed,
		ReceiptTimeout: time.Millisecond * 300,
		ReceiptDelay:   time.Millisecond * 10,
		Compile:        suite.compile,
		Dial:           client.New,
	}
}

func (suite *TestBootstrapSuite) TearDownTest() {
	suite.node.Close()
}

// compile returns the artifact of the go implementation of the Ballot
func (suite *TestBootstrapSuite) compile(_ context.Context, _ string, _ string, name string) (*smartcontract.Artifact, error) {
	suite.compiled++

	ballotAbi, err := abi.New(contracts.BallotAbi)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", smartcontract.ErrCompilation, err)
	}
	return &smartcontract.Artifact{
		Name:     "contracts/Ballot.sol:" + name,
		Abi:      ballotAbi,
		Bytecode: ballottest.Bytecode,
	}, nil
}

func (suite *TestBootstrapSuite) TestEndToEnd() {
	service, err := suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().NoError(err)
	defer service.Close()

	suite.Require().Equal(1, suite.compiled)
	suite.Require().Equal(int64(1337), service.ChainId.Int64())
	suite.Require().Equal(uint64(0), service.StartBlock)
	admin := suite.node.Accounts()[0]
	suite.Require().Equal(admin, service.Contract.Deployer)
	suite.Require().Equal(admin, service.Core.Administrator().Address())
	suite.Require().Equal(service.Contract.Address, service.Core.ContractAddress())

	values, err := service.Proxy.Read(suite.ctx, "getProposalsCount")
	suite.Require().NoError(err)
	suite.Require().Equal(int64(3), values[0].(*big.Int).Int64())

	names := make(map[string]bool)
	for i := int64(0); i < 3; i++ {
		values, err := service.Proxy.Read(suite.ctx, "getProposal", big.NewInt(i))
		suite.Require().NoError(err)
		raw := values[0].([32]byte)
		name, err := smartcontract.DecodeName(raw[:])
		suite.Require().NoError(err)
		names[name] = true
	}
	suite.Require().Len(names, 3)

	snapshot, err := service.Core.GetVotingSnapshot(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(service.Contract.Address.Hex(), snapshot.ContractAddress)
	suite.Require().Len(snapshot.Proposals, 3)
	for i, name := range ballot.Candidates {
		suite.Require().Equal(uint64(i), snapshot.Proposals[i].Index)
		suite.Require().Equal(name, snapshot.Proposals[i].Name)
		suite.Require().Equal(int64(0), snapshot.Proposals[i].VoteCount.Int64())
	}
	suite.Require().Equal("Rama", snapshot.Winner)
	// the snapshot is read by the administrator, the chairperson has the right to vote
	suite.Require().Equal(int64(1), snapshot.Voter.Weight.Int64())
	suite.Require().Equal(common.Address{}.Hex(), snapshot.Voter.Delegate)

	again, err := service.Core.GetVotingSnapshot(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Equal(snapshot.Proposals, again.Proposals)
}

func (suite *TestBootstrapSuite) TestGrant() {
	service, err := suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().NoError(err)
	defer service.Close()

	admin := suite.node.Accounts()[0]
	voter := suite.node.Accounts()[1]
	before := suite.node.Balance(voter)

	// the caller is not the administrator
	outcome := service.Core.GrantVotingRight(suite.ctx, ballot.GrantRequest{Target: voter.Hex(), Caller: voter.Hex()})
	suite.Require().Equal(ballot.Unauthorized, outcome.State)
	suite.Require().Len(suite.node.Sent(), 1)

	outcome = service.Core.GrantVotingRight(suite.ctx, ballot.GrantRequest{Caller: admin.Hex()})
	suite.Require().Equal(ballot.MissingTarget, outcome.State)
	suite.Require().Len(suite.node.Sent(), 1)

	outcome = service.Core.GrantVotingRight(suite.ctx, ballot.GrantRequest{Target: voter.Hex(), Caller: admin.Hex()})
	suite.Require().Equal(ballot.Completed, outcome.State, outcome.Reason)

	sent := suite.node.Sent()
	suite.Require().Len(sent, 3)
	suite.Require().Equal(service.Contract.Address, *sent[1].To)
	suite.Require().Equal(*outcome.RightTx, sent[1].Hash)
	suite.Require().Equal(voter, *sent[2].To)
	suite.Require().Equal(*outcome.TransferTx, sent[2].Hash)

	expected := new(big.Int).Add(before, ballot.TransferAmount())
	suite.Require().Equal(expected, suite.node.Balance(voter))

	values, err := service.Proxy.Read(suite.ctx, "voters", voter)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(1), values[0].(*big.Int).Int64())

	// the second grant is reverted by the contract, nothing is transferred
	outcome = service.Core.GrantVotingRight(suite.ctx, ballot.GrantRequest{Target: voter.Hex(), Caller: admin.Hex()})
	suite.Require().Equal(ballot.Failed, outcome.State)
	suite.Require().ErrorIs(outcome.Err, smartcontract.ErrContractTransaction)
	suite.Require().Len(suite.node.Sent(), 4)
	suite.Require().Equal(expected, suite.node.Balance(voter))

	// the ledger doesn't mine
	suite.node.HoldReceipts(true)
	outcome = service.Core.GrantVotingRight(suite.ctx, ballot.GrantRequest{Target: suite.node.Accounts()[2].Hex(), Caller: admin.Hex()})
	suite.Require().Equal(ballot.Timeout, outcome.State)
	suite.Require().Len(suite.node.Sent(), 5)
}

func (suite *TestBootstrapSuite) TestGrantAfterCallerLeft() {
	service, err := suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().NoError(err)
	defer service.Close()

	admin := suite.node.Accounts()[0]
	voter := suite.node.Accounts()[1]
	before := suite.node.Balance(voter)

	// the caller leaves while the voting right is pending, then the ledger mines it
	suite.node.HoldReceipts(true)
	ctx, cancel := context.WithCancel(suite.ctx)
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
		time.Sleep(50 * time.Millisecond)
		suite.node.HoldReceipts(false)
	}()

	outcome := service.Core.GrantVotingRight(ctx, ballot.GrantRequest{Target: voter.Hex(), Caller: admin.Hex()})
	suite.Require().Equal(ballot.Completed, outcome.State, outcome.Reason)
	suite.Require().Len(suite.node.Sent(), 3)
	suite.Require().Equal(new(big.Int).Add(before, ballot.TransferAmount()), suite.node.Balance(voter))

	values, err := service.Proxy.Read(suite.ctx, "voters", voter)
	suite.Require().NoError(err)
	suite.Require().Equal(int64(1), values[0].(*big.Int).Int64())
}

func (suite *TestBootstrapSuite) TestUnreachable() {
	p, err := provider.New("http", "127.0.0.1", 1)
	suite.Require().NoError(err)
	suite.bootstrap.Network, err = network.New("offline", p)
	suite.Require().NoError(err)

	_, err = suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().Error(err)
	suite.Require().True(errors.Is(err, client.ErrUnreachable))
	suite.Require().Equal(0, suite.compiled)
}

func (suite *TestBootstrapSuite) TestFailures() {
	// no account at the index
	suite.bootstrap.DeployerIndex = 3
	_, err := suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().Error(err)
	suite.Require().Equal(0, suite.compiled)
	suite.bootstrap.DeployerIndex = 0

	// the source is malformed
	suite.bootstrap.Compile = func(context.Context, string, string, string) (*smartcontract.Artifact, error) {
		return nil, fmt.Errorf("%w: ParserError: Expected ';'", smartcontract.ErrCompilation)
	}
	_, err = suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().ErrorIs(err, smartcontract.ErrCompilation)
	suite.Require().Empty(suite.node.Sent())

	// the creation is reverted
	suite.bootstrap.Compile = suite.compile
	suite.node.SetDeployer(func(common.Address, []byte) (ledgertest.Contract, error) {
		return nil, errors.New("out of gas")
	})
	_, err = suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().ErrorIs(err, smartcontract.ErrDeployment)

	// the real compiler with the missing source
	suite.bootstrap.Compile = smartcontract.Compile
	suite.bootstrap.SourcePath = "Missing.sol"
	_, err = suite.bootstrap.Run(suite.ctx, suite.logger)
	suite.Require().ErrorIs(err, smartcontract.ErrCompilation)
}

func (suite *TestBootstrapSuite) TestNewFromConfig() {
	suite.T().Setenv("LEDGER_URL", suite.node.Url())
	suite.T().Setenv("RECEIPT_TIMEOUT", "2s")
	suite.T().Setenv("DEPLOYER_INDEX", "1")

	config, err := configuration.New(suite.logger)
	suite.Require().NoError(err)

	bootstrap, err := NewFromConfig(config)
	suite.Require().NoError(err)
	suite.Require().Equal(suite.node.Url(), bootstrap.Network.Providers[0].Url)
	suite.Require().Equal(time.Second*2, bootstrap.ReceiptTimeout)
	suite.Require().Equal(client.AttemptDelay, bootstrap.ReceiptDelay)
	suite.Require().Equal(uint64(1), bootstrap.DeployerIndex)
	suite.Require().Equal(ballot.ChainConfirmed, bootstrap.Policy)
	suite.Require().Equal(contracts.BallotSourcePath, bootstrap.SourcePath)
	suite.Require().Equal("solc", bootstrap.Solc)

	suite.T().Setenv("CHAIN_POLICY", "mined")
	config, err = configuration.New(suite.logger)
	suite.Require().NoError(err)
	_, err = NewFromConfig(config)
	suite.Require().Error(err)
}

func TestBootstrap(t *testing.T) {
	suite.Run(t, new(TestBootstrapSuite))
}
