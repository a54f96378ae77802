package ballottest

import (
	"math/big"
	"testing"

	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/blocklords/ballot/blockchain/evm/ledgertest"
	"github.com/blocklords/ballot/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
)

type TestBallotSuite struct {
	suite.Suite
	abi      *abi.Abi
	chair    common.Address
	contract ledgertest.Contract
}

func name(text string) [32]byte {
	var raw [32]byte
	copy(raw[:], text)
	return raw
}

func (suite *TestBallotSuite) SetupTest() {
	ballotAbi, err := abi.New(contracts.BallotAbi)
	suite.Require().NoError(err)
	suite.abi = ballotAbi
	suite.chair = common.HexToAddress("0x0000000000000000000000000000000000000c0a")

	args, err := ballotAbi.PackConstructor([][32]byte{name("Rama"), name("Niki"), name("Jose")})
	suite.Require().NoError(err)

	contract, err := Deployer()(suite.chair, append(append([]byte{}, Bytecode...), args...))
	suite.Require().NoError(err)
	suite.contract = contract
}

func (suite *TestBallotSuite) transact(from common.Address, method string, args ...interface{}) error {
	input, err := suite.abi.Pack(method, args...)
	suite.Require().NoError(err)
	return suite.contract.Transact(from, input, nil)
}

func (suite *TestBallotSuite) call(from common.Address, method string, args ...interface{}) []interface{} {
	input, err := suite.abi.Pack(method, args...)
	suite.Require().NoError(err)
	output, err := suite.contract.Call(from, input)
	suite.Require().NoError(err)
	values, err := suite.abi.Unpack(method, output)
	suite.Require().NoError(err)
	return values
}

func (suite *TestBallotSuite) votes(index int64) int64 {
	values := suite.call(suite.chair, "getProposal", big.NewInt(index))
	return values[1].(*big.Int).Int64()
}

func (suite *TestBallotSuite) TestDeploy() {
	_, err := Deployer()(suite.chair, []byte{0x01, 0x02})
	suite.Require().Error(err)

	_, err = Deployer()(suite.chair, Bytecode)
	suite.Require().Error(err)

	values := suite.call(suite.chair, "chairperson")
	suite.Require().Equal(suite.chair, values[0].(common.Address))

	values = suite.call(suite.chair, "getProposalsCount")
	suite.Require().Equal(int64(3), values[0].(*big.Int).Int64())

	values = suite.call(suite.chair, "getProposal", big.NewInt(2))
	suite.Require().Equal(name("Jose"), values[0].([32]byte))

	input, err := suite.abi.Pack("getProposal", big.NewInt(3))
	suite.Require().NoError(err)
	_, err = suite.contract.Call(suite.chair, input)
	suite.Require().Error(err)

	values = suite.call(suite.chair, "getVoter")
	suite.Require().Equal(int64(1), values[0].(*big.Int).Int64())
}

func (suite *TestBallotSuite) TestGiveRightToVote() {
	voter := common.HexToAddress("0x01")
	stranger := common.HexToAddress("0x02")

	suite.Require().Error(suite.transact(stranger, "giveRightToVote", voter))
	suite.Require().NoError(suite.transact(suite.chair, "giveRightToVote", voter))
	suite.Require().Error(suite.transact(suite.chair, "giveRightToVote", voter))

	values := suite.call(voter, "getVoter")
	suite.Require().Equal(int64(1), values[0].(*big.Int).Int64())

	input, err := suite.abi.Pack("giveRightToVote", stranger)
	suite.Require().NoError(err)
	suite.Require().Error(suite.contract.Transact(suite.chair, input, big.NewInt(1)))
}

func (suite *TestBallotSuite) TestVote() {
	voter := common.HexToAddress("0x01")

	suite.Require().Error(suite.transact(voter, "vote", big.NewInt(1)))
	suite.Require().NoError(suite.transact(suite.chair, "giveRightToVote", voter))
	suite.Require().Error(suite.transact(voter, "vote", big.NewInt(5)))
	suite.Require().NoError(suite.transact(voter, "vote", big.NewInt(1)))
	suite.Require().Error(suite.transact(voter, "vote", big.NewInt(1)))

	suite.Require().Equal(int64(1), suite.votes(1))
	values := suite.call(voter, "winnerName")
	suite.Require().Equal(name("Niki"), values[0].([32]byte))

	// the voter already voted
	suite.Require().Error(suite.transact(suite.chair, "giveRightToVote", voter))
}

func (suite *TestBallotSuite) TestDelegate() {
	first := common.HexToAddress("0x01")
	second := common.HexToAddress("0x02")
	third := common.HexToAddress("0x03")
	for _, voter := range []common.Address{first, second, third} {
		suite.Require().NoError(suite.transact(suite.chair, "giveRightToVote", voter))
	}

	suite.Require().Error(suite.transact(first, "delegate", first))

	// the delegate didn't vote yet, the weight is accumulated
	suite.Require().NoError(suite.transact(first, "delegate", second))
	values := suite.call(second, "getVoter")
	suite.Require().Equal(int64(2), values[0].(*big.Int).Int64())

	// loop through the delegation chain
	suite.Require().Error(suite.transact(second, "delegate", first))

	suite.Require().NoError(suite.transact(second, "vote", big.NewInt(2)))
	suite.Require().Equal(int64(2), suite.votes(2))

	// the delegate already voted, the vote is counted directly
	suite.Require().NoError(suite.transact(third, "delegate", second))
	suite.Require().Equal(int64(3), suite.votes(2))

	values = suite.call(third, "getVoter")
	suite.Require().True(values[1].(bool))
	suite.Require().Equal(second, values[2].(common.Address))
}

func TestBallot(t *testing.T) {
	suite.Run(t, new(TestBallotSuite))
}
