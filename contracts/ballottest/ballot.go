// Package ballottest is the go implementation of contracts/Ballot.sol
// executed by the ledgertest node.
package ballottest

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/blocklords/ballot/blockchain/evm/ledgertest"
	"github.com/blocklords/ballot/contracts"
	"github.com/ethereum/go-ethereum/common"
)

// Bytecode is the creation code accepted by the Deployer.
// It's not an evm code, the node doesn't execute it.
var Bytecode = []byte{0x60, 0x80, 0x60, 0x40, 0x52}

var errReverted = errors.New("execution reverted")

type voter struct {
	weight   *big.Int
	voted    bool
	delegate common.Address
	vote     *big.Int
}

type proposal struct {
	name      [32]byte
	voteCount *big.Int
}

// Ballot keeps the state of one deployed contract
type Ballot struct {
	abi         *abi.Abi
	chairperson common.Address
	voters      map[common.Address]*voter
	proposals   []*proposal
}

// Deployer returns the ledgertest.Deployer that creates the Ballot contracts.
// The creation code must start with Bytecode.
func Deployer() ledgertest.Deployer {
	return func(from common.Address, code []byte) (ledgertest.Contract, error) {
		ballotAbi, err := abi.New(contracts.BallotAbi)
		if err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(code, Bytecode) {
			return nil, fmt.Errorf("unknown creation code")
		}

		args, err := ballotAbi.UnpackConstructor(code[len(Bytecode):])
		if err != nil {
			return nil, err
		}
		names, ok := args[0].([][32]byte)
		if !ok {
			return nil, fmt.Errorf("proposal names are not bytes32[]")
		}

		ballot := &Ballot{
			abi:         ballotAbi,
			chairperson: from,
			voters:      make(map[common.Address]*voter),
			proposals:   make([]*proposal, len(names)),
		}
		ballot.voter(from).weight = big.NewInt(1)
		for i, name := range names {
			ballot.proposals[i] = &proposal{name: name, voteCount: big.NewInt(0)}
		}

		return ballot, nil
	}
}

func (b *Ballot) voter(address common.Address) *voter {
	v, ok := b.voters[address]
	if !ok {
		v = &voter{weight: big.NewInt(0), vote: big.NewInt(0)}
		b.voters[address] = v
	}
	return v
}

func (b *Ballot) proposal(index *big.Int) (*proposal, error) {
	if !index.IsUint64() || index.Uint64() >= uint64(len(b.proposals)) {
		return nil, errReverted
	}
	return b.proposals[index.Uint64()], nil
}

func (b *Ballot) winningProposal() *big.Int {
	winner := big.NewInt(0)
	winningVoteCount := big.NewInt(0)
	for i, p := range b.proposals {
		if p.voteCount.Cmp(winningVoteCount) > 0 {
			winningVoteCount = p.voteCount
			winner = big.NewInt(int64(i))
		}
	}
	return winner
}

// Call executes the view methods
func (b *Ballot) Call(from common.Address, input []byte) ([]byte, error) {
	method, args, err := b.abi.DecodeInput(input)
	if err != nil {
		return nil, errReverted
	}

	switch method {
	case "chairperson":
		return b.abi.PackOutput(method, b.chairperson)
	case "voters":
		v := b.voter(args[0].(common.Address))
		return b.abi.PackOutput(method, v.weight, v.voted, v.delegate, v.vote)
	case "getVoter":
		v := b.voter(from)
		return b.abi.PackOutput(method, v.weight, v.voted, v.delegate, v.vote)
	case "proposals", "getProposal":
		p, err := b.proposal(args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		return b.abi.PackOutput(method, p.name, p.voteCount)
	case "getProposalsCount":
		return b.abi.PackOutput(method, big.NewInt(int64(len(b.proposals))))
	case "winningProposal":
		return b.abi.PackOutput(method, b.winningProposal())
	case "winnerName":
		p, err := b.proposal(b.winningProposal())
		if err != nil {
			return nil, err
		}
		return b.abi.PackOutput(method, p.name)
	}

	return nil, errReverted
}

// Transact executes the state changing methods
func (b *Ballot) Transact(from common.Address, input []byte, value *big.Int) error {
	if value != nil && value.Sign() > 0 {
		return errReverted
	}
	method, args, err := b.abi.DecodeInput(input)
	if err != nil {
		return errReverted
	}

	switch method {
	case "giveRightToVote":
		target := b.voter(args[0].(common.Address))
		if from != b.chairperson || target.voted || target.weight.Sign() != 0 {
			return errReverted
		}
		target.weight = big.NewInt(1)
		return nil
	case "delegate":
		return b.delegate(from, args[0].(common.Address))
	case "vote":
		sender := b.voter(from)
		if sender.weight.Sign() == 0 || sender.voted {
			return errReverted
		}
		p, err := b.proposal(args[0].(*big.Int))
		if err != nil {
			return err
		}
		sender.voted = true
		sender.vote = args[0].(*big.Int)
		p.voteCount = new(big.Int).Add(p.voteCount, sender.weight)
		return nil
	}

	return errReverted
}

func (b *Ballot) delegate(from common.Address, to common.Address) error {
	sender := b.voter(from)
	if sender.weight.Sign() == 0 || sender.voted || to == from {
		return errReverted
	}
	for b.voter(to).delegate != (common.Address{}) {
		to = b.voter(to).delegate
		if to == from {
			return errReverted
		}
	}
	delegate := b.voter(to)
	if delegate.weight.Sign() == 0 {
		return errReverted
	}

	sender.voted = true
	sender.delegate = to
	if delegate.voted {
		p, err := b.proposal(delegate.vote)
		if err != nil {
			return err
		}
		p.voteCount = new(big.Int).Add(p.voteCount, sender.weight)
	} else {
		delegate.weight = new(big.Int).Add(delegate.weight, sender.weight)
	}

	return nil
}
