package ballot

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/blocklords/ballot/smartcontract"
	"github.com/ethereum/go-ethereum/common"
)

// ErrSnapshotRead wraps the first failed read of the snapshot
var ErrSnapshotRead = errors.New("snapshot read failed")

// MaxProposals is the largest proposal count accepted from the contract.
// A larger count is a broken reply.
const MaxProposals = 256

type ProposalView struct {
	Index     uint64   `json:"index"`
	Name      string   `json:"name"`
	VoteCount *big.Int `json:"vote_count"`
}

// VoterView is the voter record of the account that reads the contract
type VoterView struct {
	Weight   *big.Int `json:"weight"`
	Voted    bool     `json:"voted"`
	Delegate string   `json:"delegate"`
	Vote     *big.Int `json:"vote"`
}

type Snapshot struct {
	ContractAddress string         `json:"contract_address"`
	Abi             *abi.Abi       `json:"abi,omitempty"`
	Proposals       []ProposalView `json:"proposals"`
	Winner          string         `json:"winner"`
	Voter           VoterView      `json:"voter"`
}

// GetVotingSnapshot reads the proposals in the contract order, the winner and the voter.
// The snapshot is read from the ledger every time.
//
// Any failed read fails the whole snapshot.
func (c *Core) GetVotingSnapshot(ctx context.Context) (*Snapshot, error) {
	snapshot, err := c.snapshot(ctx)
	c.counter.CountSnapshot(err != nil)
	if err != nil {
		c.logger.Error("snapshot", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSnapshotRead, err)
	}

	return snapshot, nil
}

func (c *Core) snapshot(ctx context.Context) (*Snapshot, error) {
	values, err := c.read(ctx, 1, "getProposalsCount")
	if err != nil {
		return nil, err
	}
	count, err := bigValue(values[0])
	if err != nil {
		return nil, fmt.Errorf("getProposalsCount: %w", err)
	}
	if !count.IsUint64() || count.Uint64() > MaxProposals {
		return nil, fmt.Errorf("getProposalsCount: %s is out of range", count)
	}

	proposals := make([]ProposalView, 0, len(Candidates))
	for i := uint64(0); i < count.Uint64(); i++ {
		proposal, err := c.proposal(ctx, i)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}

	values, err = c.read(ctx, 1, "winnerName")
	if err != nil {
		return nil, err
	}
	winner, err := nameValue(values[0])
	if err != nil {
		return nil, fmt.Errorf("winnerName: %w", err)
	}

	voter, err := c.voter(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ContractAddress: c.contract.Address().Hex(),
		Abi:             c.contract.Abi(),
		Proposals:       proposals,
		Winner:          winner,
		Voter:           voter,
	}, nil
}

func (c *Core) read(ctx context.Context, amount int, method string, args ...interface{}) ([]interface{}, error) {
	values, err := c.contract.Read(ctx, method, args...)
	if err != nil {
		return nil, fmt.Errorf("contract.Read: %w", err)
	}
	if len(values) != amount {
		return nil, fmt.Errorf("%s returned %d values, expected %d", method, len(values), amount)
	}
	return values, nil
}

func (c *Core) proposal(ctx context.Context, index uint64) (ProposalView, error) {
	values, err := c.read(ctx, 2, "getProposal", new(big.Int).SetUint64(index))
	if err != nil {
		return ProposalView{}, err
	}
	name, err := nameValue(values[0])
	if err != nil {
		return ProposalView{}, fmt.Errorf("getProposal(%d) name: %w", index, err)
	}
	voteCount, err := bigValue(values[1])
	if err != nil {
		return ProposalView{}, fmt.Errorf("getProposal(%d) vote count: %w", index, err)
	}

	return ProposalView{Index: index, Name: name, VoteCount: voteCount}, nil
}

func (c *Core) voter(ctx context.Context) (VoterView, error) {
	values, err := c.read(ctx, 4, "getVoter")
	if err != nil {
		return VoterView{}, err
	}
	weight, err := bigValue(values[0])
	if err != nil {
		return VoterView{}, fmt.Errorf("getVoter weight: %w", err)
	}
	voted, ok := values[1].(bool)
	if !ok {
		return VoterView{}, fmt.Errorf("getVoter voted: expected bool, got %T", values[1])
	}
	delegate, ok := values[2].(common.Address)
	if !ok {
		return VoterView{}, fmt.Errorf("getVoter delegate: expected address, got %T", values[2])
	}
	vote, err := bigValue(values[3])
	if err != nil {
		return VoterView{}, fmt.Errorf("getVoter vote: %w", err)
	}

	return VoterView{Weight: weight, Voted: voted, Delegate: delegate.Hex(), Vote: vote}, nil
}

func bigValue(value interface{}) (*big.Int, error) {
	number, ok := value.(*big.Int)
	if !ok || number == nil {
		return nil, fmt.Errorf("expected uint256, got %T", value)
	}
	return number, nil
}

func nameValue(value interface{}) (string, error) {
	var raw []byte
	switch name := value.(type) {
	case [32]byte:
		raw = name[:]
	case []byte:
		raw = name
	default:
		return "", fmt.Errorf("expected bytes32, got %T", value)
	}

	return smartcontract.DecodeName(raw)
}
