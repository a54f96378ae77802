package ballot

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/blocklords/ballot/contracts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// submission is the transaction passed to the fakes
type submission struct {
	Kind   string // "write" or "transfer"
	From   common.Address
	To     common.Address
	Method string
	Value  *big.Int
	Hash   common.Hash
}

// fakeLedger implements both the Contract and the Ledger.
// All submissions are kept in one list to check their order.
type fakeLedger struct {
	mu          sync.Mutex
	address     common.Address
	abi         *abi.Abi
	submissions []submission
	reads       []string

	writeErr      error
	transferErr   error
	confirmErr    error
	waitErr       error
	transferState uint64
	values        map[string][]interface{}
	readErr       map[string]error
}

func newFakeLedger() *fakeLedger {
	contractAbi, err := abi.New(contracts.BallotAbi)
	if err != nil {
		panic(err)
	}

	return &fakeLedger{
		address:       common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		abi:           contractAbi,
		transferState: types.ReceiptStatusSuccessful,
		values:        make(map[string][]interface{}),
		readErr:       make(map[string]error),
	}
}

func (f *fakeLedger) hash() common.Hash {
	return crypto.Keccak256Hash(big.NewInt(int64(len(f.submissions))).Bytes())
}

func (f *fakeLedger) Address() common.Address {
	return f.address
}

func (f *fakeLedger) Abi() *abi.Abi {
	return f.abi
}

func (f *fakeLedger) Read(_ context.Context, method string, args ...interface{}) ([]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads = append(f.reads, method)
	if err, ok := f.readErr[method]; ok {
		return nil, err
	}
	key := method
	if method == "getProposal" {
		key = method + args[0].(*big.Int).String()
	}
	values, ok := f.values[key]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return values, nil
}

func (f *fakeLedger) Write(_ context.Context, from common.Address, method string, args ...interface{}) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return common.Hash{}, f.writeErr
	}
	hash := f.hash()
	f.submissions = append(f.submissions, submission{
		Kind:   "write",
		From:   from,
		To:     args[0].(common.Address),
		Method: method,
		Hash:   hash,
	})
	return hash, nil
}

func (f *fakeLedger) Confirm(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("backend.WaitMined: %w", err)
	}
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &types.Receipt{TxHash: hash, Status: types.ReceiptStatusSuccessful}, nil
}

func (f *fakeLedger) Transfer(ctx context.Context, from common.Address, to common.Address, value *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return common.Hash{}, err
	}
	if f.transferErr != nil {
		return common.Hash{}, f.transferErr
	}
	hash := f.hash()
	f.submissions = append(f.submissions, submission{
		Kind:  "transfer",
		From:  from,
		To:    to,
		Value: value,
		Hash:  hash,
	})
	return hash, nil
}

func (f *fakeLedger) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &types.Receipt{TxHash: hash, Status: f.transferState}, nil
}

func (f *fakeLedger) Submissions() []submission {
	f.mu.Lock()
	defer f.mu.Unlock()

	submissions := make([]submission, len(f.submissions))
	copy(submissions, f.submissions)
	return submissions
}

// setProposals sets the replies of the proposal reads
func (f *fakeLedger) setProposals(names ...string) {
	f.values["getProposalsCount"] = []interface{}{big.NewInt(int64(len(names)))}
	for i, name := range names {
		var encoded [32]byte
		copy(encoded[:], name)
		f.values["getProposal"+big.NewInt(int64(i)).String()] = []interface{}{encoded, big.NewInt(int64(i))}
	}
	var winner [32]byte
	copy(winner[:], names[len(names)-1])
	f.values["winnerName"] = []interface{}{winner}
	f.values["getVoter"] = []interface{}{big.NewInt(1), false, common.Address{}, big.NewInt(0)}
}

// counter records the counted outcomes
type counter struct {
	mu        sync.Mutex
	grants    []string
	snapshots []bool
}

func (c *counter) CountGrant(state string) {
	c.mu.Lock()
	c.grants = append(c.grants, state)
	c.mu.Unlock()
}

func (c *counter) CountSnapshot(failed bool) {
	c.mu.Lock()
	c.snapshots = append(c.snapshots, failed)
	c.mu.Unlock()
}
