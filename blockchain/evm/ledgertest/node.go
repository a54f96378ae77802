// Package ledgertest runs an in-process ledger node that speaks the
// JSON-RPC methods used by the blockchain/evm/client.
//
// The node keeps the accounts unlocked the way a local development node does:
// eth_sendTransaction is accepted from any of its accounts.
// Contracts are plain go values registered by the Deployer.
package ledgertest

import (
	"errors"
	"fmt"
	"math/big"
	"net/http/httptest"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// Contract is the go implementation of the deployed smartcontract.
type Contract interface {
	// Call executes the read only method
	Call(from common.Address, input []byte) ([]byte, error)
	// Transact executes the state changing method.
	// Returning an error makes the transaction reverted.
	Transact(from common.Address, input []byte, value *big.Int) error
}

// Deployer creates the contract from the creation code (bytecode + constructor arguments)
type Deployer func(from common.Address, code []byte) (Contract, error)

// SentTransaction is the transaction accepted by the node
type SentTransaction struct {
	Hash  common.Hash
	From  common.Address
	To    *common.Address
	Value *big.Int
	Data  []byte
}

// SendArgs are the parameters of eth_sendTransaction
type SendArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
	Gas   *hexutil.Uint64 `json:"gas"`
}

// CallArgs are the parameters of eth_call
type CallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

func (args SendArgs) payload() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

func (args CallArgs) payload() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

// Node is the in-process ledger
type Node struct {
	server *rpc.Server
	http   *httptest.Server

	mu        sync.Mutex
	chainId   *big.Int
	accounts  []common.Address
	nonces    map[common.Address]uint64
	balances  map[common.Address]*big.Int
	contracts map[common.Address]Contract
	sent      []SentTransaction
	receipts  map[common.Hash]*types.Receipt
	held      bool
	deployer  Deployer
	sendError func(tx SentTransaction) error
}

// New starts the node with the given amount of unlocked accounts.
// Each account has 100 ether.
func New(accountAmount int) (*Node, error) {
	node := &Node{
		server:    rpc.NewServer(),
		chainId:   big.NewInt(1337),
		accounts:  make([]common.Address, accountAmount),
		nonces:    make(map[common.Address]uint64),
		balances:  make(map[common.Address]*big.Int),
		contracts: make(map[common.Address]Contract),
		sent:      make([]SentTransaction, 0),
		receipts:  make(map[common.Hash]*types.Receipt),
	}

	for i := range node.accounts {
		key := crypto.Keccak256([]byte(fmt.Sprintf("ledgertest account %d", i)))
		node.accounts[i] = common.BytesToAddress(key[12:])
		node.balances[node.accounts[i]] = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
	}

	if err := node.server.RegisterName("eth", &ethService{node: node}); err != nil {
		return nil, fmt.Errorf("server.RegisterName: %w", err)
	}
	node.http = httptest.NewServer(node.server)

	return node, nil
}

// Url of the node's http endpoint
func (node *Node) Url() string {
	return node.http.URL
}

// Close stops the http server and the rpc server
func (node *Node) Close() {
	node.http.Close()
	node.server.Stop()
}

// Accounts returns the unlocked accounts
func (node *Node) Accounts() []common.Address {
	node.mu.Lock()
	defer node.mu.Unlock()

	accounts := make([]common.Address, len(node.accounts))
	copy(accounts, node.accounts)
	return accounts
}

// SetDeployer sets the function that creates the contracts
func (node *Node) SetDeployer(deployer Deployer) {
	node.mu.Lock()
	node.deployer = deployer
	node.mu.Unlock()
}

// SetSendError makes the node reject the transactions for which fail returns an error.
// Passing nil accepts all transactions.
func (node *Node) SetSendError(fail func(tx SentTransaction) error) {
	node.mu.Lock()
	node.sendError = fail
	node.mu.Unlock()
}

// HoldReceipts makes the node keep the transactions pending.
// The receipts are not returned until HoldReceipts(false) is called.
func (node *Node) HoldReceipts(held bool) {
	node.mu.Lock()
	node.held = held
	node.mu.Unlock()
}

// Sent returns the accepted transactions in the order they were accepted.
func (node *Node) Sent() []SentTransaction {
	node.mu.Lock()
	defer node.mu.Unlock()

	sent := make([]SentTransaction, len(node.sent))
	copy(sent, node.sent)
	return sent
}

// Balance of the account
func (node *Node) Balance(account common.Address) *big.Int {
	node.mu.Lock()
	defer node.mu.Unlock()

	balance, ok := node.balances[account]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(balance)
}

func (node *Node) isAccount(address common.Address) bool {
	for _, account := range node.accounts {
		if account == address {
			return true
		}
	}
	return false
}

func (node *Node) send(args SendArgs) (common.Hash, error) {
	node.mu.Lock()
	defer node.mu.Unlock()

	if !node.isAccount(args.From) {
		return common.Hash{}, fmt.Errorf("sender account not recognized")
	}

	value := big.NewInt(0)
	if args.Value != nil {
		value = args.Value.ToInt()
	}

	nonce := node.nonces[args.From]
	node.nonces[args.From] = nonce + 1
	hash := crypto.Keccak256Hash(args.From.Bytes(), new(big.Int).SetUint64(nonce).Bytes())

	tx := SentTransaction{
		Hash:  hash,
		From:  args.From,
		To:    args.To,
		Value: value,
		Data:  args.payload(),
	}
	if node.sendError != nil {
		if err := node.sendError(tx); err != nil {
			return common.Hash{}, err
		}
	}
	if node.balances[args.From].Cmp(value) < 0 {
		return common.Hash{}, fmt.Errorf("sender doesn't have enough funds to send tx")
	}

	receipt := &types.Receipt{
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: 21000,
		Logs:              []*types.Log{},
		TxHash:            hash,
		GasUsed:           21000,
		BlockNumber:       big.NewInt(int64(len(node.sent) + 1)),
		BlockHash:         crypto.Keccak256Hash(hash.Bytes()),
	}

	if err := node.execute(tx, nonce, receipt); err != nil {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		node.balances[args.From] = new(big.Int).Sub(node.balances[args.From], value)
		if tx.To != nil {
			balance, ok := node.balances[*tx.To]
			if !ok {
				balance = big.NewInt(0)
			}
			node.balances[*tx.To] = new(big.Int).Add(balance, value)
		}
	}

	node.sent = append(node.sent, tx)
	node.receipts[hash] = receipt

	return hash, nil
}

func (node *Node) execute(tx SentTransaction, nonce uint64, receipt *types.Receipt) error {
	if tx.To == nil {
		if node.deployer == nil {
			return errors.New("no deployer")
		}
		contract, err := node.deployer(tx.From, tx.Data)
		if err != nil {
			return err
		}
		address := crypto.CreateAddress(tx.From, nonce)
		node.contracts[address] = contract
		receipt.ContractAddress = address
		return nil
	}

	contract, ok := node.contracts[*tx.To]
	if !ok {
		// plain transfer
		return nil
	}
	return contract.Transact(tx.From, tx.Data, tx.Value)
}

func (node *Node) receipt(hash common.Hash) *types.Receipt {
	node.mu.Lock()
	defer node.mu.Unlock()

	if node.held {
		return nil
	}
	return node.receipts[hash]
}

func (node *Node) call(args CallArgs) ([]byte, error) {
	node.mu.Lock()
	defer node.mu.Unlock()

	if args.To == nil {
		return nil, fmt.Errorf("missing 'to' in the call")
	}
	contract, ok := node.contracts[*args.To]
	if !ok {
		return []byte{}, nil
	}
	from := common.Address{}
	if args.From != nil {
		from = *args.From
	}

	return contract.Call(from, args.payload())
}

// ethService exposes the node as the "eth" namespace.
type ethService struct {
	node *Node
}

func (s *ethService) ChainId() *hexutil.Big {
	return (*hexutil.Big)(s.node.chainId)
}

func (s *ethService) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(len(s.node.Sent()))
}

func (s *ethService) Accounts() []common.Address {
	return s.node.Accounts()
}

func (s *ethService) SendTransaction(args SendArgs) (common.Hash, error) {
	return s.node.send(args)
}

func (s *ethService) GetTransactionReceipt(hash common.Hash) (*types.Receipt, error) {
	return s.node.receipt(hash), nil
}

func (s *ethService) Call(args CallArgs, block string) (hexutil.Bytes, error) {
	return s.node.call(args)
}
