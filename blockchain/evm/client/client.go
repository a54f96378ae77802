// Package client is the EVM ledger client.
// Any reply from the ledger is validated.
// Then the reply is converted into the go-ethereum data types.
//
// The client is shared by the whole process.
// The transactions from the same account are submitted one by one,
// leaving the nonce management to the node.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/blocklords/ballot/blockchain/network"
	"github.com/blocklords/ballot/log"

	"github.com/ethereum/go-ethereum"
	eth_common "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	eth_types "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	AttemptDelay   = time.Second
	ReceiptTimeout = 30 * time.Second
)

var (
	// ErrUnreachable is returned when the ledger doesn't reply to the connectivity check
	ErrUnreachable = errors.New("ledger unreachable")
	// ErrTimeout is returned when the transaction was not mined in the given time
	ErrTimeout = errors.New("timeout waiting for the transaction receipt")
)

// Transaction to submit to the ledger.
// The node signs it with the unlocked From account.
// If To is nil, then the transaction deploys a contract.
type Transaction struct {
	From  eth_common.Address
	To    *eth_common.Address
	Value *big.Int
	Data  []byte
}

type sendArgs struct {
	From  eth_common.Address  `json:"from"`
	To    *eth_common.Address `json:"to,omitempty"`
	Value *hexutil.Big        `json:"value,omitempty"`
	Data  hexutil.Bytes       `json:"data,omitempty"`
}

type Client struct {
	rpc     *rpc.Client
	client  *ethclient.Client
	chainId *big.Int
	Network *network.Network
	logger  *log.Logger

	receiptTimeout time.Duration
	attemptDelay   time.Duration

	mu      sync.Mutex
	senders map[eth_common.Address]*sync.Mutex
}

// New creates the client connected to the first provider of the network.
// The connection is verified by requesting the chain id.
// If the ledger doesn't reply, then returns ErrUnreachable.
func New(ctx context.Context, network *network.Network, parent *log.Logger) (*Client, error) {
	providerUrl, err := network.GetFirstProviderUrl()
	if err != nil {
		return nil, fmt.Errorf("network.GetFirstProviderUrl: %w", err)
	}
	logger := parent.Child("client", "network_id", network.Id)

	rpcClient, err := rpc.DialContext(ctx, providerUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: rpc.DialContext(%s): %w", ErrUnreachable, providerUrl, err)
	}
	client := ethclient.NewClient(rpcClient)

	chainId, err := client.ChainID(ctx)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("%w: chain id from %s: %w", ErrUnreachable, providerUrl, err)
	}
	logger.Info("connected to the ledger", "url", providerUrl, "chain_id", chainId)

	return &Client{
		rpc:            rpcClient,
		client:         client,
		chainId:        chainId,
		Network:        network,
		logger:         logger,
		receiptTimeout: ReceiptTimeout,
		attemptDelay:   AttemptDelay,
		senders:        make(map[eth_common.Address]*sync.Mutex),
	}, nil
}

// SetReceiptWait sets how long to wait for the transaction to be mined,
// and the delay between the receipt requests.
func (c *Client) SetReceiptWait(timeout time.Duration, delay time.Duration) {
	if timeout > 0 {
		c.receiptTimeout = timeout
	}
	if delay > 0 {
		c.attemptDelay = delay
	}
}

// Close the connection
func (c *Client) Close() {
	c.rpc.Close()
}

// ChainId returns the chain id received during the connection
func (c *Client) ChainId() *big.Int {
	return new(big.Int).Set(c.chainId)
}

//////////////////////////////////////////////////////////
//
// Ledger related functions
//
/////////////////////////////////////////////////////////

// Accounts returns the accounts managed by the node
func (c *Client) Accounts(ctx context.Context) ([]eth_common.Address, error) {
	var accounts []eth_common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}

	return accounts, nil
}

// Returns the most recent block number from ledger
func (c *Client) GetRecentBlockNumber(ctx context.Context) (uint64, error) {
	blockNumber, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("provider block number: %w", err)
	}

	return blockNumber, nil
}

// Call executes the read only contract method against the latest state.
func (c *Client) Call(ctx context.Context, from eth_common.Address, to eth_common.Address, data []byte) ([]byte, error) {
	msg := ethereum.CallMsg{
		From: from,
		To:   &to,
		Data: data,
	}

	result, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("client.CallContract: %w", err)
	}

	return result, nil
}

func (c *Client) sender(from eth_common.Address) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	mu, ok := c.senders[from]
	if !ok {
		mu = &sync.Mutex{}
		c.senders[from] = mu
	}
	return mu
}

// SendTransaction submits the transaction to the ledger.
// Returns when the ledger accepted it, without waiting for mining.
//
// The submissions from the same account are serialized.
func (c *Client) SendTransaction(ctx context.Context, tx Transaction) (eth_common.Hash, error) {
	args := sendArgs{
		From: tx.From,
		To:   tx.To,
		Data: tx.Data,
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(tx.Value)
	}

	mu := c.sender(tx.From)
	mu.Lock()
	defer mu.Unlock()

	var hash eth_common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return eth_common.Hash{}, fmt.Errorf("eth_sendTransaction from %s: %w", tx.From.Hex(), err)
	}
	c.logger.Debug("transaction submitted", "hash", hash.Hex(), "from", tx.From.Hex(), "to", tx.To)

	return hash, nil
}

// Transfer the native currency
func (c *Client) Transfer(ctx context.Context, from eth_common.Address, to eth_common.Address, value *big.Int) (eth_common.Hash, error) {
	return c.SendTransaction(ctx, Transaction{
		From:  from,
		To:    &to,
		Value: value,
	})
}

// TransactionReceipt returns the receipt of the mined transaction.
// If the transaction is not mined yet, then returns ethereum.NotFound.
func (c *Client) TransactionReceipt(ctx context.Context, hash eth_common.Hash) (*eth_types.Receipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("client.TransactionReceipt(%s): %w", hash.Hex(), err)
	}

	return receipt, nil
}

// WaitMined polls the receipt until the transaction is mined.
// The wait is bounded by the receipt timeout. On expiration returns ErrTimeout.
//
// The reverted transactions are returned too. Check the receipt status.
func (c *Client) WaitMined(ctx context.Context, hash eth_common.Hash) (*eth_types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(c.attemptDelay)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			c.logger.Warn("client.TransactionReceipt, retrying", "hash", hash.Hex(), "message", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, hash.Hex(), c.receiptTimeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
