package ballot

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/blocklords/ballot/blockchain/evm/client"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
)

type GrantState string

const (
	Unauthorized  GrantState = "unauthorized"
	MissingTarget GrantState = "missing-target"
	InvalidTarget GrantState = "invalid-target"
	Completed     GrantState = "completed"
	// Failed means the voting right was not granted. Nothing was transferred.
	Failed GrantState = "failed"
	// TransferFailed means the voting right was granted but the transfer failed.
	TransferFailed GrantState = "transfer-failed"
	// Timeout means one of the transactions was not mined in time.
	// The transaction may still be mined later.
	Timeout GrantState = "timeout"
)

// GrantRequest as it's received from the user.
// Target is the account that receives the voting right.
// Caller is the account that claims to be the administrator.
type GrantRequest struct {
	Target string `json:"give_address"`
	Caller string `json:"my_address"`
}

// GrantOutcome is the result of GrantVotingRight.
// If the state is not Completed, then Err keeps the cause, if there was any.
type GrantOutcome struct {
	State      GrantState   `json:"state"`
	Target     string       `json:"target,omitempty"`
	RightTx    *common.Hash `json:"right_transaction,omitempty"`
	TransferTx *common.Hash `json:"transfer_transaction,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	Err        error        `json:"-"`
}

// TransferAmount is sent to the account along with the voting right: one ether.
func TransferAmount() *big.Int {
	return big.NewInt(params.Ether)
}

func (outcome GrantOutcome) fail(state GrantState, err error) GrantOutcome {
	outcome.State = state
	outcome.Err = err
	outcome.Reason = err.Error()
	return outcome
}

// waitState returns the Timeout if the transaction was not mined in time,
// otherwise returns the given state.
func waitState(err error, state GrantState) GrantState {
	if errors.Is(err, client.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return state
}

// GrantVotingRight gives the voting right to the target account
// and then transfers one ether from the administrator to it.
//
// Only the administrator can grant the right.
// The unauthorized request or the request without a target submits nothing.
//
// With the ChainConfirmed policy the transfer is submitted only if
// the voting right transaction was mined successfully.
//
// The ctx cancels the grant only until the voting right is submitted.
func (c *Core) GrantVotingRight(ctx context.Context, request GrantRequest) GrantOutcome {
	outcome := c.grant(ctx, request)
	c.counter.CountGrant(string(outcome.State))

	switch outcome.State {
	case Completed:
		c.logger.Info("voting right granted", "target", outcome.Target, "right_tx", outcome.RightTx.Hex(), "transfer_tx", outcome.TransferTx.Hex())
	case Unauthorized, MissingTarget, InvalidTarget:
		c.logger.Warn("voting right rejected", "state", outcome.State, "caller", request.Caller, "target", request.Target)
	case Timeout:
		c.logger.Warn("voting right not mined in time", "target", outcome.Target, "error", outcome.Err)
	default:
		c.logger.Error("voting right failed", "state", outcome.State, "target", outcome.Target, "error", outcome.Err)
	}

	return outcome
}

func (c *Core) grant(ctx context.Context, request GrantRequest) GrantOutcome {
	caller := strings.TrimSpace(request.Caller)
	target := strings.TrimSpace(request.Target)

	if !c.admin.Is(caller) {
		return GrantOutcome{State: Unauthorized}
	}
	if len(target) == 0 {
		return GrantOutcome{State: MissingTarget}
	}
	if !common.IsHexAddress(target) || common.HexToAddress(target) == (common.Address{}) {
		return GrantOutcome{Target: target}.fail(InvalidTarget, fmt.Errorf("'%s' is not an account address", target))
	}
	targetAddress := common.HexToAddress(target)
	outcome := GrantOutcome{Target: targetAddress.Hex()}

	rightTx, err := c.contract.Write(ctx, c.admin.Address(), "giveRightToVote", targetAddress)
	if err != nil {
		return outcome.fail(Failed, fmt.Errorf("contract.Write: %w", err))
	}
	outcome.RightTx = &rightTx

	// The voting right is in the pool. The grant is finished even if the caller leaves,
	// the receipt waits are bounded by the ledger client.
	ctx = context.WithoutCancel(ctx)

	if c.policy.confirms() {
		if _, err := c.contract.Confirm(ctx, rightTx); err != nil {
			return outcome.fail(waitState(err, Failed), fmt.Errorf("contract.Confirm: %w", err))
		}
	}

	transferTx, err := c.ledger.Transfer(ctx, c.admin.Address(), targetAddress, TransferAmount())
	if err != nil {
		return outcome.fail(TransferFailed, fmt.Errorf("ledger.Transfer: %w", err))
	}
	outcome.TransferTx = &transferTx

	if c.policy.confirms() {
		receipt, err := c.ledger.WaitMined(ctx, transferTx)
		if err != nil {
			return outcome.fail(waitState(err, TransferFailed), fmt.Errorf("ledger.WaitMined: %w", err))
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return outcome.fail(TransferFailed, fmt.Errorf("transfer %s reverted", transferTx.Hex()))
		}
	}

	outcome.State = Completed
	return outcome
}

// Description of the outcome for the user
func (outcome GrantOutcome) Description() string {
	switch outcome.State {
	case Completed:
		return "the voting right granted and one ether transferred"
	case Unauthorized:
		return "unauthorized: only the administrator grants the voting right"
	case MissingTarget:
		return "missing-target: set the account to give the voting right to"
	}
	if len(outcome.Reason) > 0 {
		return string(outcome.State) + ": " + outcome.Reason
	}
	return string(outcome.State)
}
