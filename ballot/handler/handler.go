// Package handler exposes the ballot operations as the controller commands.
package handler

import (
	"context"
	"fmt"

	"github.com/blocklords/ballot/ballot"
	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/communication/command"
	"github.com/blocklords/ballot/communication/message"
	"github.com/blocklords/ballot/log"
)

const (
	SnapshotCommand        command.Name = "snapshot"
	GiveRightToVoteCommand command.Name = "give-right-to-vote"
	DelegateCommand        command.Name = "delegate"
)

// Ballot is the core of the ballot
type Ballot interface {
	GrantVotingRight(ctx context.Context, request ballot.GrantRequest) ballot.GrantOutcome
	Delegate(delegateAddress string) ballot.DelegateView
	GetVotingSnapshot(ctx context.Context) (*ballot.Snapshot, error)
}

// DelegateRequest is the parameters of the delegate command
type DelegateRequest struct {
	DelegateAddress string `json:"delegate_address"`
}

// New returns the handlers of the ballot commands
func New(core Ballot) command.Handlers {
	return command.EmptyHandlers().
		Add(SnapshotCommand, snapshot(core)).
		Add(GiveRightToVoteCommand, giveRightToVote(core)).
		Add(DelegateCommand, delegate(core))
}

func snapshot(core Ballot) command.HandleFunc {
	return func(ctx context.Context, request message.Request, _ *log.Logger) message.Reply {
		result, err := core.GetVotingSnapshot(ctx)
		if err != nil {
			return request.Fail(fmt.Sprintf("core.GetVotingSnapshot: %v", err))
		}

		return reply(request, result)
	}
}

func giveRightToVote(core Ballot) command.HandleFunc {
	return func(ctx context.Context, request message.Request, _ *log.Logger) message.Reply {
		var grant ballot.GrantRequest
		if err := request.Parameters.Interface(&grant); err != nil {
			return request.Fail(fmt.Sprintf("request.Parameters.Interface: %v", err))
		}

		outcome := core.GrantVotingRight(ctx, grant)
		parameters, err := key_value.NewFromInterface(outcome)
		if err != nil {
			return request.Fail(fmt.Sprintf("key_value.NewFromInterface: %v", err))
		}
		if outcome.State == ballot.Completed {
			return request.Ok(parameters)
		}

		failure := request.Fail(outcome.Description())
		failure.Parameters = parameters
		return failure
	}
}

func delegate(core Ballot) command.HandleFunc {
	return func(_ context.Context, request message.Request, _ *log.Logger) message.Reply {
		var parameters DelegateRequest
		if err := request.Parameters.Interface(&parameters); err != nil {
			return request.Fail(fmt.Sprintf("request.Parameters.Interface: %v", err))
		}

		return reply(request, core.Delegate(parameters.DelegateAddress))
	}
}

func reply(request message.Request, result interface{}) message.Reply {
	parameters, err := key_value.NewFromInterface(result)
	if err != nil {
		return request.Fail(fmt.Sprintf("key_value.NewFromInterface: %v", err))
	}
	return request.Ok(parameters)
}
