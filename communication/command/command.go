// Package command defines the request commands that the controller accepts.
// Besides the commands, this package also defines the HandleFunc.
//
// The HandleFunc is the function that executes the command and then returns the result
// to the caller.
package command

import (
	"fmt"
	"reflect"

	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/blocklords/ballot/communication/message"

	zmq "github.com/pebbe/zmq4"
)

// Name is the string
// It's included in the message.Request when the user requests the controller
type Name string

// String representation of the command name
func (command Name) String() string {
	return string(command)
}

// New Converts the given string to the command name
func New(value string) Name {
	return Name(value)
}

// Request the command from the controller with the
// given request parameters via the REQ socket.
//
// The parameters of the reply are assigned to the reply.
// The reply should be passed by pointer.
//
// Example:
//
//	var snapshot ballot.Snapshot
//	err := command.New("snapshot").Request(socket, key_value.Empty(), &snapshot)
func (command Name) Request(socket *zmq.Socket, request interface{}, reply interface{}) error {
	if _, ok := request.(message.Request); ok {
		return fmt.Errorf("the request can not be of message.Request type")
	}
	if _, ok := reply.(message.Reply); ok {
		return fmt.Errorf("the reply can not be of message.Reply type")
	}
	if reply == nil || reflect.TypeOf(reply).Kind() != reflect.Pointer {
		return fmt.Errorf("the reply is not passed by pointer")
	}

	requestParameters, err := key_value.NewFromInterface(request)
	if err != nil {
		return fmt.Errorf("convert parameters to: %w", err)
	}

	requestMessage := message.Request{
		Command:    command.String(),
		Parameters: requestParameters,
	}
	requestMessage.SetUuid()

	requestString, err := requestMessage.String()
	if err != nil {
		return fmt.Errorf("requestMessage.String: %w", err)
	}
	if _, err := socket.SendMessage(requestString); err != nil {
		return fmt.Errorf("socket.SendMessage: %w", err)
	}

	raw, err := socket.RecvMessage(0)
	if err != nil {
		return fmt.Errorf("socket.RecvMessage: %w", err)
	}
	replyMessage, err := message.ParseReply(raw)
	if err != nil {
		return fmt.Errorf("message.ParseReply: %w", err)
	}
	if !replyMessage.IsOK() {
		return fmt.Errorf("%s command failed: %s", command, replyMessage.Message)
	}

	if err := replyMessage.Parameters.Interface(reply); err != nil {
		return fmt.Errorf("reply.Parameters.Interface: %w", err)
	}

	return nil
}

// Reply creates a successful message.Reply with the given reply parameters.
func Reply(reply interface{}) (message.Reply, error) {
	replyParameters, err := key_value.NewFromInterface(reply)
	if err != nil {
		return message.Reply{}, fmt.Errorf("failed to encode reply: %w", err)
	}

	return message.Reply{
		Status:     message.OK,
		Message:    "",
		Parameters: replyParameters,
	}, nil
}
