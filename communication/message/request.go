// Package message defines the request and the reply exchanged with the controller.
// Both are JSON objects sent as the zeromq messages.
package message

import (
	"fmt"

	"github.com/blocklords/ballot/common/data_type/key_value"
	"github.com/google/uuid"
)

// Request message sent by the client socket and accepted by the controller socket.
type Request struct {
	Uuid       string             `json:"uuid,omitempty"`
	Command    string             `json:"command"`
	Parameters key_value.KeyValue `json:"parameters"`
}

// SetUuid generates the id of the request.
// The id is returned in the reply to match them.
func (request *Request) SetUuid() {
	request.Uuid = uuid.NewString()
}

func (request *Request) validCommand() error {
	if len(request.Command) == 0 {
		return fmt.Errorf("command is missing")
	}
	if request.Parameters == nil {
		return fmt.Errorf("parameters are missing")
	}

	return nil
}

// Bytes converts the message to the sequence of bytes
func (request *Request) Bytes() ([]byte, error) {
	err := request.validCommand()
	if err != nil {
		return nil, fmt.Errorf("failed to validate command: %w", err)
	}

	kv, err := key_value.NewFromInterface(request)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize Request to key-value %v: %v", request, err)
	}

	bytes, err := kv.Bytes()
	if err != nil {
		return nil, fmt.Errorf("kv.Bytes: %w", err)
	}

	return bytes, nil
}

// String the message
func (request *Request) String() (string, error) {
	bytes, err := request.Bytes()
	if err != nil {
		return "", fmt.Errorf("request.Bytes: %w", err)
	}

	return string(bytes), nil
}

// Ok creates the successful reply for the request
func (request *Request) Ok(parameters key_value.KeyValue) Reply {
	return Reply{
		Uuid:       request.Uuid,
		Status:     OK,
		Parameters: parameters,
	}
}

// Fail creates the failure reply for the request
func (request *Request) Fail(message string) Reply {
	reply := Fail(message)
	reply.Uuid = request.Uuid
	return reply
}

// ToString into the single string the array of zeromq messages
func ToString(messages []string) string {
	msg := ""
	for _, v := range messages {
		msg += v
	}
	return msg
}

// ParseRequest from the zeromq messages
func ParseRequest(messages []string) (Request, error) {
	msg := ToString(messages)

	data, err := key_value.NewFromString(msg)
	if err != nil {
		return Request{}, fmt.Errorf("failed to convert message string %s to key-value: %v", msg, err)
	}

	var request Request
	err = data.Interface(&request)
	if err != nil {
		return Request{}, fmt.Errorf("failed to convert key-value %v to intermediate interface: %v", data, err)
	}

	// verify that data is not nil
	_, err = request.Bytes()
	if err != nil {
		return Request{}, fmt.Errorf("failed to validate: %w", err)
	}

	return request, nil
}
