// Package abi is the wrapper over the go-ethereum abi.
// It keeps the raw interface along with the parsed one,
// so that the interface could be passed to the clients as is.
package abi

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Abi is the smartcontract interface
type Abi struct {
	raw      []byte
	geth_abi abi.ABI
}

// New abi from the JSON interface description
func New(raw []byte) (*Abi, error) {
	abiObj := Abi{raw: raw}

	if err := json.Unmarshal(raw, &abiObj.geth_abi); err != nil {
		return nil, fmt.Errorf("failed to decompose abi to geth abi: %w", err)
	}

	return &abiObj, nil
}

// NewFromInterface converts the decoded JSON (as returned by the compiler) into the Abi
func NewFromInterface(definition interface{}) (*Abi, error) {
	raw, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return New(raw)
}

// Bytes returns the JSON interface description
func (a *Abi) Bytes() []byte {
	return a.raw
}

// MarshalJSON returns the interface as is
func (a *Abi) MarshalJSON() ([]byte, error) {
	return a.raw, nil
}

// UnmarshalJSON parses the interface description
func (a *Abi) UnmarshalJSON(data []byte) error {
	raw := make([]byte, len(data))
	copy(raw, data)

	parsed, err := New(raw)
	if err != nil {
		return err
	}
	*a = *parsed

	return nil
}

// Returns an abi.Method from geth
func (a *Abi) GetMethod(method string) (*abi.Method, error) {
	m, ok := a.geth_abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %s not found in abi", method)
	}

	return &m, nil
}

// Pack the method call
func (a *Abi) Pack(method string, args ...interface{}) ([]byte, error) {
	if _, err := a.GetMethod(method); err != nil {
		return nil, err
	}

	data, err := a.geth_abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("geth_abi.Pack(%s): %w", method, err)
	}

	return data, nil
}

// PackConstructor packs the constructor arguments.
// The result is appended to the bytecode during deployment.
func (a *Abi) PackConstructor(args ...interface{}) ([]byte, error) {
	data, err := a.geth_abi.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("geth_abi.Pack(constructor): %w", err)
	}

	return data, nil
}

// UnpackConstructor decodes the packed constructor arguments
func (a *Abi) UnpackConstructor(data []byte) ([]interface{}, error) {
	values, err := a.geth_abi.Constructor.Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("constructor.Inputs.Unpack: %w", err)
	}

	return values, nil
}

// Unpack the returned data of the method
func (a *Abi) Unpack(method string, data []byte) ([]interface{}, error) {
	if _, err := a.GetMethod(method); err != nil {
		return nil, err
	}

	values, err := a.geth_abi.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("geth_abi.Unpack(%s): %w", method, err)
	}

	return values, nil
}

// PackOutput encodes the return values of the method.
func (a *Abi) PackOutput(method string, values ...interface{}) ([]byte, error) {
	m, err := a.GetMethod(method)
	if err != nil {
		return nil, err
	}

	data, err := m.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("outputs.Pack(%s): %w", method, err)
	}

	return data, nil
}

// DecodeInput returns the method name and the arguments of the transaction data.
func (a *Abi) DecodeInput(data []byte) (string, []interface{}, error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("transaction data is shorter than the method signature")
	}

	// recover Method from signature and ABI
	method, err := a.geth_abi.MethodById(data[:4])
	if err != nil {
		return "", nil, fmt.Errorf("failed to find a method by its signature. geth package error: %w", err)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return method.Name, nil, fmt.Errorf("failed to parse method input parameters. the geth package error: %w", err)
	}

	return method.Name, args, nil
}
