// Package key_value defines the map used as the parameters of the requests,
// replies and default configurations.
package key_value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// KeyValue is identical to the golang map
type KeyValue map[string]interface{}

// New converts the map to the key-value data type
func New(keyValue map[string]interface{}) KeyValue {
	return KeyValue(keyValue)
}

// Empty key-value
func Empty() KeyValue {
	return KeyValue(map[string]interface{}{})
}

// NewFromString decodes the JSON string into the key-value.
// The numbers are kept as json.Number.
// Null values are not allowed.
func NewFromString(data string) (KeyValue, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(data)))
	decoder.UseNumber()

	var kv KeyValue
	if err := decoder.Decode(&kv); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}
	if err := kv.noNull(); err != nil {
		return nil, fmt.Errorf("noNull: %w", err)
	}

	return kv, nil
}

// NewFromInterface converts the structure with json tags into the key-value
func NewFromInterface(data interface{}) (KeyValue, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return NewFromString(string(raw))
}

func (k KeyValue) noNull() error {
	for name, value := range k {
		if value == nil {
			return fmt.Errorf("the '%s' parameter is null", name)
		}
		nested, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		if err := KeyValue(nested).noNull(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

// ToMap converts the key-value to the golang map
func (k KeyValue) ToMap() map[string]interface{} {
	return map[string]interface{}(k)
}

// Set the parameter. Returns itself for chaining.
func (k KeyValue) Set(name string, value interface{}) KeyValue {
	k[name] = value
	return k
}

// Exist returns true if the parameter is set
func (k KeyValue) Exist(name string) bool {
	_, ok := k[name]
	return ok
}

// Bytes serializes the key-value into JSON
func (k KeyValue) Bytes() ([]byte, error) {
	raw, err := json.Marshal(k)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return raw, nil
}

// String serializes the key-value into JSON string
func (k KeyValue) String() string {
	raw, err := k.Bytes()
	if err != nil {
		return ""
	}
	return string(raw)
}

// Interface converts the key-value into the structure passed by pointer
func (k KeyValue) Interface(out interface{}) error {
	raw, err := k.Bytes()
	if err != nil {
		return fmt.Errorf("k.Bytes: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return nil
}

// GetUint64 returns the parameter as an uint64
func (k KeyValue) GetUint64(name string) (uint64, error) {
	raw, exists := k[name]
	if !exists {
		return 0, errors.New("missing '" + name + "' parameter in the Request")
	}

	pureValue, ok := raw.(uint64)
	if ok {
		return pureValue, nil
	}
	value, ok := raw.(json.Number)
	if !ok {
		return 0, errors.New("parameter '" + name + "' expected to be as a number")
	}

	return strconv.ParseUint(string(value), 10, 64)
}

// GetBoolean returns the parameter as a boolean
func (k KeyValue) GetBoolean(name string) (bool, error) {
	raw, exists := k[name]
	if !exists {
		return false, errors.New("missing '" + name + "' parameter in the Request")
	}

	value, ok := raw.(bool)
	if !ok {
		return false, errors.New("the '" + name + "' is not in a boolean format")
	}

	return value, nil
}

// GetString returns the parameter as a string
func (k KeyValue) GetString(name string) (string, error) {
	raw, exists := k[name]
	if !exists {
		return "", errors.New("missing '" + name + "' parameter in the Request")
	}
	value, ok := raw.(string)
	if !ok {
		return "", errors.New("expected string type for '" + name + "' parameter")
	}

	return value, nil
}

// GetOptionalString returns the parameter as a string.
// Missing parameter is returned as an empty string.
func (k KeyValue) GetOptionalString(name string) (string, error) {
	if !k.Exist(name) {
		return "", nil
	}
	return k.GetString(name)
}
