package smartcontract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/blocklords/ballot/blockchain/evm/abi"
	"github.com/ethereum/go-ethereum/common/compiler"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is the compiled contract: the interface and the creation bytecode.
// It's not changed after the compilation.
type Artifact struct {
	Name     string
	Abi      *abi.Abi
	Bytecode []byte
}

// Compile the solidity source file with the solc binary.
//
// If the source has more than one contract, then name is required.
// Any failure is returned as ErrCompilation.
func Compile(ctx context.Context, solc string, sourcePath string, name string) (*Artifact, error) {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: os.ReadFile: %w", ErrCompilation, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, solc, "--combined-json", "abi,bin", sourcePath)
	cmd.Stderr = &stderr
	combined, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w: %s", ErrCompilation, solc, err, strings.TrimSpace(stderr.String()))
	}

	return ParseCombined(combined, string(source), name)
}

// ParseCombined converts the solc --combined-json output into the artifact.
func ParseCombined(combined []byte, source string, name string) (*Artifact, error) {
	compiled, err := compiler.ParseCombinedJSON(combined, source, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("%w: compiler.ParseCombinedJSON: %w", ErrCompilation, err)
	}

	id, err := pick(compiled, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilation, err)
	}
	contract := compiled[id]

	contractAbi, err := abi.NewFromInterface(contract.Info.AbiDefinition)
	if err != nil {
		return nil, fmt.Errorf("%w: abi of %s: %w", ErrCompilation, id, err)
	}

	bytecode, err := hexutil.Decode(contract.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: bytecode of %s: %w", ErrCompilation, id, err)
	}
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s has no bytecode, is it abstract?", ErrCompilation, id)
	}

	return &Artifact{
		Name:     id,
		Abi:      contractAbi,
		Bytecode: bytecode,
	}, nil
}

// pick the contract id ("<path>:<name>") from the compiled contracts.
func pick(compiled map[string]*compiler.Contract, name string) (string, error) {
	if len(compiled) == 0 {
		return "", fmt.Errorf("no contracts in the source")
	}

	ids := make([]string, 0, len(compiled))
	for id := range compiled {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(name) == 0 {
		if len(ids) > 1 {
			return "", fmt.Errorf("the source has %d contracts %v, set the contract name", len(ids), ids)
		}
		return ids[0], nil
	}

	for _, id := range ids {
		if id == name || strings.HasSuffix(id, ":"+name) {
			return id, nil
		}
	}

	return "", fmt.Errorf("contract %s not found in %v", name, ids)
}
