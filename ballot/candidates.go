package ballot

import (
	"fmt"

	"github.com/blocklords/ballot/smartcontract"
)

// Candidates are the proposals of the ballot. They are passed to the constructor.
var Candidates = []string{"Rama", "Niki", "Jose"}

// CandidateNames returns the candidates as the bytes32[] constructor argument
func CandidateNames() ([][32]byte, error) {
	names := make([][32]byte, len(Candidates))
	for i, candidate := range Candidates {
		name, err := smartcontract.EncodeName(candidate)
		if err != nil {
			return nil, fmt.Errorf("smartcontract.EncodeName: %w", err)
		}
		names[i] = name
	}

	return names, nil
}
