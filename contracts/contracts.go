// Package contracts keeps the source of the ballot contract and its interface.
//
// The source is compiled during the start of the service.
// The interface is kept for the clients that don't compile the contract.
package contracts

import (
	_ "embed"
)

// BallotSourcePath relative to the repository root
const BallotSourcePath = "contracts/Ballot.sol"

// BallotName is the contract name in Ballot.sol
const BallotName = "Ballot"

//go:embed Ballot.sol
var BallotSource []byte

//go:embed Ballot.abi.json
var BallotAbi []byte
