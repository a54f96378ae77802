package smartcontract

import "errors"

var (
	// ErrCompilation is returned when the source could not be compiled into the artifact.
	ErrCompilation = errors.New("compilation failed")
	// ErrDeployment is returned when the contract was not created on the ledger.
	ErrDeployment = errors.New("deployment failed")
	// ErrContractCall is returned when the read only call failed or its reply could not be decoded.
	ErrContractCall = errors.New("contract call failed")
	// ErrContractTransaction is returned when the transaction was not accepted or reverted.
	ErrContractTransaction = errors.New("contract transaction failed")
	// ErrNameDecode is returned when the byte string is not a text.
	ErrNameDecode = errors.New("name is not a text")
)
