package ballot

import (
	"github.com/ethereum/go-ethereum/common"
)

// Administrator is the account that deployed the contract.
// It's the only account allowed to grant the voting rights.
//
// The caller proves nothing: the address given in the request
// is compared with the administrator's address.
// There is no signature check and no replay protection.
type Administrator struct {
	address common.Address
}

func NewAdministrator(address common.Address) Administrator {
	return Administrator{address: address}
}

// Address of the administrator
func (a Administrator) Address() common.Address {
	return a.address
}

// Hex returns the address in the checksum format
func (a Administrator) Hex() string {
	return a.address.Hex()
}

// Is returns true if the caller is the administrator
func (a Administrator) Is(caller string) bool {
	return Authorized(a.address.Hex(), caller)
}

// Authorized returns true if the caller and the administrator are the same account.
// Both are normalized before comparison, the letter case of the hex is ignored.
// The empty or malformed address is never authorized.
func Authorized(admin string, caller string) bool {
	if !common.IsHexAddress(admin) || !common.IsHexAddress(caller) {
		return false
	}
	adminAddress := common.HexToAddress(admin)
	if adminAddress == (common.Address{}) {
		return false
	}

	return adminAddress == common.HexToAddress(caller)
}
