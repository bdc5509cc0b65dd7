package ledger

import (
	"bytes"
	"sort"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RolePartner Role = "partner"
)

// ACL is a role based address set. It is not safe for concurrent use.
type ACL struct {
	members map[Role]map[common.Address]struct{}
}

func NewACL(admin common.Address) *ACL {
	acl := &ACL{members: make(map[Role]map[common.Address]struct{})}
	if admin != (common.Address{}) {
		acl.set(RoleAdmin, admin)
	}
	return acl
}

func (a *ACL) set(role Role, addr common.Address) {
	if a.members[role] == nil {
		a.members[role] = make(map[common.Address]struct{})
	}
	a.members[role][addr] = struct{}{}
}

func (a *ACL) Has(role Role, addr common.Address) bool {
	_, ok := a.members[role][addr]
	return ok
}

// Require returns ErrUnauthorized unless addr holds at least one of the roles.
func (a *ACL) Require(addr common.Address, roles ...Role) error {
	for _, role := range roles {
		if a.Has(role, addr) {
			return nil
		}
	}
	return errorsmod.Wrapf(ErrUnauthorized, "%s lacks role %v", addr.Hex(), roles)
}

func (a *ACL) Grant(role Role, addr common.Address) error {
	if addr == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidAddress, "zero address")
	}
	if a.Has(role, addr) {
		return errorsmod.Wrapf(ErrAlreadyExists, "%s already has role %s", addr.Hex(), role)
	}
	a.set(role, addr)
	return nil
}

func (a *ACL) Revoke(role Role, addr common.Address) error {
	if !a.Has(role, addr) {
		return errorsmod.Wrapf(ErrNotFound, "%s does not have role %s", addr.Hex(), role)
	}
	delete(a.members[role], addr)
	return nil
}

func (a *ACL) Count(role Role) int {
	return len(a.members[role])
}

// Members returns the holders of role sorted by address bytes.
func (a *ACL) Members(role Role) []common.Address {
	out := make([]common.Address, 0, len(a.members[role]))
	for addr := range a.members[role] {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0
	})
	return out
}

// ACLState is the exported form of an ACL.
type ACLState map[Role][]common.Address

func (a *ACL) Export() ACLState {
	state := make(ACLState, len(a.members))
	for role := range a.members {
		state[role] = a.Members(role)
	}
	return state
}

func ImportACL(state ACLState) *ACL {
	acl := &ACL{members: make(map[Role]map[common.Address]struct{})}
	for role, addrs := range state {
		for _, addr := range addrs {
			acl.set(role, addr)
		}
	}
	return acl
}
