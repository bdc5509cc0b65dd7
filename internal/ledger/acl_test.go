package ledger_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

func TestACLGrantRevoke(t *testing.T) {
	admin := common.HexToAddress("0x01")
	manager := common.HexToAddress("0x02")
	acl := ledger.NewACL(admin)

	assert.NoError(t, acl.Require(admin, ledger.RoleAdmin))
	assert.ErrorIs(t, acl.Require(manager, ledger.RoleAdmin, ledger.RoleManager), ledger.ErrUnauthorized)

	require.NoError(t, acl.Grant(ledger.RoleManager, manager))
	assert.ErrorIs(t, acl.Grant(ledger.RoleManager, manager), ledger.ErrAlreadyExists)
	assert.ErrorIs(t, acl.Grant(ledger.RoleManager, common.Address{}), ledger.ErrInvalidAddress)
	assert.NoError(t, acl.Require(manager, ledger.RoleAdmin, ledger.RoleManager))

	require.NoError(t, acl.Revoke(ledger.RoleManager, manager))
	assert.ErrorIs(t, acl.Revoke(ledger.RoleManager, manager), ledger.ErrNotFound)
	assert.Equal(t, 0, acl.Count(ledger.RoleManager))
}

func TestACLExportImport(t *testing.T) {
	acl := ledger.NewACL(common.HexToAddress("0x01"))
	require.NoError(t, acl.Grant(ledger.RolePartner, common.HexToAddress("0x03")))
	require.NoError(t, acl.Grant(ledger.RolePartner, common.HexToAddress("0x02")))

	restored := ledger.ImportACL(acl.Export())
	assert.Equal(t, []common.Address{common.HexToAddress("0x02"), common.HexToAddress("0x03")}, restored.Members(ledger.RolePartner))
	assert.True(t, restored.Has(ledger.RoleAdmin, common.HexToAddress("0x01")))
}
