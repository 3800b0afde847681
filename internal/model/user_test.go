package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionsForRole(t *testing.T) {
	dev := PermissionsForRole(RoleDeveloper)
	assert.True(t, dev.Has("companies"))
	assert.True(t, dev.Has("delete"))

	gm := PermissionsForRole(RoleGeneralManager)
	assert.True(t, gm.Has("delete"))
	assert.False(t, gm.Has("companies"))

	wm := PermissionsForRole(RoleWarehouseManager)
	assert.True(t, wm.Has("ska"))
	assert.False(t, wm.Has("delete"))

	seller := PermissionsForRole(RolePosSalesperson)
	assert.True(t, seller.HasAny("read", "ska"))
	assert.False(t, seller.HasAny("create", "update", "delete"))

	customer := PermissionsForRole(RoleCustomer)
	assert.True(t, customer.Has("cus"))
	assert.False(t, customer.HasAny("read", "ska"))
}

func TestPermissionsForUnknownRoleIsEmpty(t *testing.T) {
	set := PermissionsForRole("nonsense")
	assert.Empty(t, set.Tags())
	assert.False(t, set.HasAny("read", "create"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleSkater))
	assert.False(t, ValidRole("admin"))
}

func TestDraftItemQuantity(t *testing.T) {
	regular := DraftItem{}
	assert.Equal(t, 1, regular.Quantity())

	box := DraftItem{IsBox: true, Total2: 8}
	assert.Equal(t, 8, box.Quantity())
}
