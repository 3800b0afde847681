package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles recognised by the permission table.
const (
	RoleDeveloper            = "developer"
	RoleGeneralManager       = "general_manager"
	RoleWarehouseManager     = "warehouse_manager"
	RoleWarehouseSalesperson = "warehouse_salesperson"
	RolePosSalesperson       = "pos_salesperson"
	RoleSkater               = "skater"
	RoleCustomer             = "customer"
)

// rolePermissions is the static role → permission-tag table. Tags are the
// action labels the handlers gate on ("ska" is the sale/price capability,
// "cus" the customer-facing read surface).
var rolePermissions = map[string][]string{
	RoleDeveloper:            {"create", "read", "update", "delete", "ska", "companies", "cus"},
	RoleGeneralManager:       {"create", "read", "update", "delete", "ska", "cus"},
	RoleWarehouseManager:     {"create", "read", "update", "ska", "customer"},
	RoleWarehouseSalesperson: {"read", "ska", "cus"},
	RolePosSalesperson:       {"read", "ska", "cus"},
	RoleSkater:               {"skater", "read", "cus"},
	RoleCustomer:             {"customer", "cus"},
}

// PermissionSet is a plain capability-set value. It is resolved once from a
// role and passed to whatever logic needs it; nothing holds a permission
// closure.
type PermissionSet map[string]bool

// PermissionsForRole returns the capability set of a role. Unknown roles get
// an empty set.
func PermissionsForRole(role string) PermissionSet {
	set := make(PermissionSet)
	for _, tag := range rolePermissions[role] {
		set[tag] = true
	}
	return set
}

// Has reports whether the set carries the given tag.
func (p PermissionSet) Has(tag string) bool { return p[tag] }

// HasAny reports whether the set carries at least one of the given tags.
func (p PermissionSet) HasAny(tags ...string) bool {
	for _, tag := range tags {
		if p[tag] {
			return true
		}
	}
	return false
}

// Tags returns the set as a sorted-insensitive slice for API responses.
func (p PermissionSet) Tags() []string {
	tags := make([]string, 0, len(p))
	for tag := range p {
		tags = append(tags, tag)
	}
	return tags
}

// ValidRole reports whether role exists in the permission table.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// User is a company staff account (or customer login).
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`
	Role      string         `gorm:"type:varchar(50);not null" json:"role"`
	ImageURL  string         `gorm:"type:text" json:"image_url"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
