package model

import (
	"slices"

	"github.com/lib/pq"
)

type AccountRole string

var (
	RoleAdmin AccountRole = "ADMIN"
	RoleUser  AccountRole = "USER"
)

type Account struct {
	ID       int            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email    string         `gorm:"column:email;uniqueIndex" json:"email"`
	Password string         `gorm:"column:password" json:"-"`
	Roles    pq.StringArray `gorm:"column:roles;type:text[]" json:"roles"`
}

func (m *Account) TableName() string {
	return "accounts"
}

func (m *Account) HasRole(role AccountRole) bool {
	return slices.Contains(m.Roles, string(role))
}

// RoleNames returns the account roles as granted authorities (ROLE_ prefixed).
func (m *Account) RoleNames() []string {
	names := make([]string, 0, len(m.Roles))
	for _, r := range m.Roles {
		names = append(names, "ROLE_"+r)
	}
	return names
}
