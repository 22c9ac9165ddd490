// Package models holds the server-side domain records shared by services and
// repositories.
package models

import (
	"slices"
	"time"
)

// User is a registered member of the friendship graph.
//
// ID is the store-assigned internal identifier and never leaves the server;
// clients only ever see UUID. FriendIDs holds internal identifiers.
type User struct {
	ID            string
	UUID          string
	Name          string
	Email         string
	PasswordHash  []byte
	FriendIDs     []string
	Roles         []string
	Org           string
	EmailVerified bool
	CreatedAt     time.Time
}

// Stripped returns a copy of u without the password hash. Every user handed
// out of the auth layer goes through it.
func (u *User) Stripped() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = nil
	c.FriendIDs = slices.Clone(u.FriendIDs)
	c.Roles = slices.Clone(u.Roles)
	return &c
}

// Public returns a copy fit for listings: no password hash and no friend list.
func (u *User) Public() *User {
	c := u.Stripped()
	if c != nil {
		c.FriendIDs = nil
	}
	return c
}

// HasAnyRole reports whether u holds at least one of roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}
