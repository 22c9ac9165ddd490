package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_Stripped(t *testing.T) {
	u := &User{ID: "1", UUID: "u-1", PasswordHash: []byte("hash"), FriendIDs: []string{"2"}, Roles: []string{"admin"}}

	s := u.Stripped()

	assert.Nil(t, s.PasswordHash)
	assert.Equal(t, []string{"2"}, s.FriendIDs)
	assert.Equal(t, []byte("hash"), u.PasswordHash, "original must stay intact")

	s.FriendIDs[0] = "x"
	assert.Equal(t, "2", u.FriendIDs[0], "friend list must be copied")

	var nilUser *User
	assert.Nil(t, nilUser.Stripped())
}

func TestUser_Public(t *testing.T) {
	u := &User{ID: "1", PasswordHash: []byte("hash"), FriendIDs: []string{"2"}}
	p := u.Public()
	assert.Nil(t, p.PasswordHash)
	assert.Nil(t, p.FriendIDs)
}

func TestUser_HasAnyRole(t *testing.T) {
	u := &User{Roles: []string{"member", "analyst"}}
	assert.True(t, u.HasAnyRole("admin", "analyst"))
	assert.False(t, u.HasAnyRole("admin"))
	assert.False(t, u.HasAnyRole())
}

func TestEdge_Connects(t *testing.T) {
	e := &Edge{User1ID: "a", User2ID: "b"}
	assert.True(t, e.Connects("a", "b"))
	assert.True(t, e.Connects("b", "a"))
	assert.False(t, e.Connects("a", "c"))
}
