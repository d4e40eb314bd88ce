package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_CodeExpired(t *testing.T) {
	expiry := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	u := &User{VerifyCodeExpiry: expiry}

	assert.False(t, u.CodeExpired(expiry.Add(-time.Minute)))
	assert.False(t, u.CodeExpired(expiry), "code is still valid at the exact expiry instant")
	assert.True(t, u.CodeExpired(expiry.Add(time.Nanosecond)))
}

func TestUser_PublicHidesSecrets(t *testing.T) {
	u := &User{
		ID:                  "id-1",
		Username:            "alice",
		Email:               "a@x.com",
		PasswordHash:        "hash",
		VerifyCode:          "123456",
		IsVerified:          true,
		IsAcceptingMessages: true,
	}

	pub := u.Public()
	assert.Equal(t, "alice", pub.Username)
	assert.Equal(t, "a@x.com", pub.Email)

	p := PrincipalOf(u)
	assert.Equal(t, Principal{ID: "id-1", Username: "alice", IsVerified: true, IsAcceptingMessages: true}, p)
}
