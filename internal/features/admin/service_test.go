package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gigafarm.ru/mining-bot/internal/config"
)

func TestVerifyArgon2idRejectsMalformedHash(t *testing.T) {
	assert.False(t, verifyArgon2id("пароль", ""))
	assert.False(t, verifyArgon2id("пароль", "не-хеш"))
	assert.False(t, verifyArgon2id("пароль", "$argon2id$v=19$m=65536,t=3,p=2$соль"))
	assert.False(t, verifyArgon2id("пароль", "$argon2id$v=19$bad-params$c2FsdA$aGFzaA"))
	assert.False(t, verifyArgon2id("пароль", "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"))
}

func TestGenerateSecureToken(t *testing.T) {
	a := generateSecureToken()
	b := generateSecureToken()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestIsAdmin(t *testing.T) {
	s := NewService(nil, nil, nil, &config.Config{AdminIDs: []int64{10, 20}})
	assert.True(t, s.IsAdmin(10))
	assert.False(t, s.IsAdmin(30))
}
