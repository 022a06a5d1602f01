package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundtrip(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", digest)

	assert.True(t, hasher.Verify("s3cret-password", digest))
	assert.False(t, hasher.Verify("wrong-password", digest))
}

func TestBcryptHasherMalformedDigest(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	assert.False(t, hasher.Verify("anything", "not-a-bcrypt-digest"))
	assert.False(t, hasher.Verify("anything", ""))
}

func TestBcryptHasherInvalidCostFallsBack(t *testing.T) {
	hasher := NewBcryptHasher(-1)

	digest, err := hasher.Hash("password")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("password", digest))
}
