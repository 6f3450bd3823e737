package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("wrong password", hash))
}

func TestHashIsSalted(t *testing.T) {
	h1, err := Hash("samepassword")
	require.NoError(t, err)
	h2, err := Hash("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashToken(t *testing.T) {
	h := HashToken("refresh-token-value")

	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("refresh-token-value"))
	assert.NotEqual(t, h, HashToken("other-token"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("12345678"))
	assert.ErrorIs(t, Validate("1234567"), ErrTooShort)
	assert.ErrorIs(t, Validate(""), ErrTooShort)
}
