package phisec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashRefreshToken(t *testing.T) {
	hash := HashRefreshToken("some-opaque-token")

	assert.Len(t, hash, 64, "hex SHA-256")
	assert.Equal(t, hash, HashRefreshToken("some-opaque-token"), "hashing must be deterministic")
	assert.NotEqual(t, hash, HashRefreshToken("some-other-token"))
	assert.NotContains(t, hash, "some-opaque-token")
}
