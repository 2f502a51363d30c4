package registry

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	generated, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hex.EncodeToString(crypto.FromECDSA(generated))

	parsed, err := ParseKey(hexKey)
	require.NoError(t, err)
	assert.Equal(t, KeyAddress(generated), KeyAddress(parsed))

	// A 0x prefix is accepted.
	prefixed, err := ParseKey("0x" + hexKey)
	require.NoError(t, err)
	assert.Equal(t, KeyAddress(generated), KeyAddress(prefixed))
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	_, err := ParseKey("not a key")
	assert.Error(t, err)
	_, err = ParseKey("")
	assert.Error(t, err)
}
