package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractsNetworkPositionalOverridesFlag(t *testing.T) {
	network, err := contractsNetwork("mainnet", "sepolia")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", network.Name)
}

func TestContractsNetworkFallsBackToFlag(t *testing.T) {
	network, err := contractsNetwork("", "sepolia")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", network.Name)
}

func TestContractsNetworkUnknown(t *testing.T) {
	_, err := contractsNetwork("hoodi", "sepolia")
	assert.Error(t, err)
}

func TestFeedbackDecimals(t *testing.T) {
	decimals, err := feedbackDecimals(2)
	require.NoError(t, err)
	require.NotNil(t, decimals)
	assert.Equal(t, uint8(2), *decimals)

	decimals, err = feedbackDecimals(255)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), *decimals)

	_, err = feedbackDecimals(256)
	assert.Error(t, err)
}
