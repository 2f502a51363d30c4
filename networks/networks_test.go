package networks

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCaseInsensitive(t *testing.T) {
	lower, err := Resolve("mainnet")
	require.NoError(t, err)

	upper, err := Resolve("MAINNET")
	require.NoError(t, err)

	mixed, err := Resolve("MainNet")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
	assert.Equal(t, lower, mixed)
	assert.Equal(t, int64(1), lower.ChainID)
}

func TestResolveUnknownNetwork(t *testing.T) {
	_, err := Resolve("unknown")
	require.Error(t, err)

	var unknownErr *UnknownNetworkError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "unknown", unknownErr.Name)
	assert.Contains(t, unknownErr.Available, "mainnet")
	assert.Contains(t, unknownErr.Available, "sepolia")
	assert.Contains(t, err.Error(), "mainnet")
}

func TestResolveContractAddresses(t *testing.T) {
	mainnet, err := Resolve("mainnet")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x8004A169FB4a3325136EB29fA0ceB6D2e539a432"), mainnet.Contracts.IdentityRegistry)
	assert.Equal(t, common.HexToAddress("0x8004BAa17C55a88189AE136b182e5fdA19dE9b63"), mainnet.Contracts.ReputationRegistry)

	sepolia, err := Resolve("sepolia")
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), sepolia.ChainID)
	assert.Equal(t, common.HexToAddress("0x8004A818BFB912233c491871b3d84c89A494BD9e"), sepolia.Contracts.IdentityRegistry)
}

// Every configured network must carry non-zero identity and reputation
// registry addresses.
func TestTableInvariant(t *testing.T) {
	for _, n := range All() {
		assert.NoError(t, n.validate(), "network %s", n.Name)
		assert.NotEmpty(t, n.RPC, "network %s", n.Name)
		assert.NotEmpty(t, n.Explorer, "network %s", n.Name)
	}
}

func TestNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"mainnet", "sepolia"}, Names())
}

func TestExplorerURLs(t *testing.T) {
	mainnet, err := Resolve("mainnet")
	require.NoError(t, err)

	assert.Equal(t,
		"https://etherscan.io/nft/0x8004A169FB4a3325136EB29fA0ceB6D2e539a432/7",
		mainnet.AgentExplorerURL("7"))
	assert.Equal(t, "https://etherscan.io/tx/0xabc", mainnet.TxExplorerURL("0xabc"))
}
