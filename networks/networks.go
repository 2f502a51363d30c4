// Package networks holds the static ERC-8004 deployment table: chain ids,
// default RPC endpoints, explorer bases and registry contract addresses for
// every supported network. The table is immutable after process start.
package networks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Contracts lists the registry contract addresses deployed on a network.
// The validation registry is the zero address on networks where it has not
// been deployed yet.
type Contracts struct {
	IdentityRegistry   common.Address `json:"identity_registry"`
	ReputationRegistry common.Address `json:"reputation_registry"`
	ValidationRegistry common.Address `json:"validation_registry"`
}

// Network describes one supported deployment.
type Network struct {
	ChainID     int64     `json:"chain_id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	RPC         string    `json:"rpc"`
	Explorer    string    `json:"explorer"`
	Contracts   Contracts `json:"contracts"`
}

// UnknownNetworkError is returned by Resolve for a name with no entry in
// the deployment table.
type UnknownNetworkError struct {
	Name      string
	Available []string
}

func (e *UnknownNetworkError) Error() string {
	return fmt.Sprintf("unknown network: %s. Available: %s", e.Name, strings.Join(e.Available, ", "))
}

var table = map[string]Network{
	"mainnet": {
		ChainID:     1,
		Name:        "mainnet",
		DisplayName: "Ethereum Mainnet",
		RPC:         "https://eth.drpc.org",
		Explorer:    "https://etherscan.io",
		Contracts: Contracts{
			IdentityRegistry:   common.HexToAddress("0x8004A169FB4a3325136EB29fA0ceB6D2e539a432"),
			ReputationRegistry: common.HexToAddress("0x8004BAa17C55a88189AE136b182e5fdA19dE9b63"),
		},
	},
	"sepolia": {
		ChainID:     11155111,
		Name:        "sepolia",
		DisplayName: "Sepolia Testnet",
		RPC:         "https://ethereum-sepolia-rpc.publicnode.com",
		Explorer:    "https://sepolia.etherscan.io",
		Contracts: Contracts{
			IdentityRegistry:   common.HexToAddress("0x8004A818BFB912233c491871b3d84c89A494BD9e"),
			ReputationRegistry: common.HexToAddress("0x8004B663056A597Dffe9eCcC1965A193B7388713"),
		},
	},
}

// Resolve looks up a network by name, case-insensitively. It returns an
// *UnknownNetworkError listing the valid names when no entry matches.
func Resolve(name string) (Network, error) {
	n, ok := table[strings.ToLower(name)]
	if !ok {
		return Network{}, &UnknownNetworkError{Name: name, Available: Names()}
	}
	if err := n.validate(); err != nil {
		return Network{}, err
	}
	return n, nil
}

// Names returns the supported network names, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every supported network, sorted by name.
func All() []Network {
	nets := make([]Network, 0, len(table))
	for _, name := range Names() {
		nets = append(nets, table[name])
	}
	return nets
}

// validate enforces the table invariant: identity and reputation registry
// addresses must be present on every configured network.
func (n Network) validate() error {
	if n.Contracts.IdentityRegistry == (common.Address{}) {
		return fmt.Errorf("network %s: missing identity registry address", n.Name)
	}
	if n.Contracts.ReputationRegistry == (common.Address{}) {
		return fmt.Errorf("network %s: missing reputation registry address", n.Name)
	}
	return nil
}

// AgentExplorerURL returns the explorer page for an agent record.
func (n Network) AgentExplorerURL(agentID string) string {
	return fmt.Sprintf("%s/nft/%s/%s", n.Explorer, n.Contracts.IdentityRegistry.Hex(), agentID)
}

// TxExplorerURL returns the explorer page for a transaction.
func (n Network) TxExplorerURL(txHash string) string {
	return fmt.Sprintf("%s/tx/%s", n.Explorer, txHash)
}
