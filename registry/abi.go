package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// ABI fragments for the ERC-8004 registry pair. The identity registry is
// ERC-721 shaped; register is overloaded on-chain (no-arg, URI-only and
// URI+metadata-array) and this client only ever uses the first two shapes.
const identityRegistryJSON = `[
	{"name":"register","type":"function","stateMutability":"nonpayable","inputs":[{"name":"agentURI","type":"string"},{"name":"metadata","type":"tuple[]","components":[{"name":"metadataKey","type":"string"},{"name":"metadataValue","type":"bytes"}]}],"outputs":[{"name":"agentId","type":"uint256"}]},
	{"name":"register","type":"function","stateMutability":"nonpayable","inputs":[{"name":"agentURI","type":"string"}],"outputs":[{"name":"agentId","type":"uint256"}]},
	{"name":"register","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"agentId","type":"uint256"}]},
	{"name":"setAgentURI","type":"function","stateMutability":"nonpayable","inputs":[{"name":"agentId","type":"uint256"},{"name":"newURI","type":"string"}],"outputs":[]},
	{"name":"setMetadata","type":"function","stateMutability":"nonpayable","inputs":[{"name":"agentId","type":"uint256"},{"name":"metadataKey","type":"string"},{"name":"metadataValue","type":"bytes"}],"outputs":[]},
	{"name":"tokenURI","type":"function","stateMutability":"view","inputs":[{"name":"agentId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"name":"ownerOf","type":"function","stateMutability":"view","inputs":[{"name":"agentId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"getMetadata","type":"function","stateMutability":"view","inputs":[{"name":"agentId","type":"uint256"},{"name":"metadataKey","type":"string"}],"outputs":[{"name":"","type":"bytes"}]}
]`

const reputationRegistryJSON = `[
	{"name":"giveFeedback","type":"function","stateMutability":"nonpayable","inputs":[{"name":"agentId","type":"uint256"},{"name":"value","type":"int128"},{"name":"valueDecimals","type":"uint8"},{"name":"tag1","type":"string"},{"name":"tag2","type":"string"},{"name":"endpoint","type":"string"},{"name":"feedbackURI","type":"string"},{"name":"feedbackHash","type":"bytes32"}],"outputs":[]},
	{"name":"revokeFeedback","type":"function","stateMutability":"nonpayable","inputs":[{"name":"agentId","type":"uint256"},{"name":"feedbackIndex","type":"uint64"}],"outputs":[]},
	{"name":"getSummary","type":"function","stateMutability":"view","inputs":[{"name":"agentId","type":"uint256"},{"name":"clientAddresses","type":"address[]"},{"name":"tag1","type":"string"},{"name":"tag2","type":"string"}],"outputs":[{"name":"count","type":"uint64"},{"name":"summaryValue","type":"int128"},{"name":"summaryValueDecimals","type":"uint8"}]},
	{"name":"readFeedback","type":"function","stateMutability":"view","inputs":[{"name":"agentId","type":"uint256"},{"name":"clientAddress","type":"address"},{"name":"index","type":"uint64"}],"outputs":[{"name":"value","type":"int128"},{"name":"valueDecimals","type":"uint8"},{"name":"tag1","type":"string"},{"name":"tag2","type":"string"},{"name":"isRevoked","type":"bool"}]},
	{"name":"getClients","type":"function","stateMutability":"view","inputs":[{"name":"agentId","type":"uint256"}],"outputs":[{"name":"","type":"address[]"}]},
	{"name":"getLastIndex","type":"function","stateMutability":"view","inputs":[{"name":"agentId","type":"uint256"},{"name":"clientAddress","type":"address"}],"outputs":[{"name":"","type":"uint64"}]}
]`

var (
	identityABI   abi.ABI
	reputationABI abi.ABI

	// transferTopic is the ERC-721 Transfer event signature. A Transfer
	// from the zero address is the mint that assigns a new agent id.
	transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
)

func init() {
	var err error
	identityABI, err = abi.JSON(strings.NewReader(identityRegistryJSON))
	if err != nil {
		panic(fmt.Sprintf("registry: invalid identity registry ABI: %v", err))
	}
	reputationABI, err = abi.JSON(strings.NewReader(reputationRegistryJSON))
	if err != nil {
		panic(fmt.Sprintf("registry: invalid reputation registry ABI: %v", err))
	}
}

// registerMethod selects the register overload by shape. abi.JSON
// disambiguates overloads by suffixing method names, so overloads are
// looked up by raw name and argument count instead.
func registerMethod(withURI bool) (abi.Method, error) {
	wantArgs := 0
	if withURI {
		wantArgs = 1
	}
	for _, m := range identityABI.Methods {
		if m.RawName == "register" && len(m.Inputs) == wantArgs {
			return m, nil
		}
	}
	return abi.Method{}, fmt.Errorf("registry: no register overload with %d inputs", wantArgs)
}

// packRegister builds the calldata for the selected register overload.
func packRegister(agentURI string) ([]byte, error) {
	method, err := registerMethod(agentURI != "")
	if err != nil {
		return nil, err
	}

	var args []interface{}
	if agentURI != "" {
		args = append(args, agentURI)
	}
	packed, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("registry: pack register: %w", err)
	}
	return append(append([]byte{}, method.ID...), packed...), nil
}
