package registry

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/openclaw/erc8004-go/codec"
	"github.com/openclaw/erc8004-go/metadata"
	"github.com/openclaw/erc8004-go/networks"
)

// ErrAgentNotFound is returned by GetAgent when the identity registry has
// no owner for the requested id. The owner lookup is the canonical
// existence signal; any failure of it is classified as non-existence.
// Callers that need to distinguish transient chain errors should use
// Owner directly.
var ErrAgentNotFound = errors.New("agent not found")

// Client talks to the ERC-8004 identity and reputation registries on one
// network. It holds no mutable state between calls, so a single Client is
// safe for concurrent use.
type Client struct {
	network networks.Network
	chain   ChainAccess
	fetcher *metadata.Fetcher
	log     *slog.Logger
}

// NewClient binds a client to a network descriptor and a chain-access
// implementation.
func NewClient(networkName string, chain ChainAccess, log *slog.Logger) (*Client, error) {
	network, err := networks.Resolve(networkName)
	if err != nil {
		return nil, err
	}
	return &Client{
		network: network,
		chain:   chain,
		fetcher: metadata.NewFetcher(log),
		log:     log,
	}, nil
}

// DialClient resolves the network and connects to its RPC endpoint (or
// rpcURL, when non-empty) in one step.
func DialClient(ctx context.Context, networkName, rpcURL string, log *slog.Logger) (*Client, error) {
	network, err := networks.Resolve(networkName)
	if err != nil {
		return nil, err
	}
	if rpcURL == "" {
		rpcURL = network.RPC
	}
	chain, err := Dial(ctx, rpcURL, network.ChainID)
	if err != nil {
		return nil, err
	}
	return NewClient(network.Name, chain, log)
}

// SetFetcher replaces the metadata fetcher, e.g. to route ipfs:// token
// URIs through a local node.
func (c *Client) SetFetcher(f *metadata.Fetcher) {
	c.fetcher = f
}

// Network returns the bound network descriptor.
func (c *Client) Network() networks.Network {
	return c.network
}

// NetworkInfo returns the bound network in display form.
func (c *Client) NetworkInfo() NetworkInfo {
	return NetworkInfo{
		Network:   c.network.Name,
		ChainID:   c.network.ChainID,
		Contracts: c.network.Contracts,
		Explorer:  c.network.Explorer,
	}
}

// ==================== read operations ====================

// Owner returns the owner of an agent record, propagating any chain error
// verbatim.
func (c *Client) Owner(ctx context.Context, agentID *big.Int) (common.Address, error) {
	vals, err := c.callIdentity(ctx, "ownerOf", agentID)
	if err != nil {
		return common.Address{}, err
	}
	return vals[0].(common.Address), nil
}

// Exists reports whether an agent record exists. The registry exposes no
// dedicated existence predicate, so a failing owner lookup is treated as
// non-existence.
func (c *Client) Exists(ctx context.Context, agentID *big.Int) bool {
	_, err := c.Owner(ctx, agentID)
	return err == nil
}

// GetAgent looks up an agent record. The owner lookup decides existence;
// the token URI and metadata lookups are best-effort and their failures
// degrade to absent fields rather than failing the call. Data URIs are
// decoded locally, http(s) and ipfs URIs are fetched with a fixed
// timeout.
func (c *Client) GetAgent(ctx context.Context, agentID *big.Int) (*Agent, error) {
	owner, err := c.Owner(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("%w: agent %s: %v", ErrAgentNotFound, agentID, err)
	}

	agent := &Agent{
		AgentID:     agentID,
		Owner:       owner,
		ExplorerURL: c.network.AgentExplorerURL(agentID.String()),
	}

	vals, err := c.callIdentity(ctx, "tokenURI", agentID)
	if err != nil {
		c.log.Debug("token URI lookup failed", "agent_id", agentID, "err", err)
		return agent, nil
	}
	uri := vals[0].(string)
	if uri == "" {
		return agent, nil
	}

	agent.TokenURI = uri
	agent.Metadata = c.resolveMetadata(ctx, uri)
	return agent, nil
}

// resolveMetadata turns a token URI into a metadata object, returning nil
// on any failure.
func (c *Client) resolveMetadata(ctx context.Context, uri string) map[string]any {
	switch {
	case codec.IsDataURI(uri):
		parsed, err := codec.DecodeDataURI(uri)
		if err != nil {
			c.log.Debug("malformed metadata data URI", "err", err)
			return nil
		}
		return parsed
	case metadata.Supports(uri):
		parsed, err := c.fetcher.Fetch(ctx, uri)
		if err != nil {
			return nil
		}
		return parsed
	default:
		return nil
	}
}

// AgentCount returns the number of agent records owned by an address.
func (c *Client) AgentCount(ctx context.Context, owner common.Address) (*big.Int, error) {
	vals, err := c.callIdentity(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

// GetMetadata reads one key from the identity registry's on-chain
// key/value metadata for an agent.
func (c *Client) GetMetadata(ctx context.Context, agentID *big.Int, key string) ([]byte, error) {
	vals, err := c.callIdentity(ctx, "getMetadata", agentID, key)
	if err != nil {
		return nil, err
	}
	return vals[0].([]byte), nil
}

// GetReputation queries the reputation summary for an agent. It never
// fails: with no reviewer addresses it short-circuits to a zero-count
// summary carrying a note (the registry requires an explicit reviewer
// set, and a silent zero would be misleading), and a chain failure is
// embedded in the summary's Error field.
func (c *Client) GetReputation(ctx context.Context, agentID *big.Int, filters ReputationFilters) *ReputationSummary {
	if filters.ClientAddresses == nil {
		filters.ClientAddresses = []common.Address{}
	}
	summary := &ReputationSummary{
		AgentID:  agentID,
		RawValue: new(big.Int),
		Filters:  filters,
	}

	if len(filters.ClientAddresses) == 0 {
		summary.Note = "provide client addresses to query reputation from specific reviewers"
		return summary
	}

	input, err := reputationABI.Pack("getSummary", agentID, filters.ClientAddresses, filters.Tag1, filters.Tag2)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	out, err := c.chain.Call(ctx, c.network.Contracts.ReputationRegistry, input)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	vals, err := reputationABI.Unpack("getSummary", out)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}

	summary.FeedbackCount = vals[0].(uint64)
	summary.RawValue = vals[1].(*big.Int)
	summary.Decimals = vals[2].(uint8)
	if summary.FeedbackCount > 0 {
		summary.AverageScore = &Score{Raw: summary.RawValue, Decimals: summary.Decimals}
	}
	return summary
}

// ReadFeedback reads a single feedback entry a reviewer left for an
// agent.
func (c *Client) ReadFeedback(ctx context.Context, agentID *big.Int, client common.Address, index uint64) (*FeedbackEntry, error) {
	vals, err := c.callReputation(ctx, "readFeedback", agentID, client, index)
	if err != nil {
		return nil, err
	}
	return &FeedbackEntry{
		AgentID:       agentID,
		ClientAddress: client,
		Index:         index,
		Score:         Score{Raw: vals[0].(*big.Int), Decimals: vals[1].(uint8)},
		Tag1:          vals[2].(string),
		Tag2:          vals[3].(string),
		Revoked:       vals[4].(bool),
	}, nil
}

// GetClients returns the reviewer addresses that left feedback for an
// agent.
func (c *Client) GetClients(ctx context.Context, agentID *big.Int) ([]common.Address, error) {
	vals, err := c.callReputation(ctx, "getClients", agentID)
	if err != nil {
		return nil, err
	}
	return vals[0].([]common.Address), nil
}

// GetLastIndex returns the most recent feedback index a reviewer holds
// for an agent.
func (c *Client) GetLastIndex(ctx context.Context, agentID *big.Int, client common.Address) (uint64, error) {
	vals, err := c.callReputation(ctx, "getLastIndex", agentID, client)
	if err != nil {
		return 0, err
	}
	return vals[0].(uint64), nil
}

// ==================== write operations ====================

// Register creates a new agent record. An empty agentURI dispatches the
// zero-argument register shape, otherwise the URI-only shape. After the
// receipt arrives the logs are scanned for the mint transfer; a missing
// mint log leaves AgentID nil but does not fail the registration, since
// the transaction itself succeeded.
func (c *Client) Register(ctx context.Context, key *ecdsa.PrivateKey, agentURI string) (*RegistrationResult, error) {
	input, err := packRegister(agentURI)
	if err != nil {
		return nil, err
	}

	txHash, err := c.chain.Transact(ctx, key, c.network.Contracts.IdentityRegistry, input, registerGasLimit)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	receipt, err := c.chain.AwaitReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	agentID := mintedAgentID(receipt)
	if agentID == nil {
		c.log.Warn("no mint transfer log in register receipt", "tx", txHash.Hex())
	}

	return &RegistrationResult{
		AgentID:     agentID,
		TxHash:      txHash.Hex(),
		Owner:       KeyAddress(key),
		ExplorerURL: c.network.TxExplorerURL(txHash.Hex()),
	}, nil
}

// RegisterMetadata encodes a metadata object to a data URI and registers
// with it.
func (c *Client) RegisterMetadata(ctx context.Context, key *ecdsa.PrivateKey, meta any) (*RegistrationResult, error) {
	uri, err := codec.EncodeDataURI(meta)
	if err != nil {
		return nil, err
	}
	return c.Register(ctx, key, uri)
}

// RegisterAgent builds canonical registration metadata from opts and
// registers with it.
func (c *Client) RegisterAgent(ctx context.Context, key *ecdsa.PrivateKey, opts codec.RegistrationOptions) (*RegistrationResult, error) {
	meta, err := codec.BuildRegistrationMetadata(opts)
	if err != nil {
		return nil, err
	}
	return c.RegisterMetadata(ctx, key, meta)
}

// SetAgentURI updates an agent's metadata pointer. Unlike Register there
// is no id-extraction ambiguity: once the receipt is in, the update
// succeeded.
func (c *Client) SetAgentURI(ctx context.Context, key *ecdsa.PrivateKey, agentID *big.Int, newURI string) (*UpdateResult, error) {
	input, err := identityABI.Pack("setAgentURI", agentID, newURI)
	if err != nil {
		return nil, err
	}

	txHash, err := c.chain.Transact(ctx, key, c.network.Contracts.IdentityRegistry, input, defaultGasLimit)
	if err != nil {
		return nil, fmt.Errorf("set agent URI: %w", err)
	}
	if _, err := c.chain.AwaitReceipt(ctx, txHash); err != nil {
		return nil, fmt.Errorf("set agent URI: %w", err)
	}

	return &UpdateResult{
		AgentID:     agentID,
		NewURI:      newURI,
		TxHash:      txHash.Hex(),
		ExplorerURL: c.network.TxExplorerURL(txHash.Hex()),
	}, nil
}

// SetAgentMetadata encodes a metadata object to a data URI and points the
// agent record at it.
func (c *Client) SetAgentMetadata(ctx context.Context, key *ecdsa.PrivateKey, agentID *big.Int, meta any) (*UpdateResult, error) {
	uri, err := codec.EncodeDataURI(meta)
	if err != nil {
		return nil, err
	}
	return c.SetAgentURI(ctx, key, agentID, uri)
}

// SetMetadata writes one key of the identity registry's on-chain
// key/value metadata for an agent.
func (c *Client) SetMetadata(ctx context.Context, key *ecdsa.PrivateKey, agentID *big.Int, metadataKey string, value []byte) (string, error) {
	input, err := identityABI.Pack("setMetadata", agentID, metadataKey, value)
	if err != nil {
		return "", err
	}
	txHash, err := c.chain.Transact(ctx, key, c.network.Contracts.IdentityRegistry, input, defaultGasLimit)
	if err != nil {
		return "", fmt.Errorf("set metadata: %w", err)
	}
	if _, err := c.chain.AwaitReceipt(ctx, txHash); err != nil {
		return "", fmt.Errorf("set metadata: %w", err)
	}
	return txHash.Hex(), nil
}

// GiveFeedback submits a feedback entry for an agent. The display value
// is scaled to an integer mantissa per the decimals in effect; the result
// carries the original value for readability.
func (c *Client) GiveFeedback(ctx context.Context, key *ecdsa.PrivateKey, agentID *big.Int, fb Feedback) (*FeedbackResult, error) {
	decimals := DefaultFeedbackDecimals
	if fb.Decimals != nil {
		decimals = *fb.Decimals
	}
	rawValue := ScaleScore(fb.Value, decimals)

	input, err := reputationABI.Pack("giveFeedback",
		agentID, rawValue, decimals, fb.Tag1, fb.Tag2, fb.Endpoint, fb.FeedbackURI, fb.FeedbackHash)
	if err != nil {
		return nil, err
	}

	txHash, err := c.chain.Transact(ctx, key, c.network.Contracts.ReputationRegistry, input, defaultGasLimit)
	if err != nil {
		return nil, fmt.Errorf("give feedback: %w", err)
	}
	if _, err := c.chain.AwaitReceipt(ctx, txHash); err != nil {
		return nil, fmt.Errorf("give feedback: %w", err)
	}

	return &FeedbackResult{
		AgentID:     agentID,
		Value:       fb.Value,
		Decimals:    decimals,
		RawValue:    rawValue,
		Tag1:        fb.Tag1,
		Tag2:        fb.Tag2,
		TxHash:      txHash.Hex(),
		ExplorerURL: c.network.TxExplorerURL(txHash.Hex()),
	}, nil
}

// RevokeFeedback withdraws a previously submitted feedback entry.
func (c *Client) RevokeFeedback(ctx context.Context, key *ecdsa.PrivateKey, agentID *big.Int, index uint64) (string, error) {
	input, err := reputationABI.Pack("revokeFeedback", agentID, index)
	if err != nil {
		return "", err
	}
	txHash, err := c.chain.Transact(ctx, key, c.network.Contracts.ReputationRegistry, input, defaultGasLimit)
	if err != nil {
		return "", fmt.Errorf("revoke feedback: %w", err)
	}
	if _, err := c.chain.AwaitReceipt(ctx, txHash); err != nil {
		return "", fmt.Errorf("revoke feedback: %w", err)
	}
	return txHash.Hex(), nil
}

// ==================== helpers ====================

func (c *Client) callIdentity(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	return c.call(ctx, identityABI, c.network.Contracts.IdentityRegistry, method, args...)
}

func (c *Client) callReputation(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	return c.call(ctx, reputationABI, c.network.Contracts.ReputationRegistry, method, args...)
}

func (c *Client) call(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := c.chain.Call(ctx, to, input)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	vals, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", method, err)
	}
	return vals, nil
}

// mintedAgentID extracts the new agent id from the receipt's mint
// transfer log (Transfer from the zero address, id in the last indexed
// topic). It returns nil when no such log exists; the last matching log
// wins, mirroring the reference implementation.
func mintedAgentID(receipt *types.Receipt) *big.Int {
	var agentID *big.Int
	for _, entry := range receipt.Logs {
		if len(entry.Topics) >= 4 && entry.Topics[0] == transferTopic && entry.Topics[1] == (common.Hash{}) {
			agentID = new(big.Int).SetBytes(entry.Topics[3].Bytes())
		}
	}
	return agentID
}
