package registry

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	ethereum "github.com/ethereum/go-ethereum"
)

// Gas limits match the reference implementation: registration mints a
// token and needs more headroom than the other writes.
const (
	registerGasLimit = 500_000
	defaultGasLimit  = 300_000

	receiptPollInterval = 2 * time.Second
	receiptWaitTimeout  = 2 * time.Minute
)

// ChainAccess is the chain capability the client depends on: read-only
// contract calls, signed write calls, and transaction-receipt waiting.
// Implementations must be safe for concurrent use.
type ChainAccess interface {
	// Call executes a read-only contract call against the latest block.
	Call(ctx context.Context, to common.Address, input []byte) ([]byte, error)

	// Transact signs and broadcasts a state-changing call, returning the
	// transaction hash without waiting for inclusion.
	Transact(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, input []byte, gasLimit uint64) (common.Hash, error)

	// AwaitReceipt blocks until the transaction is mined. A receipt with
	// failed status is reported as an error.
	AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// EthChainAccess implements ChainAccess over an Ethereum JSON-RPC
// endpoint.
type EthChainAccess struct {
	client  *ethclient.Client
	chainID *big.Int
}

// Dial connects to an Ethereum-compatible JSON-RPC endpoint. The chain id
// is taken from the network descriptor rather than queried, so a client
// can be constructed without a round trip.
func Dial(ctx context.Context, rpcURL string, chainID int64) (*EthChainAccess, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	return &EthChainAccess{client: client, chainID: big.NewInt(chainID)}, nil
}

// Close releases the underlying RPC connection.
func (a *EthChainAccess) Close() {
	a.client.Close()
}

// Call executes a read-only contract call against the latest block.
func (a *EthChainAccess) Call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	return a.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
}

// Transact builds a legacy transaction with the pending nonce and the
// node-suggested gas price, signs it with key, and broadcasts it.
func (a *EthChainAccess) Transact(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, input []byte, gasLimit uint64) (common.Hash, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := a.client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce for %s: %w", from.Hex(), err)
	}
	gasPrice, err := a.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     input,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(a.chainID), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}
	if err := a.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return signed.Hash(), nil
}

// AwaitReceipt polls for the transaction receipt until it is mined, the
// context is cancelled, or the wait cap expires.
func (a *EthChainAccess) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	deadline := time.After(receiptWaitTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for transaction %s: %w", txHash.Hex(), ctx.Err())
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for transaction %s", txHash.Hex())
		case <-ticker.C:
			receipt, err := a.client.TransactionReceipt(ctx, txHash)
			if err != nil {
				// Not mined yet, or a transient RPC hiccup.
				continue
			}
			if receipt.Status == types.ReceiptStatusFailed {
				return nil, fmt.Errorf("transaction %s reverted", txHash.Hex())
			}
			return receipt, nil
		}
	}
}

// ParseKey parses a hex-encoded ECDSA private key, with or without a 0x
// prefix.
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// KeyAddress derives the Ethereum address controlled by key.
func KeyAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
