package registry

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// MockChainAccess mocks the ChainAccess interface for tests.
type MockChainAccess struct {
	mock.Mock
}

// Call mocks the Call method.
func (m *MockChainAccess) Call(ctx context.Context, to common.Address, input []byte) ([]byte, error) {
	args := m.Called(ctx, to, input)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

// Transact mocks the Transact method.
func (m *MockChainAccess) Transact(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, input []byte, gasLimit uint64) (common.Hash, error) {
	args := m.Called(ctx, key, to, input, gasLimit)
	hash, _ := args.Get(0).(common.Hash)
	return hash, args.Error(1)
}

// AwaitReceipt mocks the AwaitReceipt method.
func (m *MockChainAccess) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	receipt, _ := args.Get(0).(*types.Receipt)
	return receipt, args.Error(1)
}
