package mpc

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/keyfort/vault-service-backend/interfaces"
)

// MockSDK mocks the VaultSDK interface
type MockSDK struct {
	mock.Mock
}

// CreateFastVault mocks the CreateFastVault method
func (m *MockSDK) CreateFastVault(ctx context.Context, req interfaces.FastVaultRequest) (*interfaces.FastVaultResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.FastVaultResult), args.Error(1)
}

// VerifyVault mocks the VerifyVault method
func (m *MockSDK) VerifyVault(ctx context.Context, vaultID, code string) (interfaces.LiveVault, error) {
	args := m.Called(ctx, vaultID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.LiveVault), args.Error(1)
}

// CreateSecureVault mocks the CreateSecureVault method
func (m *MockSDK) CreateSecureVault(ctx context.Context, req interfaces.SecureVaultRequest, obs interfaces.CeremonyObserver) (interfaces.LiveVault, error) {
	args := m.Called(ctx, req, obs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.LiveVault), args.Error(1)
}

// MockVault mocks the LiveVault interface
type MockVault struct {
	mock.Mock
}

// VaultID mocks the VaultID method
func (m *MockVault) VaultID() string {
	args := m.Called()
	return args.String(0)
}

// PublicKeyECDSA mocks the PublicKeyECDSA method
func (m *MockVault) PublicKeyECDSA() string {
	args := m.Called()
	return args.String(0)
}

// Address mocks the Address method
func (m *MockVault) Address(ctx context.Context, chain string) (string, error) {
	args := m.Called(ctx, chain)
	return args.String(0), args.Error(1)
}

// Sign mocks the Sign method
func (m *MockVault) Sign(ctx context.Context, req interfaces.SignRequest) (*interfaces.Signature, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Signature), args.Error(1)
}

// CanExport mocks the CanExport method
func (m *MockVault) CanExport() bool {
	args := m.Called()
	return args.Bool(0)
}

// ExportAsBase64 mocks the ExportAsBase64 method
func (m *MockVault) ExportAsBase64(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}
