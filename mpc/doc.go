// Package mpc holds the implementations of interfaces.VaultSDK.
//
// Engine is a self-contained, single-party stand-in for the proprietary
// MPC wallet SDK: real secp256k1 keys, real signatures, real
// password-encrypted exports, but no threshold protocol. It exists so the
// service runs and tests end-to-end without the external SDK, the same
// way a deterministic dev KMS stands in for a production one.
//
// MockSDK and MockVault are testify mocks for unit tests that need full
// control over SDK behavior.
package mpc
