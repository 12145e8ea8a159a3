// Package interfaces defines the core types and contracts of the vault
// service without including implementation details.
//
// It separates interface definitions from their implementations, allowing
// for:
//
//   - Clear separation of concerns
//   - Multiple implementations of the same interface
//   - Better testability through mock implementations
//   - Reduced coupling between components
//
// # Contracts
//
//   - MetadataStore: durable per-vault JSON metadata and export blobs
//   - VaultSDK: the external MPC wallet SDK boundary
//   - LiveVault: an unlocked, in-process vault handle
//   - VaultOrchestrator: the operations the HTTP layer calls
//   - CeremonyObserver: callbacks emitted during secure-vault pairing
//
// # Types
//
//   - VaultMetadata: the durable per-vault record
//   - SecureVaultSession: transient pairing-ceremony state
//   - SignRequest / Signature: opaque signing passthrough shapes
//
// # Errors
//
// Sentinel errors returned by the store and orchestrator:
//
//   - ErrVaultNotFound, ErrSessionNotFound, ErrBackupNotFound
//   - ErrVaultNotVerified, ErrVaultNotLoaded, ErrExportUnsupported
//
// Components should depend on these interfaces rather than on concrete
// implementations.
package interfaces
