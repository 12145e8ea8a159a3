package interfaces

import "errors"

// Sentinel errors shared across the store, orchestrator and HTTP layer.
// The HTTP layer maps these to status codes in exactly one place.
var (
	// ErrVaultNotFound: no metadata record exists for the vault id.
	ErrVaultNotFound = errors.New("vault not found")

	// ErrSessionNotFound: no pairing session is tracked for the vault id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBackupNotFound: no export blob was ever saved for the vault id.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrVaultNotVerified: metadata exists but the vault was never
	// verified, so no live handle can exist.
	ErrVaultNotVerified = errors.New("vault not verified")

	// ErrVaultNotLoaded: metadata says verified but the live handle is
	// gone (typically lost across a restart). The client must verify
	// again to unlock the vault in this process.
	ErrVaultNotLoaded = errors.New("vault not loaded, please verify again")

	// ErrExportUnsupported: the live handle cannot produce a backup.
	ErrExportUnsupported = errors.New("vault does not support export")
)
