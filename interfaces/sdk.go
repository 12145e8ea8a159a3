package interfaces

import "context"

// VaultSDK is the boundary to the external MPC wallet SDK. Everything
// behind it — DKLS keygen, threshold signing, the sandbox isolating the
// protocol — is opaque to this repository. This layer never sees key
// material; it only holds the handles the SDK gives back.
type VaultSDK interface {
	// CreateFastVault initializes a 2-of-2 vault (one server share, one
	// client share) and triggers the out-of-band verification code. No
	// live handle exists until VerifyVault succeeds.
	CreateFastVault(ctx context.Context, req FastVaultRequest) (*FastVaultResult, error)

	// VerifyVault checks the out-of-band code and, on success, unlocks
	// the vault and returns its live handle.
	VerifyVault(ctx context.Context, vaultID, code string) (LiveVault, error)

	// CreateSecureVault runs the full n-of-m pairing ceremony. It blocks
	// until every device has joined (or ctx is done), emitting progress
	// through the observer along the way, and resolves with the live
	// handle. Secure vaults need no separate verification step.
	CreateSecureVault(ctx context.Context, req SecureVaultRequest, obs CeremonyObserver) (LiveVault, error)
}

// CeremonyObserver receives the callback events the SDK emits during a
// secure-vault pairing ceremony, in order: QRCodeReady once, then
// DeviceJoined and Progress interleaved until the ceremony resolves.
// Implementations are called from the goroutine running the ceremony.
type CeremonyObserver interface {
	// QRCodeReady delivers the pairing payload joining devices scan.
	QRCodeReady(payload string)

	// DeviceJoined reports pairing progress counters.
	DeviceJoined(joined, required int)

	// Progress reports keygen phase updates, percent in [0,100].
	Progress(phase string, percent int)
}

// LiveVault is an unlocked vault handle. It exists only in process memory,
// is owned exclusively by the orchestrator and is lost on restart.
type LiveVault interface {
	// VaultID returns the id this handle was unlocked for.
	VaultID() string

	// PublicKeyECDSA returns the vault's public key, hex-encoded.
	PublicKeyECDSA() string

	// Address derives the vault's address on the given chain.
	Address(ctx context.Context, chain string) (string, error)

	// Sign signs an opaque payload. The result is passed through to the
	// caller untouched.
	Sign(ctx context.Context, req SignRequest) (*Signature, error)

	// CanExport reports whether this handle can produce a backup.
	CanExport() bool

	// ExportAsBase64 produces a password-encrypted, base64-encoded
	// backup of the vault's share.
	ExportAsBase64(ctx context.Context, password string) (string, error)
}

// VaultOrchestrator is the operation set the HTTP layer calls. It is
// implemented by vault.Service and mocked in handler tests.
type VaultOrchestrator interface {
	CreateFastVault(ctx context.Context, name, email, password, userID string) (string, error)
	VerifyVault(ctx context.Context, vaultID, code string) error
	GetAddress(ctx context.Context, vaultID, chain string) (string, error)
	SignTransaction(ctx context.Context, vaultID string, req SignRequest) (*Signature, error)
	ExportVault(ctx context.Context, vaultID, password string) (string, error)
	CreateSecureVault(ctx context.Context, req SecureVaultRequest) (*SecureVaultSession, error)
	GetSecureVaultSession(vaultID string) (*SecureVaultSession, error)
	ListVaults(ctx context.Context, userID string) ([]*VaultMetadata, error)
	GetVaultMetadata(ctx context.Context, vaultID string) (*VaultMetadata, error)
}
