package interfaces

import (
	"time"
)

// VaultMetadata is the durable record kept for every vault, one JSON file
// per vault id. The json field names stay aligned with the client apps so
// their backups remain readable.
type VaultMetadata struct {
	// VaultID is the opaque unique id assigned by the SDK at creation.
	VaultID string `json:"vaultId"`

	// Name and Email are display/contact fields set at creation and
	// never mutated afterwards.
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`

	// UserID is an optional owner tag used only as a list filter.
	UserID string `json:"userId,omitempty"`

	// PublicKeyECDSA is the vault's public key as reported by the SDK.
	PublicKeyECDSA string `json:"publicKeyEcdsa,omitempty"`

	// CreatedAt is set once at creation.
	CreatedAt time.Time `json:"createdAt"`

	// Verified is false at creation for fast vaults and flips to true
	// exactly once on successful verification. Secure vaults are created
	// verified since they have no email step.
	Verified bool `json:"verified"`

	// Chains lists every chain an address has been requested for.
	// Append-only; never shrinks.
	Chains []string `json:"chains"`
}

// HasChain reports whether chain is already in the metadata's chain set.
func (m *VaultMetadata) HasChain(chain string) bool {
	for _, c := range m.Chains {
		if c == chain {
			return true
		}
	}
	return false
}

// MetadataUpdate is a partial update merged into an existing record.
// Nil/empty fields are left untouched; Chains are unioned, not replaced.
type MetadataUpdate struct {
	Verified *bool
	Chains   []string
}

// SessionStatus is the lifecycle state of a secure-vault pairing session.
type SessionStatus string

const (
	// SessionPending: the ceremony started, devices are still joining.
	SessionPending SessionStatus = "pending"
	// SessionReady: devicesJoined reached devicesRequired.
	SessionReady SessionStatus = "ready"
	// SessionFailed: the ceremony errored. Terminal.
	SessionFailed SessionStatus = "failed"
)

// SecureVaultSession tracks a secure-vault pairing ceremony. It lives only
// in process memory; sessions are not durable.
type SecureVaultSession struct {
	VaultID         string        `json:"vaultId"`
	SessionID       string        `json:"sessionId"`
	QRCode          string        `json:"qrCode,omitempty"`
	DevicesJoined   int           `json:"devicesJoined"`
	DevicesRequired int           `json:"devicesRequired"`
	Status          SessionStatus `json:"status"`
}

// SignRequest carries an opaque signing payload through to the SDK. The
// transaction encoding is chain-specific and not interpreted here.
type SignRequest struct {
	Transaction string         `json:"transaction"`
	Chain       string         `json:"chain,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// Signature is the SDK's signing result, passed through untouched.
type Signature struct {
	R   string `json:"r"`
	S   string `json:"s"`
	DER string `json:"der"`
}

// FastVaultRequest asks the SDK to initialize a 2-of-2 vault. The SDK
// sends the verification code out-of-band (e.g. email).
type FastVaultRequest struct {
	Name     string
	Email    string
	Password string
}

// FastVaultResult is what the SDK reports back for a new fast vault. No
// live handle is returned until verification succeeds.
type FastVaultResult struct {
	VaultID        string
	PublicKeyECDSA string
}

// SecureVaultRequest asks the SDK to run an n-of-m pairing ceremony.
type SecureVaultRequest struct {
	Name      string
	Devices   int
	Threshold int
	Password  string
}
