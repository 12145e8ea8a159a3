package mpc

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/keyfort/vault-service-backend/interfaces"
)

// defaultCodeAttempts bounds how often a wrong verification code may be
// submitted before the pending vault is discarded.
const defaultCodeAttempts = 5

// CodeSink receives a fast vault's verification code. In production the
// external SDK mails the code; the engine hands it to this hook instead.
type CodeSink func(email, code string)

// EngineConfig configures the local engine.
type EngineConfig struct {
	// CodeSink is called with every generated verification code. Nil
	// means codes are only reachable through RevealCode.
	CodeSink CodeSink

	// MaxCodeAttempts overrides the wrong-code limit when positive.
	MaxCodeAttempts int

	Log *slog.Logger
}

// Engine is a single-party, in-process implementation of
// interfaces.VaultSDK. It keeps pending fast vaults (key material plus the
// expected verification code) in memory until they are verified.
type Engine struct {
	mu          sync.Mutex
	pending     map[string]*pendingFastVault
	codeSink    CodeSink
	maxAttempts int
	log         *slog.Logger
}

type pendingFastVault struct {
	name     string
	email    string
	code     string
	attempts int
	key      *secp256k1.PrivateKey
}

// NewEngine creates a local vault engine.
func NewEngine(cfg EngineConfig) *Engine {
	maxAttempts := cfg.MaxCodeAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultCodeAttempts
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		pending:     make(map[string]*pendingFastVault),
		codeSink:    cfg.CodeSink,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// CreateFastVault generates the vault key, assigns an id and issues a
// verification code. The handle stays locked until VerifyVault succeeds.
func (e *Engine) CreateFastVault(ctx context.Context, req interfaces.FastVaultRequest) (*interfaces.FastVaultResult, error) {
	if req.Password == "" {
		return nil, errors.New("password is required")
	}

	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("key generation failed: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("code generation failed: %w", err)
	}

	vaultID := uuid.NewString()

	e.mu.Lock()
	e.pending[vaultID] = &pendingFastVault{
		name:  req.Name,
		email: req.Email,
		code:  code,
		key:   key,
	}
	e.mu.Unlock()

	if e.codeSink != nil {
		e.codeSink(req.Email, code)
	}

	e.log.Debug("Fast vault initialized", slog.String("vaultId", vaultID))

	return &interfaces.FastVaultResult{
		VaultID:        vaultID,
		PublicKeyECDSA: pubKeyHex(key),
	}, nil
}

// VerifyVault checks the verification code and unlocks the vault. Wrong
// codes are counted; once the attempt limit is exceeded the pending vault
// is discarded and a new creation is required.
func (e *Engine) VerifyVault(ctx context.Context, vaultID, code string) (interfaces.LiveVault, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.pending[vaultID]
	if !ok {
		return nil, fmt.Errorf("no pending verification for vault %s", vaultID)
	}

	if subtle.ConstantTimeCompare([]byte(p.code), []byte(code)) != 1 {
		p.attempts++
		if p.attempts >= e.maxAttempts {
			delete(e.pending, vaultID)
			return nil, errors.New("verification attempts exceeded")
		}
		return nil, errors.New("invalid verification code")
	}

	delete(e.pending, vaultID)
	return &liveVault{id: vaultID, name: p.name, key: p.key}, nil
}

// CreateSecureVault simulates the n-of-m pairing ceremony: it emits the QR
// payload, one DeviceJoined event per device and keygen progress, then
// resolves with the unlocked handle. Honors ctx cancellation between
// events.
func (e *Engine) CreateSecureVault(ctx context.Context, req interfaces.SecureVaultRequest, obs interfaces.CeremonyObserver) (interfaces.LiveVault, error) {
	if req.Devices < 1 {
		return nil, errors.New("at least one device is required")
	}
	if req.Threshold < 1 || req.Threshold > req.Devices {
		return nil, errors.New("threshold must be between 1 and the device count")
	}

	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("key generation failed: %w", err)
	}

	vaultID := uuid.NewString()

	qr, err := pairingPayload(vaultID, req)
	if err != nil {
		return nil, err
	}
	obs.QRCodeReady(qr)

	for joined := 1; joined <= req.Devices; joined++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		obs.DeviceJoined(joined, req.Devices)
		obs.Progress("keygen", joined*100/req.Devices)
	}

	e.log.Debug("Secure vault ceremony complete",
		slog.String("vaultId", vaultID),
		slog.Int("devices", req.Devices),
		slog.Int("threshold", req.Threshold))

	return &liveVault{id: vaultID, name: req.Name, key: key}, nil
}

// RevealCode exposes the pending verification code for a vault. Dev and
// test hook only; the HTTP surface never reaches it.
func (e *Engine) RevealCode(vaultID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.pending[vaultID]
	if !ok {
		return "", fmt.Errorf("no pending verification for vault %s", vaultID)
	}
	return p.code, nil
}

// pairingPayloadV1 is the structure encoded into the ceremony QR code.
type pairingPayloadV1 struct {
	SessionID string `cbor:"sessionId"`
	VaultID   string `cbor:"vaultId"`
	Name      string `cbor:"name"`
	Devices   int    `cbor:"devices"`
	Threshold int    `cbor:"threshold"`
}

func pairingPayload(vaultID string, req interfaces.SecureVaultRequest) (string, error) {
	raw, err := cbor.Marshal(pairingPayloadV1{
		SessionID: uuid.NewString(),
		VaultID:   vaultID,
		Name:      req.Name,
		Devices:   req.Devices,
		Threshold: req.Threshold,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode pairing payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// generateCode produces a 6-digit verification code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
