package mpc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fxamacker/cbor/v2"
	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/keyfort/vault-service-backend/interfaces"
)

// backupVersion tags the export format so future formats stay decodable.
const backupVersion = "1"

// addressVersion prefixes derived addresses.
const addressVersion = 0x01

// Argon2id parameters for export encryption keys.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// liveVault is the engine's unlocked handle. It holds the vault key in
// process memory only.
type liveVault struct {
	id   string
	name string
	key  *secp256k1.PrivateKey
}

func (v *liveVault) VaultID() string {
	return v.id
}

func (v *liveVault) PublicKeyECDSA() string {
	return pubKeyHex(v.key)
}

// Address derives a deterministic per-chain address: the base58 rendering
// of a versioned, chain-bound digest of the vault public key.
func (v *liveVault) Address(ctx context.Context, chain string) (string, error) {
	if chain == "" {
		return "", errors.New("chain is required")
	}

	hasher := blake3.New()
	hasher.Write(v.key.PubKey().SerializeCompressed())
	hasher.Write([]byte(chain))
	digest := hasher.Sum(nil)

	payload := append([]byte{addressVersion}, digest[:20]...)
	return base58.Encode(payload), nil
}

// Sign signs the opaque transaction payload. The digest is blake3 of the
// payload bytes; the caller gets r, s and the DER encoding, all hex.
func (v *liveVault) Sign(ctx context.Context, req interfaces.SignRequest) (*interfaces.Signature, error) {
	if req.Transaction == "" {
		return nil, errors.New("transaction is required")
	}

	digest := blake3.Sum256([]byte(req.Transaction))
	sig := ecdsa.Sign(v.key, digest[:])
	compact := ecdsa.SignCompact(v.key, digest[:], true)

	return &interfaces.Signature{
		R:   hex.EncodeToString(compact[1:33]),
		S:   hex.EncodeToString(compact[33:65]),
		DER: hex.EncodeToString(sig.Serialize()),
	}, nil
}

func (v *liveVault) CanExport() bool {
	return true
}

// VaultBackup is the plaintext export payload.
type VaultBackup struct {
	Version  string `cbor:"version"`
	VaultID  string `cbor:"vaultId"`
	Name     string `cbor:"name"`
	PubKey   string `cbor:"pubKey"`
	KeyShare []byte `cbor:"keyShare"`
}

// encryptedBackup wraps the sealed payload with its KDF inputs.
type encryptedBackup struct {
	Version    string `cbor:"version"`
	Salt       []byte `cbor:"salt"`
	Nonce      []byte `cbor:"nonce"`
	Ciphertext []byte `cbor:"ciphertext"`
}

// ExportAsBase64 produces a password-encrypted backup: cbor payload,
// argon2id key derivation, secretbox sealing, base64 envelope.
func (v *liveVault) ExportAsBase64(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}

	plaintext, err := cbor.Marshal(VaultBackup{
		Version:  backupVersion,
		VaultID:  v.id,
		Name:     v.name,
		PubKey:   pubKeyHex(v.key),
		KeyShare: v.key.Serialize(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}

	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, 32))

	sealed := secretbox.Seal(nil, plaintext, &nonce, &key)

	envelope, err := cbor.Marshal(encryptedBackup{
		Version:    backupVersion,
		Salt:       salt,
		Nonce:      nonce[:],
		Ciphertext: sealed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode backup envelope: %w", err)
	}

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// DecryptVaultBackup opens a backup produced by ExportAsBase64. Used by
// recovery tooling and tests.
func DecryptVaultBackup(encoded, password string) (*VaultBackup, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid backup encoding: %w", err)
	}

	var env encryptedBackup
	if err := cbor.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid backup envelope: %w", err)
	}
	if len(env.Nonce) != 24 {
		return nil, errors.New("invalid backup nonce")
	}

	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(password), env.Salt, argonTime, argonMemory, argonThreads, 32))

	var nonce [24]byte
	copy(nonce[:], env.Nonce)

	plaintext, ok := secretbox.Open(nil, env.Ciphertext, &nonce, &key)
	if !ok {
		return nil, errors.New("wrong password or corrupted backup")
	}

	var backup VaultBackup
	if err := cbor.Unmarshal(plaintext, &backup); err != nil {
		return nil, fmt.Errorf("invalid backup payload: %w", err)
	}
	return &backup, nil
}

func pubKeyHex(key *secp256k1.PrivateKey) string {
	return hex.EncodeToString(key.PubKey().SerializeCompressed())
}
