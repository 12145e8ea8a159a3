package mpc

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/vault-service-backend/interfaces"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(EngineConfig{
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// recordingObserver captures ceremony callbacks for assertions.
type recordingObserver struct {
	qr       string
	joined   []int
	required int
	progress []int
}

func (o *recordingObserver) QRCodeReady(payload string) { o.qr = payload }
func (o *recordingObserver) DeviceJoined(joined, required int) {
	o.joined = append(o.joined, joined)
	o.required = required
}
func (o *recordingObserver) Progress(phase string, percent int) {
	o.progress = append(o.progress, percent)
}

func TestEngine_CreateAndVerifyFastVault(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	result, err := engine.CreateFastVault(ctx, interfaces.FastVaultRequest{
		Name:     "W",
		Email:    "a@b.com",
		Password: "P",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.VaultID)
	assert.NotEmpty(t, result.PublicKeyECDSA)

	code, err := engine.RevealCode(result.VaultID)
	require.NoError(t, err)
	require.Len(t, code, 6)

	vault, err := engine.VerifyVault(ctx, result.VaultID, code)
	require.NoError(t, err)
	assert.Equal(t, result.VaultID, vault.VaultID())
	assert.Equal(t, result.PublicKeyECDSA, vault.PublicKeyECDSA())

	// The pending entry is consumed; a second verify fails upstream.
	_, err = engine.VerifyVault(ctx, result.VaultID, code)
	assert.Error(t, err)
}

func TestEngine_VerifyWrongCode(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	result, err := engine.CreateFastVault(ctx, interfaces.FastVaultRequest{
		Name:     "W",
		Email:    "a@b.com",
		Password: "P",
	})
	require.NoError(t, err)

	_, err = engine.VerifyVault(ctx, result.VaultID, "000000x")
	assert.Error(t, err)

	// The right code still works after a failed attempt.
	code, err := engine.RevealCode(result.VaultID)
	require.NoError(t, err)
	_, err = engine.VerifyVault(ctx, result.VaultID, code)
	assert.NoError(t, err)
}

func TestEngine_VerifyAttemptLimit(t *testing.T) {
	engine := NewEngine(EngineConfig{
		MaxCodeAttempts: 2,
		Log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	result, err := engine.CreateFastVault(ctx, interfaces.FastVaultRequest{Name: "W", Email: "a@b.com", Password: "P"})
	require.NoError(t, err)

	_, err = engine.VerifyVault(ctx, result.VaultID, "wrong-1")
	assert.Error(t, err)
	_, err = engine.VerifyVault(ctx, result.VaultID, "wrong-2")
	assert.Error(t, err)

	// Pending entry evicted; even the right code is now rejected.
	_, err = engine.VerifyVault(ctx, result.VaultID, "anything")
	assert.Error(t, err)
}

func TestEngine_CodeSinkReceivesCode(t *testing.T) {
	var sinkEmail, sinkCode string
	engine := NewEngine(EngineConfig{
		CodeSink: func(email, code string) {
			sinkEmail = email
			sinkCode = code
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	result, err := engine.CreateFastVault(context.Background(), interfaces.FastVaultRequest{Name: "W", Email: "a@b.com", Password: "P"})
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", sinkEmail)
	revealed, err := engine.RevealCode(result.VaultID)
	require.NoError(t, err)
	assert.Equal(t, revealed, sinkCode)
}

func TestEngine_SecureVaultCeremony(t *testing.T) {
	engine := testEngine(t)
	obs := &recordingObserver{}

	vault, err := engine.CreateSecureVault(context.Background(), interfaces.SecureVaultRequest{
		Name:      "Team",
		Devices:   3,
		Threshold: 2,
	}, obs)
	require.NoError(t, err)
	assert.NotEmpty(t, vault.VaultID())

	assert.NotEmpty(t, obs.qr)
	assert.Equal(t, []int{1, 2, 3}, obs.joined)
	assert.Equal(t, 3, obs.required)
	require.NotEmpty(t, obs.progress)
	assert.Equal(t, 100, obs.progress[len(obs.progress)-1])
}

func TestEngine_SecureVaultRejectsBadThreshold(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.CreateSecureVault(context.Background(), interfaces.SecureVaultRequest{
		Name:      "Team",
		Devices:   3,
		Threshold: 5,
	}, &recordingObserver{})
	assert.Error(t, err)
}

func TestLiveVault_AddressDeterministicPerChain(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	result, err := engine.CreateFastVault(ctx, interfaces.FastVaultRequest{Name: "W", Email: "a@b.com", Password: "P"})
	require.NoError(t, err)
	code, err := engine.RevealCode(result.VaultID)
	require.NoError(t, err)
	vault, err := engine.VerifyVault(ctx, result.VaultID, code)
	require.NoError(t, err)

	btc1, err := vault.Address(ctx, "Bitcoin")
	require.NoError(t, err)
	btc2, err := vault.Address(ctx, "Bitcoin")
	require.NoError(t, err)
	eth, err := vault.Address(ctx, "Ethereum")
	require.NoError(t, err)

	assert.Equal(t, btc1, btc2)
	assert.NotEqual(t, btc1, eth)

	_, err = vault.Address(ctx, "")
	assert.Error(t, err)
}

func TestLiveVault_Sign(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()
	obs := &recordingObserver{}

	vault, err := engine.CreateSecureVault(ctx, interfaces.SecureVaultRequest{Name: "Team", Devices: 2, Threshold: 2}, obs)
	require.NoError(t, err)

	sig, err := vault.Sign(ctx, interfaces.SignRequest{Transaction: "raw-tx-bytes"})
	require.NoError(t, err)
	assert.Len(t, sig.R, 64)
	assert.Len(t, sig.S, 64)
	assert.NotEmpty(t, sig.DER)

	_, err = vault.Sign(ctx, interfaces.SignRequest{})
	assert.Error(t, err)
}

func TestLiveVault_ExportRoundTrip(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	result, err := engine.CreateFastVault(ctx, interfaces.FastVaultRequest{Name: "W", Email: "a@b.com", Password: "P"})
	require.NoError(t, err)
	code, err := engine.RevealCode(result.VaultID)
	require.NoError(t, err)
	vault, err := engine.VerifyVault(ctx, result.VaultID, code)
	require.NoError(t, err)

	require.True(t, vault.CanExport())
	encoded, err := vault.ExportAsBase64(ctx, "backup-pass")
	require.NoError(t, err)

	backup, err := DecryptVaultBackup(encoded, "backup-pass")
	require.NoError(t, err)
	assert.Equal(t, result.VaultID, backup.VaultID)
	assert.Equal(t, result.PublicKeyECDSA, backup.PubKey)
	assert.NotEmpty(t, backup.KeyShare)

	_, err = DecryptVaultBackup(encoded, "wrong-pass")
	assert.Error(t, err)
}
