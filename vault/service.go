package vault

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keyfort/vault-service-backend/interfaces"
	"github.com/keyfort/vault-service-backend/metrics"
)

// Service implements interfaces.VaultOrchestrator. Constructed once at
// startup and injected into the HTTP layer.
//
// The handle and session maps are guarded by mu: requests are served on
// separate goroutines, so unlike a single-threaded runtime the maps need
// explicit synchronization. Metadata read-merge-write sequences are
// serialized by metaMu for the same reason (the store itself does no
// locking).
type Service struct {
	sdk   interfaces.VaultSDK
	store interfaces.MetadataStore
	log   *slog.Logger

	mu       sync.RWMutex
	handles  map[string]interfaces.LiveVault
	sessions map[string]*interfaces.SecureVaultSession

	metaMu sync.Mutex
}

// NewService creates the orchestrator with its dependencies.
func NewService(sdk interfaces.VaultSDK, store interfaces.MetadataStore, log *slog.Logger) *Service {
	return &Service{
		sdk:      sdk,
		store:    store,
		log:      log,
		handles:  make(map[string]interfaces.LiveVault),
		sessions: make(map[string]*interfaces.SecureVaultSession),
	}
}

// CreateFastVault delegates 2-of-2 key-share initialization to the SDK and
// writes the unverified metadata record. The SDK sends the verification
// code out-of-band; no live handle exists yet. userID is an optional owner
// tag recorded for list filtering.
func (s *Service) CreateFastVault(ctx context.Context, name, email, password, userID string) (string, error) {
	result, err := s.sdk.CreateFastVault(ctx, interfaces.FastVaultRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", fmt.Errorf("fast vault creation failed: %w", err)
	}

	meta := &interfaces.VaultMetadata{
		VaultID:        result.VaultID,
		Name:           name,
		Email:          email,
		UserID:         userID,
		PublicKeyECDSA: result.PublicKeyECDSA,
		CreatedAt:      time.Now().UTC(),
		Verified:       false,
		Chains:         []string{},
	}
	if err := s.store.Save(ctx, meta); err != nil {
		return "", err
	}

	metrics.IncVaultCreated("fast")
	s.log.Info("Fast vault created", slog.String("vaultId", result.VaultID))
	return result.VaultID, nil
}

// VerifyVault checks the out-of-band code with the SDK. On success the
// returned live handle is cached and the metadata's verified flag flips to
// true — once flipped it never reverts.
func (s *Service) VerifyVault(ctx context.Context, vaultID, code string) error {
	meta, err := s.store.Get(ctx, vaultID)
	if err != nil {
		return err
	}
	if meta == nil {
		return interfaces.ErrVaultNotFound
	}

	handle, err := s.sdk.VerifyVault(ctx, vaultID, code)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	verified := true
	s.metaMu.Lock()
	_, err = s.store.Update(ctx, vaultID, interfaces.MetadataUpdate{Verified: &verified})
	s.metaMu.Unlock()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.handles[vaultID] = handle
	s.mu.Unlock()

	metrics.IncVaultVerified()
	s.log.Info("Vault verified and loaded", slog.String("vaultId", vaultID))
	return nil
}

// loadedHandle returns the cached live handle for a vault. When no handle
// is cached the failure is classified: an unknown id is not-found, a known
// but unverified vault is not-verified, and a verified vault whose handle
// was lost (process restart) is not-loaded — the client must verify again.
func (s *Service) loadedHandle(ctx context.Context, vaultID string) (interfaces.LiveVault, error) {
	s.mu.RLock()
	handle, ok := s.handles[vaultID]
	s.mu.RUnlock()
	if ok {
		return handle, nil
	}

	meta, err := s.store.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	switch {
	case meta == nil:
		return nil, interfaces.ErrVaultNotFound
	case !meta.Verified:
		return nil, interfaces.ErrVaultNotVerified
	default:
		return nil, interfaces.ErrVaultNotLoaded
	}
}

// GetAddress derives the vault's address on a chain and appends the chain
// to the metadata's chain set. The set only ever grows.
func (s *Service) GetAddress(ctx context.Context, vaultID, chain string) (string, error) {
	handle, err := s.loadedHandle(ctx, vaultID)
	if err != nil {
		return "", err
	}

	address, err := handle.Address(ctx, chain)
	if err != nil {
		return "", fmt.Errorf("address derivation failed: %w", err)
	}

	s.metaMu.Lock()
	_, err = s.store.Update(ctx, vaultID, interfaces.MetadataUpdate{Chains: []string{chain}})
	s.metaMu.Unlock()
	if err != nil {
		return "", err
	}

	return address, nil
}

// SignTransaction delegates signing entirely to the live handle. The
// payload and result are opaque to this layer.
func (s *Service) SignTransaction(ctx context.Context, vaultID string, req interfaces.SignRequest) (*interfaces.Signature, error) {
	handle, err := s.loadedHandle(ctx, vaultID)
	if err != nil {
		metrics.IncSignRequest("rejected")
		return nil, err
	}

	sig, err := handle.Sign(ctx, req)
	if err != nil {
		metrics.IncSignRequest("failed")
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	metrics.IncSignRequest("ok")
	return sig, nil
}

// ExportVault produces a password-encrypted backup through the live
// handle, persists the blob and returns it.
func (s *Service) ExportVault(ctx context.Context, vaultID, password string) (string, error) {
	handle, err := s.loadedHandle(ctx, vaultID)
	if err != nil {
		metrics.IncExport("rejected")
		return "", err
	}

	if !handle.CanExport() {
		metrics.IncExport("rejected")
		return "", interfaces.ErrExportUnsupported
	}

	backup, err := handle.ExportAsBase64(ctx, password)
	if err != nil {
		metrics.IncExport("failed")
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := s.store.SaveExport(ctx, vaultID, []byte(backup)); err != nil {
		metrics.IncExport("failed")
		return "", err
	}

	metrics.IncExport("ok")
	s.log.Info("Vault exported", slog.String("vaultId", vaultID))
	return backup, nil
}

// sessionObserver funnels the SDK's ceremony callbacks into the session
// value. The ceremony runs synchronously in the calling goroutine and the
// session is published to the session map only after the call returns, so
// the mutations here need no locking.
type sessionObserver struct {
	session *interfaces.SecureVaultSession
}

func (o *sessionObserver) QRCodeReady(payload string) {
	o.session.QRCode = payload
}

func (o *sessionObserver) DeviceJoined(joined, required int) {
	o.session.DevicesJoined = joined
	o.session.DevicesRequired = required
	if joined == required {
		o.session.Status = interfaces.SessionReady
	}
}

func (o *sessionObserver) Progress(phase string, percent int) {
	// Progress events are informational only; the session tracks device
	// pairing, not keygen phases.
}

// CreateSecureVault runs the full n-of-m pairing ceremony. The call blocks
// until every device has joined; other requests proceed on their own
// goroutines meanwhile. On success the metadata is written verified=true
// (secure vaults have no email step), the handle is cached and the
// finished session becomes queryable.
func (s *Service) CreateSecureVault(ctx context.Context, req interfaces.SecureVaultRequest) (*interfaces.SecureVaultSession, error) {
	session := &interfaces.SecureVaultSession{
		SessionID:       uuid.NewString(),
		DevicesRequired: req.Devices,
		Status:          interfaces.SessionPending,
	}

	handle, err := s.sdk.CreateSecureVault(ctx, req, &sessionObserver{session: session})
	if err != nil {
		session.Status = interfaces.SessionFailed
		return nil, fmt.Errorf("secure vault ceremony failed: %w", err)
	}

	vaultID := handle.VaultID()
	session.VaultID = vaultID

	meta := &interfaces.VaultMetadata{
		VaultID:        vaultID,
		Name:           req.Name,
		PublicKeyECDSA: handle.PublicKeyECDSA(),
		CreatedAt:      time.Now().UTC(),
		Verified:       true,
		Chains:         []string{},
	}
	if err := s.store.Save(ctx, meta); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.handles[vaultID] = handle
	s.sessions[vaultID] = session
	s.mu.Unlock()

	metrics.IncVaultCreated("secure")
	s.log.Info("Secure vault created",
		slog.String("vaultId", vaultID),
		slog.Int("devices", req.Devices),
		slog.Int("threshold", req.Threshold))

	snapshot := *session
	return &snapshot, nil
}

// GetSecureVaultSession looks up a finished pairing session. Sessions are
// in-memory only; there is no fallback to storage.
func (s *Service) GetSecureVaultSession(vaultID string) (*interfaces.SecureVaultSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[vaultID]
	s.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}

	snapshot := *session
	return &snapshot, nil
}

// ListVaults passes through to the metadata store.
func (s *Service) ListVaults(ctx context.Context, userID string) ([]*interfaces.VaultMetadata, error) {
	return s.store.List(ctx, userID)
}

// GetVaultMetadata passes through to the metadata store, mapping absence
// to ErrVaultNotFound for the 404 path.
func (s *Service) GetVaultMetadata(ctx context.Context, vaultID string) (*interfaces.VaultMetadata, error) {
	meta, err := s.store.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, interfaces.ErrVaultNotFound
	}
	return meta, nil
}
