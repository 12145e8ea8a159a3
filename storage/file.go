package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/keyfort/vault-service-backend/interfaces"
)

const (
	metaSuffix   = ".meta.json"
	backupSuffix = ".vault.backup"
)

// FileStore implements interfaces.MetadataStore on a local directory,
// one file per vault plus one backup file per export.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates a file store rooted at dir, creating the directory
// if needed. Callers treat a failure here as fatal.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// validID rejects ids that could escape the storage directory. Vault ids
// are SDK-assigned opaque strings, but they also arrive via URL paths.
func validID(vaultID string) bool {
	return vaultID != "" && !strings.ContainsAny(vaultID, `/\`) && vaultID != "." && vaultID != ".."
}

// Save serializes and writes a record, overwriting any existing file for
// that id. Not atomic.
func (s *FileStore) Save(ctx context.Context, meta *interfaces.VaultMetadata) error {
	if !validID(meta.VaultID) {
		return fmt.Errorf("invalid vault id %q", meta.VaultID)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	path := s.metaPath(meta.VaultID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	s.log.Debug("Saved vault metadata",
		slog.String("vaultId", meta.VaultID),
		slog.String("path", path))
	return nil
}

// Get reads a record. A missing file is absence, (nil, nil); any other
// failure, including a corrupt record, propagates as an error.
func (s *FileStore) Get(ctx context.Context, vaultID string) (*interfaces.VaultMetadata, error) {
	if !validID(vaultID) {
		return nil, nil
	}

	data, err := os.ReadFile(s.metaPath(vaultID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta interfaces.VaultMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", vaultID, err)
	}
	return &meta, nil
}

// List enumerates all records, filtering by exact UserID match when userID
// is non-empty. Best-effort: an enumeration failure yields an empty slice,
// and unparsable records are skipped. Both degrade paths are logged so
// storage corruption stays visible.
func (s *FileStore) List(ctx context.Context, userID string) ([]*interfaces.VaultMetadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Error("Failed to enumerate storage directory", "err", err, slog.String("dir", s.dir))
		return []*interfaces.VaultMetadata{}, nil
	}

	vaults := make([]*interfaces.VaultMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metaSuffix) {
			continue
		}

		vaultID := strings.TrimSuffix(entry.Name(), metaSuffix)
		meta, err := s.Get(ctx, vaultID)
		if err != nil || meta == nil {
			s.log.Error("Skipping unreadable vault record", "err", err, slog.String("file", entry.Name()))
			continue
		}

		if userID != "" && meta.UserID != userID {
			continue
		}
		vaults = append(vaults, meta)
	}
	return vaults, nil
}

// Update merges the partial update into an existing record and re-saves
// it. The merge never clears Verified and unions Chains instead of
// replacing them.
func (s *FileStore) Update(ctx context.Context, vaultID string, update interfaces.MetadataUpdate) (*interfaces.VaultMetadata, error) {
	meta, err := s.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, interfaces.ErrVaultNotFound
	}

	if update.Verified != nil && *update.Verified {
		meta.Verified = true
	}
	for _, chain := range update.Chains {
		if !meta.HasChain(chain) {
			meta.Chains = append(meta.Chains, chain)
		}
	}

	if err := s.Save(ctx, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// SaveExport stores the single opaque backup blob for a vault.
func (s *FileStore) SaveExport(ctx context.Context, vaultID string, payload []byte) error {
	if !validID(vaultID) {
		return fmt.Errorf("invalid vault id %q", vaultID)
	}

	path := s.backupPath(vaultID)
	if err := os.WriteFile(path, payload, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	s.log.Debug("Saved vault backup",
		slog.String("vaultId", vaultID),
		slog.Int("size", len(payload)))
	return nil
}

// GetExport retrieves the backup blob saved by SaveExport.
func (s *FileStore) GetExport(ctx context.Context, vaultID string) ([]byte, error) {
	if !validID(vaultID) {
		return nil, interfaces.ErrBackupNotFound
	}

	data, err := os.ReadFile(s.backupPath(vaultID))
	if os.IsNotExist(err) {
		return nil, interfaces.ErrBackupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return data, nil
}

// Delete removes the metadata file. Missing files are not an error.
func (s *FileStore) Delete(ctx context.Context, vaultID string) error {
	if !validID(vaultID) {
		return nil
	}

	err := os.Remove(s.metaPath(vaultID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

func (s *FileStore) metaPath(vaultID string) string {
	return filepath.Join(s.dir, vaultID+metaSuffix)
}

func (s *FileStore) backupPath(vaultID string) string {
	return filepath.Join(s.dir, vaultID+backupSuffix)
}
