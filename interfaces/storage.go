package interfaces

import "context"

// MetadataStore is durable key-value storage for VaultMetadata records and
// raw export blobs, keyed by vault id.
//
// The store performs no locking of its own; callers serialize
// read-modify-write sequences (the orchestrator does this under its own
// mutex).
type MetadataStore interface {
	// Save writes a record, overwriting any existing one for the id.
	Save(ctx context.Context, meta *VaultMetadata) error

	// Get reads a record. Absence is not an error: Get returns
	// (nil, nil) when no record exists and an error only for real I/O
	// or decode failures.
	Get(ctx context.Context, vaultID string) (*VaultMetadata, error)

	// List enumerates all records, filtered by exact UserID match when
	// userID is non-empty. Enumeration failure degrades to an empty
	// result rather than an error; unparsable records are skipped.
	List(ctx context.Context, userID string) ([]*VaultMetadata, error)

	// Update merges the partial update into an existing record and
	// re-saves it. Returns ErrVaultNotFound when no record exists.
	Update(ctx context.Context, vaultID string, update MetadataUpdate) (*VaultMetadata, error)

	// SaveExport stores the single opaque backup blob for a vault,
	// overwriting any previous one.
	SaveExport(ctx context.Context, vaultID string, payload []byte) error

	// GetExport retrieves the backup blob. Returns ErrBackupNotFound
	// when none was ever saved.
	GetExport(ctx context.Context, vaultID string) ([]byte, error)

	// Delete removes the metadata record. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, vaultID string) error
}
