// Package vault contains the orchestrator sitting between the HTTP layer,
// the external MPC SDK and the metadata store.
//
// The Service is the only component that talks to the SDK. It owns two
// process-lifetime maps: vault id → unlocked live handle and vault id →
// secure-vault pairing session. Both are pure runtime state — a restart
// loses every handle, and clients must verify again to unlock their
// vaults in the new process ("please re-verify"). Metadata, by contrast,
// is durable in the store.
//
// Fast-vault lifecycle per vault:
//
//	created (metadata exists, verified=false, no handle)
//	  └─ VerifyVault ─→ verified/loaded (verified=true, handle cached)
//
// Secure vaults skip verification: the pairing ceremony resolves with
// an unlocked handle and the metadata is written verified=true.
package vault
