// Package storage provides the file-backed metadata store.
//
// Every vault gets one JSON file for its metadata record and, after an
// export, one file holding the opaque backup blob:
//
//	<dir>/<vaultId>.meta.json
//	<dir>/<vaultId>.vault.backup
//
// Writes are plain overwrites with no atomicity guarantee; a crash
// mid-write can corrupt a record. Reads treat a missing file as absence
// and a decode failure as an error to propagate, never as absence.
//
// The store does no locking. The orchestrator serializes its
// read-modify-write sequences; nothing else mutates the directory.
package storage
