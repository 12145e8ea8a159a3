// Package common holds build information and logger setup shared by all
// binaries in this repository.
package common

// PackageName identifies the service in logs and metrics.
const PackageName = "vault-service-backend"

// Version is set at build time via -ldflags.
var Version = "dev"
