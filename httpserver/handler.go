package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/keyfort/vault-service-backend/common"
	"github.com/keyfort/vault-service-backend/interfaces"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

func badRequest(msg string) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New(msg)}
}

// apiResponse is the uniform envelope every endpoint emits.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler processes HTTP requests for the vault service. It validates
// request fields and delegates every operation to the orchestrator.
type Handler struct {
	service interfaces.VaultOrchestrator
	log     *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified
// dependencies.
func NewHandler(service interfaces.VaultOrchestrator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// writeData emits the success envelope.
func (h *Handler) writeData(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data, Message: message}); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// writeError converts an error to a status code and the failure envelope.
// This is the single mapping point: a RequestError carries its own code,
// the sentinel taxonomy maps to 404/400, anything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		status = reqErr.StatusCode
	case errors.Is(err, interfaces.ErrVaultNotFound),
		errors.Is(err, interfaces.ErrSessionNotFound),
		errors.Is(err, interfaces.ErrBackupNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interfaces.ErrVaultNotVerified),
		errors.Is(err, interfaces.ErrVaultNotLoaded),
		errors.Is(err, interfaces.ErrExportUnsupported):
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(apiResponse{Success: false, Error: err.Error()}); encErr != nil {
		h.log.Error("Failed to encode error response", "err", encErr)
	}
}

// decodeBody decodes a JSON request body into dst with a size cap.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON body")
	}
	return nil
}

// HandleHealth reports service liveness for the public API surface.
//
// URL format: GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   common.PackageName,
	})
}

// HandleIndex lists the API surface.
//
// URL format: GET /
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, http.StatusOK, map[string]any{
		"service": common.PackageName,
		"version": common.Version,
		"endpoints": map[string]string{
			"POST /api/vaults/fast":                "create a fast vault (2-of-2, email verification)",
			"POST /api/vaults/secure":              "create a secure vault (n-of-m device pairing)",
			"POST /api/vaults/{id}/verify":         "verify a fast vault with its emailed code",
			"GET /api/vaults/{id}/address/{chain}": "derive the vault address on a chain",
			"POST /api/vaults/{id}/sign":           "sign a transaction payload",
			"GET /api/vaults":                      "list vaults, optionally filtered by userId",
			"GET /api/vaults/{id}":                 "vault metadata",
			"POST /api/vaults/{id}/export":         "password-encrypted vault backup",
			"GET /api/vaults/{id}/session":         "secure vault pairing session",
		},
	}, "")
}

type fastVaultRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserID   string `json:"userId,omitempty"`
}

// HandleCreateFastVault creates a 2-of-2 vault. The verification code goes
// out-of-band; the vault stays locked until verified.
//
// URL format: POST /api/vaults/fast
// Required fields: name, email, password
func (h *Handler) HandleCreateFastVault(w http.ResponseWriter, r *http.Request) {
	var req fastVaultRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.writeError(w, badRequest("name, email and password are required"))
		return
	}

	vaultID, err := h.service.CreateFastVault(r.Context(), req.Name, req.Email, req.Password, req.UserID)
	if err != nil {
		h.log.Error("Fast vault creation failed", "err", err)
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusCreated, map[string]string{"vaultId": vaultID},
		"Vault created. Check your email for the verification code.")
}

type secureVaultRequest struct {
	Name      string `json:"name"`
	Devices   int    `json:"devices"`
	Threshold int    `json:"threshold"`
	Password  string `json:"password,omitempty"`
}

// HandleCreateSecureVault runs the n-of-m pairing ceremony and returns the
// finished session snapshot.
//
// URL format: POST /api/vaults/secure
// Required fields: name, devices, threshold (threshold ≤ devices)
func (h *Handler) HandleCreateSecureVault(w http.ResponseWriter, r *http.Request) {
	var req secureVaultRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Name == "" || req.Devices == 0 || req.Threshold == 0 {
		h.writeError(w, badRequest("name, devices and threshold are required"))
		return
	}
	if req.Threshold > req.Devices {
		h.writeError(w, badRequest("threshold cannot exceed devices"))
		return
	}

	session, err := h.service.CreateSecureVault(r.Context(), interfaces.SecureVaultRequest{
		Name:      req.Name,
		Devices:   req.Devices,
		Threshold: req.Threshold,
		Password:  req.Password,
	})
	if err != nil {
		h.log.Error("Secure vault creation failed", "err", err)
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusCreated, session, "Secure vault created")
}

type verifyRequest struct {
	VerificationCode string `json:"verificationCode"`
}

// HandleVerifyVault checks the out-of-band code and unlocks the vault in
// this process.
//
// URL format: POST /api/vaults/{id}/verify
// Required fields: verificationCode
func (h *Handler) HandleVerifyVault(w http.ResponseWriter, r *http.Request) {
	vaultID := r.PathValue("id")

	var req verifyRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.VerificationCode == "" {
		h.writeError(w, badRequest("verificationCode is required"))
		return
	}

	if err := h.service.VerifyVault(r.Context(), vaultID, req.VerificationCode); err != nil {
		h.log.Error("Vault verification failed", "err", err, slog.String("vaultId", vaultID))
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]any{"vaultId": vaultID, "verified": true},
		"Vault verified")
}

// HandleGetAddress derives the vault's address on a chain.
//
// URL format: GET /api/vaults/{id}/address/{chain}
func (h *Handler) HandleGetAddress(w http.ResponseWriter, r *http.Request) {
	vaultID := r.PathValue("id")
	chain := r.PathValue("chain")

	address, err := h.service.GetAddress(r.Context(), vaultID, chain)
	if err != nil {
		h.log.Error("Address derivation failed", "err", err,
			slog.String("vaultId", vaultID), slog.String("chain", chain))
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]string{"chain": chain, "address": address}, "")
}

type signRequest struct {
	Transaction string         `json:"transaction"`
	Chain       string         `json:"chain,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// HandleSignTransaction signs an opaque transaction payload.
//
// URL format: POST /api/vaults/{id}/sign
// Required fields: transaction
func (h *Handler) HandleSignTransaction(w http.ResponseWriter, r *http.Request) {
	vaultID := r.PathValue("id")

	var req signRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Transaction == "" {
		h.writeError(w, badRequest("transaction is required"))
		return
	}

	sig, err := h.service.SignTransaction(r.Context(), vaultID, interfaces.SignRequest{
		Transaction: req.Transaction,
		Chain:       req.Chain,
		Options:     req.Options,
	})
	if err != nil {
		h.log.Error("Signing failed", "err", err, slog.String("vaultId", vaultID))
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]any{"signature": sig}, "")
}

// HandleListVaults lists vault metadata, filtered by the optional userId
// query parameter.
//
// URL format: GET /api/vaults?userId=...
func (h *Handler) HandleListVaults(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	vaults, err := h.service.ListVaults(r.Context(), userID)
	if err != nil {
		h.log.Error("Vault listing failed", "err", err)
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]any{"vaults": vaults}, "")
}

// HandleGetVault returns a vault's metadata record.
//
// URL format: GET /api/vaults/{id}
func (h *Handler) HandleGetVault(w http.ResponseWriter, r *http.Request) {
	vaultID := r.PathValue("id")

	meta, err := h.service.GetVaultMetadata(r.Context(), vaultID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, meta, "")
}

type exportRequest struct {
	Password string `json:"password"`
}

// HandleExportVault produces a password-encrypted, base64-encoded backup.
//
// URL format: POST /api/vaults/{id}/export
// Required fields: password
func (h *Handler) HandleExportVault(w http.ResponseWriter, r *http.Request) {
	vaultID := r.PathValue("id")

	var req exportRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Password == "" {
		h.writeError(w, badRequest("password is required"))
		return
	}

	backup, err := h.service.ExportVault(r.Context(), vaultID, req.Password)
	if err != nil {
		h.log.Error("Export failed", "err", err, slog.String("vaultId", vaultID))
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]string{"backup": backup}, "")
}

// HandleGetSession returns the in-memory pairing session for a secure
// vault.
//
// URL format: GET /api/vaults/{id}/session
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	vaultID := r.PathValue("id")

	session, err := h.service.GetSecureVaultSession(vaultID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, session, "")
}
