package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/votis/wallet-relay/interfaces"
	"github.com/votis/wallet-relay/normalize"
	"github.com/votis/wallet-relay/session"
)

// SessionService is the session negotiation surface the handler consumes.
// Implemented by session.Negotiator.
type SessionService interface {
	CreateReadOnly(ctx context.Context, orgID, userID string) (map[string]any, error)
	CreateReadWrite(ctx context.Context, orgID, userID, targetPublicKeyHex, ephemeralPrivateKeyHex string) (*session.SessionBundle, error)
	DecryptBundle(ciphertextHex, privateKeyHex string) (*interfaces.Credentials, error)
}

// Handler processes inbound API requests from the web/controller layer and
// maps them onto the relay and session negotiator.
type Handler struct {
	executor interfaces.ActivityExecutor
	sessions SessionService
	log      *slog.Logger
}

// NewHandler creates a handler with the given collaborators.
func NewHandler(executor interfaces.ActivityExecutor, sessions SessionService, log *slog.Logger) *Handler {
	return &Handler{
		executor: executor,
		sessions: sessions,
		log:      log,
	}
}

// RegisterRoutes mounts the API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/activity", h.HandleActivity)
	r.Post("/api/v1/sessions/read-only", h.HandleReadOnlySession)
	r.Post("/api/v1/sessions/read-write", h.HandleReadWriteSession)
	r.Post("/api/v1/sessions/decrypt", h.HandleDecryptBundle)
}

type activityRequest struct {
	// Body is the client-signed request body, carried verbatim.
	Body json.RawMessage `json:"body"`

	// Stamp is the client-produced signature over Body.
	Stamp string `json:"stamp"`

	ActivityType string `json:"activity_type"`
	AuthMode     string `json:"auth_mode"`
}

type activityResponse struct {
	ActivityID string                    `json:"activity_id"`
	Status     interfaces.ActivityStatus `json:"status"`
	Record     *normalize.Record         `json:"record"`
}

// HandleActivity relays one client-signed activity and returns the
// normalized canonical record alongside the provider's activity id and
// status. Pending activities come back with a nulled record; polling is the
// caller's responsibility.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, interfaces.WrapError(interfaces.KindInvalidInput, err, "could not decode request"))
		return
	}

	authMode, err := interfaces.NewAuthMode(req.AuthMode)
	if err != nil {
		writeError(w, interfaces.WrapError(interfaces.KindInvalidInput, err, "bad auth mode"))
		return
	}

	env, err := h.executor.Execute(r.Context(), interfaces.StampedRequest{
		Body:         req.Body,
		Stamp:        req.Stamp,
		ActivityType: interfaces.ActivityType(req.ActivityType),
		AuthMode:     authMode,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activityResponse{
		ActivityID: env.ID,
		Status:     env.Status,
		Record:     normalize.Normalize(env),
	})
}

type readOnlySessionRequest struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id,omitempty"`
}

// HandleReadOnlySession negotiates a read-only session.
func (h *Handler) HandleReadOnlySession(w http.ResponseWriter, r *http.Request) {
	var req readOnlySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, interfaces.WrapError(interfaces.KindInvalidInput, err, "could not decode request"))
		return
	}

	result, err := h.sessions.CreateReadOnly(r.Context(), req.OrganizationID, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type readWriteSessionRequest struct {
	OrganizationID      string `json:"organization_id"`
	UserID              string `json:"user_id,omitempty"`
	TargetPublicKey     string `json:"target_public_key"`
	EphemeralPrivateKey string `json:"ephemeral_private_key"`
}

type readWriteSessionResponse struct {
	Credentials interfaces.Credentials     `json:"credentials"`
	Metadata    interfaces.SessionMetadata `json:"metadata"`
}

// HandleReadWriteSession negotiates a read-write session. The credentials in
// the response are returned exactly once and are not retained server-side.
func (h *Handler) HandleReadWriteSession(w http.ResponseWriter, r *http.Request) {
	var req readWriteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, interfaces.WrapError(interfaces.KindInvalidInput, err, "could not decode request"))
		return
	}

	bundle, err := h.sessions.CreateReadWrite(r.Context(),
		req.OrganizationID, req.UserID, req.TargetPublicKey, req.EphemeralPrivateKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readWriteSessionResponse{
		Credentials: bundle.Credentials,
		Metadata:    bundle.Metadata,
	})
}

type decryptBundleRequest struct {
	CredentialBundle    string `json:"credential_bundle"`
	EphemeralPrivateKey string `json:"ephemeral_private_key"`
}

// HandleDecryptBundle decrypts a previously-issued credential bundle, for
// callers that held onto one after a dropped response.
func (h *Handler) HandleDecryptBundle(w http.ResponseWriter, r *http.Request) {
	var req decryptBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, interfaces.WrapError(interfaces.KindInvalidInput, err, "could not decode request"))
		return
	}

	credentials, err := h.sessions.DecryptBundle(req.CredentialBundle, req.EphemeralPrivateKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, credentials)
}

type errorResponse struct {
	Error          string `json:"error"`
	Kind           string `json:"kind,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var relayErr *interfaces.Error
	if errors.As(err, &relayErr) {
		writeJSON(w, interfaces.HTTPStatus(relayErr.Kind), errorResponse{
			Error:          relayErr.Message,
			Kind:           string(relayErr.Kind),
			UpstreamStatus: relayErr.UpstreamStatus,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
