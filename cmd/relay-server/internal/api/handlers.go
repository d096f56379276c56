// Package api provides HTTP handlers for the relay server REST API.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/coregx/relay"
	"github.com/coregx/relay/auth"
	"github.com/coregx/relay/model"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	store    *relay.TopicStore
	issuer   *auth.Issuer
	verifier relay.Verifier
	logger   relay.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	store *relay.TopicStore,
	issuer *auth.Issuer,
	verifier relay.Verifier,
	logger relay.Logger,
) *Handler {
	return &Handler{
		store:    store,
		issuer:   issuer,
		verifier: verifier,
		logger:   logger,
	}
}

// Response is the envelope every endpoint replies with.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the login request.
func (m LoginRequest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Username, validation.Required),
		validation.Field(&m.Password, validation.Required),
	)
}

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respond(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, "Invalid JSON", nil)
		return
	}
	if err := req.Validate(); err != nil {
		h.respond(w, http.StatusBadRequest, "username and password are required", nil)
		return
	}

	token, err := h.issuer.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if relay.IsAuthError(err) {
			h.respond(w, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		h.logger.Errorf("Login failed: %v", err)
		h.respond(w, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	h.respond(w, http.StatusOK, "Login successful", map[string]string{"token": token})
}

// HandlePubSub handles /api/pubsub: POST creates a topic, GET lists live
// topics, DELETE soft-deletes a batch by id. All three require authentication.
func (h *Handler) HandlePubSub(w http.ResponseWriter, r *http.Request) {
	if !h.authenticate(w, r) {
		return
	}

	switch r.Method {
	case http.MethodPost:
		topic, err := h.store.Create(r.Context())
		if err != nil {
			h.logger.Errorf("Failed to create topic: %v", err)
			h.respond(w, http.StatusInternalServerError, "Failed to create topic", nil)
			return
		}
		h.respond(w, http.StatusOK, "Pubsub created", []model.Topic{topic})

	case http.MethodGet:
		topics, err := h.store.List(r.Context())
		if err != nil {
			h.logger.Errorf("Failed to list topics: %v", err)
			h.respond(w, http.StatusInternalServerError, "Failed to list topics", nil)
			return
		}
		h.respond(w, http.StatusOK, "Topics retrieved", topics)

	case http.MethodDelete:
		var req relay.DeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respond(w, http.StatusBadRequest, "Invalid JSON", nil)
			return
		}
		count, err := h.store.SoftDelete(r.Context(), req.IDs)
		if err != nil {
			if relay.IsValidation(err) {
				h.respond(w, http.StatusBadRequest, "ids must be a non-empty list of topic ids", nil)
				return
			}
			h.logger.Errorf("Failed to delete topics: %v", err)
			h.respond(w, http.StatusInternalServerError, "Failed to delete topics", nil)
			return
		}
		h.respond(w, http.StatusOK, "Topics deleted", map[string]int64{"deleted": count})

	default:
		h.respond(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}

// HandleTopic handles the /api/pubsub/ subtree:
//
//	GET /api/pubsub/{id}              (authenticated)
//	GET /api/pubsub/{id}/share        (authenticated)
//	GET /api/pubsub/shared/{sharedId} (public)
func (h *Handler) HandleTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respond(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	parts := splitPath(r.URL.Path)
	// parts[0] == "api", parts[1] == "pubsub"
	switch {
	case len(parts) == 4 && parts[2] == "shared":
		h.handleShared(w, r, parts[3])
	case len(parts) == 3:
		h.handleGetByID(w, r, parts[2])
	case len(parts) == 4 && parts[3] == "share":
		h.handleShare(w, r, parts[2])
	default:
		h.respond(w, http.StatusNotFound, "Not found", nil)
	}
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request, id string) {
	if !h.authenticate(w, r) {
		return
	}

	topic, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if relay.IsNoData(err) {
			// Unknown and soft-deleted topics surface as an empty result.
			h.respond(w, http.StatusOK, "Topic retrieved", []model.Topic{})
			return
		}
		h.logger.Errorf("Failed to load topic %s: %v", id, err)
		h.respond(w, http.StatusInternalServerError, "Failed to load topic", nil)
		return
	}
	h.respond(w, http.StatusOK, "Topic retrieved", []model.Topic{topic})
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request, id string) {
	if !h.authenticate(w, r) {
		return
	}

	sharedID, err := h.store.Share(r.Context(), id)
	if err != nil {
		if relay.IsNoData(err) {
			h.respond(w, http.StatusNotFound, "Topic not found", nil)
			return
		}
		h.logger.Errorf("Failed to share topic %s: %v", id, err)
		h.respond(w, http.StatusInternalServerError, "Failed to share topic", nil)
		return
	}
	h.respond(w, http.StatusOK, "Topic shared", map[string]string{"sharedId": sharedID})
}

// handleShared is the only read path that skips authentication.
func (h *Handler) handleShared(w http.ResponseWriter, r *http.Request, sharedID string) {
	topic, err := h.store.GetBySharedID(r.Context(), sharedID)
	if err != nil {
		if relay.IsNoData(err) {
			h.respond(w, http.StatusNotFound, "Topic not found", nil)
			return
		}
		h.logger.Errorf("Failed to load shared topic: %v", err)
		h.respond(w, http.StatusInternalServerError, "Failed to load topic", nil)
		return
	}
	h.respond(w, http.StatusOK, "Topic retrieved", topic)
}

// HandlePing handles GET /api/ping.
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respond(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}
	h.respond(w, http.StatusOK, "pong", map[string]interface{}{
		"timestamp": time.Now().UTC(),
	})
}

// authenticate verifies the request credential and writes a 401 on failure.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) bool {
	credential := r.Header.Get("Authorization")
	if credential == "" {
		credential = r.URL.Query().Get("authorization")
	}
	if _, err := h.verifier.Verify(r.Context(), credential); err != nil {
		h.respond(w, http.StatusUnauthorized, "Unauthorized", nil)
		return false
	}
	return true
}

// respond sends the response envelope.
func (h *Handler) respond(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{Status: status, Message: message, Data: data}); err != nil {
		h.logger.Errorf("Failed to write response: %v", err)
	}
}

// splitPath splits a URL path into its non-empty segments.
func splitPath(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// CORS wraps next with permissive cross-origin headers and answers
// preflight requests with 204.
func CORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
