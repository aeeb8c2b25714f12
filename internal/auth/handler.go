package auth

import (
	"net/http"
	"strings"

	"github.com/visualink/studio/internal/response"
)

// Handler holds HTTP handlers for admin session endpoints.
type Handler struct {
	gate *Gate
}

// NewHandler creates a new auth Handler.
func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// CreateSession godoc
//
//	@Summary		Open admin session
//	@Description	Exchange the raw admin secret (Authorization header) for a short-lived session token. The token is accepted as "Authorization: Bearer {token}" or as the "token" query parameter.
//	@Tags			admin
//	@Produce		json
//	@Security		AdminSecret
//	@Success		201	{object}	response.Envelope{data=Session}
//	@Failure		401	{object}	response.Envelope
//	@Router			/admin/session [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	secret := strings.TrimSpace(r.Header.Get("Authorization"))
	if err := h.gate.CheckSecret(secret); err != nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	session, err := h.gate.IssueSession()
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, session)
}
