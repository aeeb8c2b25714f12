package upload

import (
	"encoding/json"
	"net/http"

	"github.com/visualink/studio/internal/response"
)

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	broker *Broker
}

// NewHandler creates a new upload Handler.
func NewHandler(broker *Broker) *Handler {
	return &Handler{broker: broker}
}

// CreateTicket godoc
//
//	@Summary		Request upload ticket
//	@Description	Returns a presigned PUT URL valid for about an hour and the public URL the object will have. The client must PUT the bytes with the returned contentType. When contentType is omitted it is inferred from the filename extension.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Security		AdminSecret
//	@Param			request	body		TicketRequest	true	"File to upload"
//	@Success		200		{object}	response.Envelope{data=Ticket}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/uploads [post]
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	ticket, err := h.broker.Issue(r.Context(), req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, ticket)
}
