package contact

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/visualink/studio/internal/apperr"
	"github.com/visualink/studio/internal/response"
)

// Handler holds HTTP handlers for contact and message endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new contact Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type successData struct {
	Success bool `json:"success" example:"true"`
}

// Submit godoc
//
//	@Summary		Submit contact message
//	@Description	Public contact form. Subject defaults to "No Subject". Rate limited per client IP.
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SubmitRequest	true	"Message"
//	@Success		200		{object}	successData
//	@Failure		400		{object}	response.Envelope
//	@Failure		429		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/contact [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if _, err := h.svc.Submit(r.Context(), req); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w)
}

// List godoc
//
//	@Summary		List messages
//	@Description	Returns every contact message, newest first.
//	@Tags			messages
//	@Produce		json
//	@Security		AdminSecret
//	@Success		200	{object}	response.Envelope{data=[]Message}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/messages [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.List(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, msgs)
}

// Delete godoc
//
//	@Summary		Delete message
//	@Description	Remove a contact message. Deleting a missing id succeeds.
//	@Tags			messages
//	@Produce		json
//	@Security		AdminSecret
//	@Param			id	path		int	true	"Message ID"
//	@Success		200	{object}	successData
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/messages/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.FromError(w, r, apperr.Invalid("id", "must be a positive integer"))
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w)
}
