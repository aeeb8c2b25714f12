package gallery

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/visualink/studio/internal/apperr"
	"github.com/visualink/studio/internal/response"
)

// Handler holds HTTP handlers for gallery endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new gallery Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type successData struct {
	Success bool `json:"success" example:"true"`
}

// List godoc
//
//	@Summary		List gallery items
//	@Description	Returns every published item, newest first. No authentication required.
//	@Tags			gallery
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Item}
//	@Failure		500	{object}	response.Envelope
//	@Router			/gallery [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, items)
}

// Create godoc
//
//	@Summary		Create gallery item
//	@Description	Persist metadata for media already uploaded through a ticket. Category defaults to "general".
//	@Tags			gallery
//	@Accept			json
//	@Produce		json
//	@Security		AdminSecret
//	@Param			request	body		CreateRequest	true	"Item metadata"
//	@Success		201		{object}	response.Envelope{data=Item}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/gallery [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	it, err := h.svc.Create(r.Context(), req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, it)
}

// Update godoc
//
//	@Summary		Update gallery item
//	@Description	Change title, category or media URL. Omitted fields are left unchanged. When url differs from oldUrl the old object is removed from storage (best effort).
//	@Tags			gallery
//	@Accept			json
//	@Produce		json
//	@Security		AdminSecret
//	@Param			id		path		int				true	"Item ID"
//	@Param			request	body		UpdateRequest	true	"Fields to change"
//	@Success		200		{object}	response.Envelope{data=Item}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/gallery/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.ID = id

	it, err := h.svc.Update(r.Context(), req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, it)
}

// Delete godoc
//
//	@Summary		Delete gallery item
//	@Description	Remove the media object (best effort) and then the record. Deleting a missing id succeeds.
//	@Tags			gallery
//	@Accept			json
//	@Produce		json
//	@Security		AdminSecret
//	@Param			id		path		int				true	"Item ID"
//	@Param			request	body		DeleteRequest	false	"Media URL to remove"
//	@Success		200		{object}	successData
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/gallery/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.ID = id

	if err := h.svc.Delete(r.Context(), req); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w)
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, apperr.Required("id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", "must be a positive integer")
	}
	return id, nil
}
