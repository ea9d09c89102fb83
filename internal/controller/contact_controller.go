package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/duskraven/mailraven-backend/internal/service"
)

type ContactController struct {
	ContactService *service.ContactService
}

func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email      string            `json:"email" validate:"required,email"`
		Attributes map[string]string `json:"attributes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	contact, err := c.ContactService.CreateContact(r.Context(), ownerFromContext(r.Context()), body.Email, body.Attributes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := c.ContactService.ListContacts(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": contacts})
}

func (c *ContactController) GetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := c.ContactService.GetContact(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (c *ContactController) UpdateAttributes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Attributes map[string]string `json:"attributes" validate:"required"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := c.ContactService.UpdateAttributes(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"), body.Attributes); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ContactController) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := c.ContactService.DeleteContact(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
