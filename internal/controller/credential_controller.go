package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/duskraven/mailraven-backend/internal/service"
)

type CredentialController struct {
	CredentialService *service.CredentialService
}

func (c *CredentialController) CreateCredential(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Label       string `json:"label" validate:"required"`
		Host        string `json:"host" validate:"required"`
		Port        int    `json:"port"`
		Username    string `json:"username"`
		FromAddress string `json:"from_address" validate:"required,email"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	cred, err := c.CredentialService.CreateCredential(r.Context(), ownerFromContext(r.Context()),
		body.Label, body.Host, body.Port, body.Username, body.FromAddress)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cred)
}

func (c *CredentialController) ListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := c.CredentialService.ListCredentials(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": creds})
}

func (c *CredentialController) GetCredential(w http.ResponseWriter, r *http.Request) {
	cred, err := c.CredentialService.GetCredential(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (c *CredentialController) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := c.CredentialService.DeleteCredential(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
