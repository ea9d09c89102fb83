package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/duskraven/mailraven-backend/internal/service"
)

type GroupController struct {
	GroupService *service.GroupService
}

func (c *GroupController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name" validate:"required"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	group, err := c.GroupService.CreateGroup(r.Context(), ownerFromContext(r.Context()), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (c *GroupController) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.GroupService.ListGroups(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": groups})
}

func (c *GroupController) RenameGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name" validate:"required"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := c.GroupService.RenameGroup(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"), body.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *GroupController) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := c.GroupService.DeleteGroup(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *GroupController) AddContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContactID string `json:"contact_id" validate:"required"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := c.GroupService.AddContact(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"), body.ContactID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *GroupController) RemoveContact(w http.ResponseWriter, r *http.Request) {
	if err := c.GroupService.RemoveContact(r.Context(), ownerFromContext(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "contactId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *GroupController) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := c.GroupService.ListMembers(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": members})
}
