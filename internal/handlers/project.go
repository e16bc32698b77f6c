package handlers

import (
	"net/http"

	"github.com/diewo77/go-freelance/auth"
	"github.com/diewo77/go-freelance/httpx"
	"github.com/diewo77/go-freelance/internal/services"
)

type ProjectHandler struct {
	Svc *services.ProjectService
}

func NewProjectHandler(svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Svc: svc}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in services.CreateProjectInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	project, err := h.Svc.Create(userID, in)
	if err != nil {
		writeServiceError(w, err, "failed_to_create_project")
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	projects, err := h.Svc.FindAll(userID)
	if err != nil {
		writeServiceError(w, err, "failed_to_list_projects")
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	project, err := h.Svc.FindOne(userID, id)
	if err != nil {
		writeServiceError(w, err, "failed_to_load_project")
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var in services.UpdateProjectInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	project, err := h.Svc.Update(userID, id, in)
	if err != nil {
		writeServiceError(w, err, "failed_to_update_project")
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.Svc.Remove(userID, id); err != nil {
		writeServiceError(w, err, "failed_to_delete_project")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
