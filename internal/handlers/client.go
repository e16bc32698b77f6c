package handlers

import (
	"net/http"

	"github.com/diewo77/go-freelance/auth"
	"github.com/diewo77/go-freelance/httpx"
	"github.com/diewo77/go-freelance/internal/services"
)

type ClientHandler struct {
	Svc *services.ClientService
}

func NewClientHandler(svc *services.ClientService) *ClientHandler {
	return &ClientHandler{Svc: svc}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in services.CreateClientInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	client, err := h.Svc.Create(userID, in)
	if err != nil {
		writeServiceError(w, err, "failed_to_create_client")
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	clients, err := h.Svc.FindAll(userID)
	if err != nil {
		writeServiceError(w, err, "failed_to_list_clients")
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	client, err := h.Svc.FindOne(userID, id)
	if err != nil {
		writeServiceError(w, err, "failed_to_load_client")
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var in services.UpdateClientInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	client, err := h.Svc.Update(userID, id, in)
	if err != nil {
		writeServiceError(w, err, "failed_to_update_client")
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.Svc.Remove(userID, id); err != nil {
		writeServiceError(w, err, "failed_to_delete_client")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
