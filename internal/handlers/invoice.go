package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/diewo77/go-freelance/auth"
	"github.com/diewo77/go-freelance/httpx"
	"github.com/diewo77/go-freelance/internal/services"
)

type InvoiceHandler struct {
	Svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var in services.CreateInvoiceInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.Svc.Create(userID, in)
	if err != nil {
		writeServiceError(w, err, "failed_to_create_invoice")
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	invoices, err := h.Svc.FindAll(userID)
	if err != nil {
		writeServiceError(w, err, "failed_to_list_invoices")
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	inv, err := h.Svc.FindOne(userID, id)
	if err != nil {
		writeServiceError(w, err, "failed_to_load_invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Update: PATCH /invoices/{id}
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var in services.UpdateInvoiceInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.Svc.Update(userID, id, in)
	if err != nil {
		writeServiceError(w, err, "failed_to_update_invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// UpdateStatus: PATCH /invoices/{id}/status
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	inv, err := h.Svc.UpdateStatus(userID, id, req.Status)
	if err != nil {
		writeServiceError(w, err, "failed_to_update_status")
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: DELETE /invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.Svc.Remove(userID, id); err != nil {
		writeServiceError(w, err, "failed_to_delete_invoice")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PDF: GET /invoices/{id}/pdf streams the stored document.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	inv, err := h.Svc.FindOne(userID, id)
	if err != nil {
		writeServiceError(w, err, "failed_to_load_invoice")
		return
	}
	if inv.PDFUrl == "" {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	f, err := os.Open(inv.PDFUrl)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("invoice-%d.pdf", inv.ID)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}
