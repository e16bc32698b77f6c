package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-freelance/auth"
	"github.com/diewo77/go-freelance/internal/models"
	"github.com/diewo77/go-freelance/internal/services"
	"github.com/diewo77/go-freelance/pdf"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Client{}, &models.Project{}, &models.Invoice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedHandlerOwner(t *testing.T, gdb *gorm.DB, email string) (models.User, models.Client) {
	t.Helper()
	user := models.User{Email: email, Password: "x", Role: "user"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	client := models.Client{UserID: user.ID, Name: "ClientCo"}
	if err := gdb.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return user, client
}

// authedRequest builds a request carrying an authenticated identity, the
// way the middleware would after validating a bearer token.
func authedRequest(t *testing.T, method, target, body string, userID uint) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(auth.WithUser(req.Context(), userID, "user"))
}

func newInvoiceHandler(t *testing.T, gdb *gorm.DB) *InvoiceHandler {
	t.Helper()
	return NewInvoiceHandler(services.NewInvoiceService(gdb, pdf.NewGenerator(t.TempDir())))
}

func TestInvoiceCreateHandler(t *testing.T) {
	gdb := setupHandlerDB(t)
	user, client := seedHandlerOwner(t, gdb, "h1@test")
	h := newInvoiceHandler(t, gdb)

	body := fmt.Sprintf(`{"title":"Site","client_id":%d,"amount_ht":1000,"tva":20}`, client.ID)
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(t, http.MethodPost, "/invoices", body, user.ID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AmountTTC != 1200 || got.Status != models.InvoiceStatusDraft {
		t.Fatalf("unexpected invoice: %#v", got)
	}
	if got.PDFUrl == "" {
		t.Fatal("expected pdf_url in response")
	}
}

func TestInvoiceCreateHandlerRejectsBadInput(t *testing.T) {
	gdb := setupHandlerDB(t)
	user, client := seedHandlerOwner(t, gdb, "h2@test")
	h := newInvoiceHandler(t, gdb)

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(t, http.MethodPost, "/invoices", `{not json`, user.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := fmt.Sprintf(`{"client_id":%d,"amount_ht":10}`, client.ID)
	h.Create(rec, authedRequest(t, http.MethodPost, "/invoices", body, user.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d", rec.Code)
	}
	var resp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "validation_failed" || resp.Details["title"] != "required" {
		t.Fatalf("unexpected error payload: %+v", resp)
	}

	rec = httptest.NewRecorder()
	body = `{"title":"F","client_id":99999,"amount_ht":10}`
	h.Create(rec, authedRequest(t, http.MethodPost, "/invoices", body, user.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown client, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_reference") {
		t.Fatalf("expected invalid_reference, got %s", rec.Body.String())
	}
}

func TestInvoiceGetHandlerScopesByOwner(t *testing.T) {
	gdb := setupHandlerDB(t)
	user, client := seedHandlerOwner(t, gdb, "h3@test")
	intruder, _ := seedHandlerOwner(t, gdb, "h3b@test")
	h := newInvoiceHandler(t, gdb)

	inv, err := h.Svc.Create(user.ID, services.CreateInvoiceInput{Title: "F", ClientID: client.ID, AmountHT: f(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := authedRequest(t, http.MethodGet, "/invoices/"+strconv.Itoa(int(inv.ID)), "", intruder.ID)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	rec := httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign invoice, got %d", rec.Code)
	}

	req = authedRequest(t, http.MethodGet, "/invoices/"+strconv.Itoa(int(inv.ID)), "", user.ID)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", rec.Code)
	}
}

func TestInvoiceUpdateStatusHandler(t *testing.T) {
	gdb := setupHandlerDB(t)
	user, client := seedHandlerOwner(t, gdb, "h4@test")
	h := newInvoiceHandler(t, gdb)

	inv, err := h.Svc.Create(user.ID, services.CreateInvoiceInput{Title: "F", ClientID: client.ID, AmountHT: f(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := authedRequest(t, http.MethodPatch, "/invoices/1/status", `{"status":"paid"}`, user.ID)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Invoice
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != models.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}

	req = authedRequest(t, http.MethodPatch, "/invoices/1/status", `{"status":"bogus"}`, user.ID)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	rec = httptest.NewRecorder()
	h.UpdateStatus(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bogus status, got %d", rec.Code)
	}
}

func TestInvoiceDeleteHandler(t *testing.T) {
	gdb := setupHandlerDB(t)
	user, client := seedHandlerOwner(t, gdb, "h5@test")
	h := newInvoiceHandler(t, gdb)

	inv, err := h.Svc.Create(user.ID, services.CreateInvoiceInput{Title: "F", ClientID: client.ID, AmountHT: f(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := authedRequest(t, http.MethodDelete, "/invoices/1", "", user.ID)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = authedRequest(t, http.MethodDelete, "/invoices/1", "", user.ID)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestInvoicePDFHandlerStreamsDocument(t *testing.T) {
	gdb := setupHandlerDB(t)
	user, client := seedHandlerOwner(t, gdb, "h6@test")
	h := newInvoiceHandler(t, gdb)

	inv, err := h.Svc.Create(user.ID, services.CreateInvoiceInput{Title: "F", ClientID: client.ID, AmountHT: f(100)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := authedRequest(t, http.MethodGet, "/invoices/1/pdf", "", user.ID)
	req.SetPathValue("id", strconv.Itoa(int(inv.ID)))
	rec := httptest.NewRecorder()
	h.PDF(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("expected PDF payload")
	}
}

func TestPathIDRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		req := httptest.NewRequest(http.MethodGet, "/invoices/x", nil)
		req.SetPathValue("id", raw)
		if _, ok := pathID(req); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/invoices/12", nil)
	req.SetPathValue("id", "12")
	id, ok := pathID(req)
	if !ok || id != 12 {
		t.Fatalf("expected id 12, got %d ok=%v", id, ok)
	}
}

func f(v float64) *float64 { return &v }
