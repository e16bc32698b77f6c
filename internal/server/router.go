package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/go-freelance/auth"
	"github.com/diewo77/go-freelance/httpx"
	"github.com/diewo77/go-freelance/internal/handlers"
	"github.com/diewo77/go-freelance/internal/models"
	"github.com/diewo77/go-freelance/internal/services"
	"github.com/diewo77/go-freelance/pdf"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, docs *pdf.Generator) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	// Client endpoints
	ch := handlers.NewClientHandler(services.NewClientService(db))
	mux.Handle("POST /clients", protected(ch.Create))
	mux.Handle("GET /clients", protected(ch.List))
	mux.Handle("GET /clients/{id}", protected(ch.Get))
	mux.Handle("PATCH /clients/{id}", protected(ch.Update))
	mux.Handle("DELETE /clients/{id}", protected(ch.Delete))

	// Project endpoints
	ph := handlers.NewProjectHandler(services.NewProjectService(db))
	mux.Handle("POST /projects", protected(ph.Create))
	mux.Handle("GET /projects", protected(ph.List))
	mux.Handle("GET /projects/{id}", protected(ph.Get))
	mux.Handle("PATCH /projects/{id}", protected(ph.Update))
	mux.Handle("DELETE /projects/{id}", protected(ph.Delete))

	// Invoice endpoints
	invSvc := services.NewInvoiceService(db, docs)
	ih := handlers.NewInvoiceHandler(invSvc)
	mux.Handle("POST /invoices", protected(ih.Create))
	mux.Handle("GET /invoices", protected(ih.List))
	mux.Handle("GET /invoices/{id}", protected(ih.Get))
	mux.Handle("PATCH /invoices/{id}", protected(ih.Update))
	mux.Handle("PATCH /invoices/{id}/status", protected(ih.UpdateStatus))
	mux.Handle("DELETE /invoices/{id}", protected(ih.Delete))
	mux.Handle("GET /invoices/{id}/pdf", protected(ih.PDF))

	// Account summary (counts + paid revenue)
	mux.Handle("GET /summary", protected(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := auth.UserIDFromContext(r.Context())
		var clientCount, projectCount, invoiceCount int64
		db.Model(&models.Client{}).Where("user_id = ?", uid).Count(&clientCount)
		db.Model(&models.Project{}).Where("user_id = ?", uid).Count(&projectCount)
		db.Model(&models.Invoice{}).Where("user_id = ?", uid).Count(&invoiceCount)
		revenue, err := invSvc.Revenue(uid)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_summary", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"clients":  clientCount,
			"projects": projectCount,
			"invoices": invoiceCount,
			"revenue":  revenue,
		})
	}))

	return withRecover(auth.Middleware(mux))
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
