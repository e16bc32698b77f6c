package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/go-freelance/auth"
	"github.com/diewo77/go-freelance/httpx"
	"github.com/diewo77/go-freelance/internal/models"
	"github.com/diewo77/go-freelance/validation"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /login", h.Login)
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	v := make(validation.Violations)
	validation.Required("email", req.Email, v)
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		v["email"] = "invalid_format"
	}
	if len(req.Password) < 8 {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	user := models.User{Email: req.Email, Password: string(hash), Role: "user"}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}

	token, err := auth.IssueToken(user.ID, user.Role)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "signup_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

// Login deliberately answers every failure the same way so callers
// cannot tell an unknown email from a wrong password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	token, err := auth.IssueToken(user.ID, user.Role)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "login_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}
