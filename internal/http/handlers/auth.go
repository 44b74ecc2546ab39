package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hongminglow/userhub/internal/account"
	"github.com/hongminglow/userhub/internal/http/respond"
	"github.com/hongminglow/userhub/internal/middleware"
	"github.com/hongminglow/userhub/internal/models/dto"
)

// AuthHandler owns the register, login and current-user endpoints.
type AuthHandler struct {
	accounts    *account.Service
	requireUser func(http.Handler) http.Handler
	logger      *slog.Logger
}

// NewAuthHandler constructs the handler. requireUser guards /auth/me.
func NewAuthHandler(accounts *account.Service, requireUser func(http.Handler) http.Handler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, requireUser: requireUser, logger: logger}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.Handle("GET /auth/me", h.requireUser(http.HandlerFunc(h.handleMe)))
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		validationFailed(w, err)
		return
	}

	id, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeAccountError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.RegisterResponse{Message: "User created successfully", ID: id})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		validationFailed(w, err)
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAccountError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: dto.TokenTypeBearer})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond.Unauthorized(w, detailMissingCurrentUser)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MeResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
	})
}
