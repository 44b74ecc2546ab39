package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hongminglow/userhub/internal/account"
	"github.com/hongminglow/userhub/internal/http/respond"
	"github.com/hongminglow/userhub/internal/models/dto"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

// UserHandler exposes CRUD over user records.
type UserHandler struct {
	accounts *account.Service
	logger   *slog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(accounts *account.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

// Register attaches user routes to the mux.
func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /users", h.handleList)
	mux.HandleFunc("POST /users", h.handleCreate)
	mux.HandleFunc("GET /users/{id}", h.handleGet)
	mux.HandleFunc("PUT /users/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /users/{id}", h.handleDelete)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", defaultSkip)
	if err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, detailInvalidPagination)
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, detailInvalidPagination)
		return
	}

	users, err := h.accounts.List(r.Context(), skip, limit)
	if err != nil {
		writeAccountError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.UserCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		validationFailed(w, err)
		return
	}

	in := account.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: true,
	}
	if req.IsActive != nil {
		in.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		in.IsSuperuser = *req.IsSuperuser
	}

	created, err := h.accounts.Create(r.Context(), in)
	if err != nil {
		writeAccountError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeAccountError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UserUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		validationFailed(w, err)
		return
	}

	updated, err := h.accounts.Update(r.Context(), id, req.Patch())
	if err != nil {
		writeAccountError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.accounts.Delete(r.Context(), id)
	if err != nil {
		writeAccountError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, deleted)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respond.Error(w, http.StatusUnprocessableEntity, detailInvalidUserID)
		return 0, false
	}
	return id, true
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, account.ErrInvalidPage
	}
	return n, nil
}
