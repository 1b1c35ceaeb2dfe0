package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/wire"
	"github.com/go-chi/chi/v5"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	users UserService
	log   logging.Logger
}

func NewAuthHandler(users UserService, log logging.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

func (h *AuthHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", h.Register)
	router.Post("/login", h.Login)

	return router
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req wire.Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	h.log.Info(r.Context(), "user registered", "user_id", u.ID, "role", u.Role)
	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req wire.Credentials
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	writeJSON(w, h.log, r, http.StatusOK, wire.LoginResponse{AccessToken: token})
}
