package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/planhub/planhub/pkg/user"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type SessionDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type registerRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Handler struct {
	provider Provider
}

func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new user")
	w.Header().Set("Content-Type", "application/json")

	var dto registerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	role := user.Role(dto.Role)
	if dto.Role == "" {
		role = user.RoleAttendee
	}
	if !role.Valid() {
		http.Error(w, "unknown role: "+dto.Role, http.StatusBadRequest)
		return
	}

	session, err := h.provider.Register(r.Context(), dto.Username, dto.Email, dto.Password, role)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(sessionToDTO(session)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.provider.Login(r.Context(), dto.Email, dto.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(sessionToDTO(session)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.Logout(r.Context()); err != nil {
		log.Errorf("failed to log out: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	u, err := h.provider.CurrentUser(r.Context())
	if err != nil {
		writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(userToDTO(u)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ErrNotLoggedIn):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		log.Errorf("auth request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func sessionToDTO(s Session) SessionDTO {
	return SessionDTO{
		Token: s.Token,
		User:  userToDTO(s.User),
	}
}

func userToDTO(u user.User) UserDTO {
	return UserDTO{
		Id:       u.Id,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}
