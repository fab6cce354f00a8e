package handlers

import (
	"net/http"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/session"
)

// Login exchanges credentials for a token. The console keeps no session of
// its own; the caller sends the token back as a bearer header.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		RespondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := h.services.Auth.Login(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		RespondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := h.services.Auth.Register(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, resp)
}

// Logout ends the caller's session upstream. It requires the caller's own
// token so that the console's service token is never logged out.
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.TokenFrom(r.Context()); !ok {
		respondWithServiceError(w, r, session.ErrNotAuthenticated)
		return
	}

	if err := h.services.Auth.Logout(r.Context()); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// CurrentUser returns the operator behind the caller's token
func (h *HTTPHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.Auth.CurrentUser(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}
