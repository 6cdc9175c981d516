package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"abilgram/auth"
	"abilgram/domain"
	"abilgram/services"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

// maxAvatarBytes bounds multipart uploads on the profile endpoint.
const maxAvatarBytes = 5 << 20

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Format(timeLayout),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := s.authSvc.Register(req.Email, req.Username, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := s.authSvc.Login(req.Email, req.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	user, err := s.users.GetByID(userID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(auth.UserIDFromContext(r.Context()))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleGetUserID(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"user_id": auth.UserIDFromContext(r.Context()),
	})
}

// handleUpdateUser accepts a multipart form with optional "username" and
// "image" fields. Either may be absent; an empty request is a no-op that
// returns the current profile.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	var username *string
	if v := r.FormValue("username"); v != "" {
		username = lo.ToPtr(v)
	}

	var avatar *services.AvatarUpload
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
		if err != nil {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
			return
		}
		avatar = &services.AvatarUpload{Filename: header.Filename, Data: data}
	}

	user, err := s.users.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), username, avatar)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleSearchUser(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("username")
	if term == "" {
		s.respondJSON(w, http.StatusOK, []any{})
		return
	}

	hits, err := s.users.SearchUsers(r.Context(), term)
	if err != nil {
		s.respondError(w, err)
		return
	}

	type hitResponse struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	out := make([]hitResponse, 0, len(hits))
	for _, h := range hits {
		out = append(out, hitResponse{ID: h.ID, Username: h.Username})
	}
	s.respondJSON(w, http.StatusOK, out)
}
