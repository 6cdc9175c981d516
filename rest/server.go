// Package rest exposes the HTTP surface of the backend: auth recipe,
// user and chat CRUD, and the websocket upgrade endpoint. Realtime
// delivery itself lives in the realtime package; handlers here only
// persist and query.
package rest

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"abilgram/auth"
	"abilgram/errors"
	"abilgram/realtime"
	"abilgram/services"

	"github.com/gorilla/mux"
)

type Server struct {
	log      *slog.Logger
	router   *mux.Router
	tokens   *auth.TokenManager
	authSvc  services.IAuthService
	users    services.IUserService
	chats    services.IChatService
	messages services.IMessageService
	hub      *realtime.Hub
}

func NewServer(log *slog.Logger, tokens *auth.TokenManager,
	authSvc services.IAuthService, users services.IUserService,
	chats services.IChatService, messages services.IMessageService,
	hub *realtime.Hub, mediaDir string) *Server {

	s := &Server{
		log:      log,
		router:   mux.NewRouter(),
		tokens:   tokens,
		authSvc:  authSvc,
		users:    users,
		chats:    chats,
		messages: messages,
		hub:      hub,
	}

	s.router.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	s.router.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	s.router.HandleFunc("/ws", hub.ServeWS)
	s.router.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(auth.Middleware(tokens)))
	api.HandleFunc("/user/{user_id}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/user", s.handleUpdateUser).Methods(http.MethodPatch)
	api.HandleFunc("/user_id", s.handleGetUserID).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/search_user", s.handleSearchUser).Methods(http.MethodGet)
	api.HandleFunc("/chat_create", s.handleCreateChat).Methods(http.MethodPost)
	api.HandleFunc("/chats", s.handleGetUserChats).Methods(http.MethodGet)
	api.HandleFunc("/messages/{chat_id}", s.handleGetChatMessages).Methods(http.MethodGet)
	api.HandleFunc("/message", s.handlePostMessage).Methods(http.MethodPost)
	api.HandleFunc("/delete_chat", s.handleDeleteChat).Methods(http.MethodDelete)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.log.Error("Failed to encode response", "err", err)
		}
	}
}

// respondError maps sentinel errors onto HTTP statuses. Unknown errors
// become a 500 with a generic body so internals never leak to clients.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case isAny(err, errors.ErrUserNotFound, errors.ErrChatNotFound):
		status = http.StatusNotFound
	case isAny(err, errors.ErrUserAlreadyExists, errors.ErrUsernameTaken, errors.ErrChatAlreadyExists):
		status = http.StatusConflict
	case isAny(err, errors.ErrInvalidPassword, errors.ErrChatWithSelf, errors.ErrUnsupportedAvatar):
		status = http.StatusBadRequest
	case isAny(err, errors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case isAny(err, errors.ErrNotChatMember):
		status = http.StatusForbidden
	}

	body := map[string]string{"error": err.Error()}
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "err", err)
		body["error"] = "internal server error"
	}
	s.respondJSON(w, status, body)
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}
