package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"abilgram/auth"
	"abilgram/domain"
	"abilgram/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// timeLayout is the wire format for every timestamp the API returns.
const timeLayout = time.RFC3339Nano

type chatResponse struct {
	ID        string            `json:"id"`
	Members   []userResponse    `json:"members"`
	Messages  []messageResponse `json:"messages"`
	CreatedAt string            `json:"created_at"`
}

type messageResponse struct {
	ID        string `json:"id"`
	ChatID    string `json:"chat_id"`
	SenderID  string `json:"sender_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(timeLayout),
	}
}

func toChatResponse(view services.ChatView) chatResponse {
	members := make([]userResponse, 0, len(view.Members))
	for _, member := range view.Members {
		members = append(members, toUserResponse(member))
	}
	messages := make([]messageResponse, 0, len(view.Messages))
	for _, message := range view.Messages {
		messages = append(messages, toMessageResponse(message))
	}
	return chatResponse{
		ID:        view.Chat.ID.String(),
		Members:   members,
		Messages:  messages,
		CreatedAt: view.Chat.CreatedAt.Format(timeLayout),
	}
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetUserID string `json:"target_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	view, err := s.chats.CreateChat(auth.UserIDFromContext(r.Context()), req.TargetUserID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toChatResponse(view))
}

func (s *Server) handleGetUserChats(w http.ResponseWriter, r *http.Request) {
	views, err := s.chats.GetUserChats(auth.UserIDFromContext(r.Context()))
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]chatResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toChatResponse(view))
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(r.URL.Query().Get("chat_id"))
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
		return
	}

	if err := s.chats.DeleteChat(auth.UserIDFromContext(r.Context()), chatID); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleGetChatMessages pages backwards through a chat's history, newest
// first. The cursor query param continues a previous page; the response
// carries the cursor for the next one, or null once exhausted.
func (s *Server) handleGetChatMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(mux.Vars(r)["chat_id"])
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
		return
	}

	var cursor *string
	if v := r.URL.Query().Get("cursor"); v != "" {
		cursor = &v
	}

	messages, next, err := s.messages.GetChatMessages(chatID, cursor)
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, toMessageResponse(message))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"messages": out,
		"cursor":   next,
	})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID  string `json:"chat_id"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
		return
	}
	if req.Content == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "message content is empty"})
		return
	}

	message, err := s.messages.PostMessage(chatID, auth.UserIDFromContext(r.Context()), req.Content)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toMessageResponse(message))
}
