package services

import (
	"abilgram/domain"
	"abilgram/errors"
	"abilgram/repositories"
	"log/slog"

	"github.com/google/uuid"
)

type IChatService interface {
	CreateChat(currentUserID, targetUserID string) (ChatView, error)
	GetUserChats(userID string) ([]ChatView, error)
	DeleteChat(userID string, chatID uuid.UUID) error
}

// ChatView is a chat with its members resolved and recent messages
// attached, the shape the chat list endpoint returns.
type ChatView struct {
	Chat     domain.Chat
	Members  []domain.User
	Messages []domain.Message
}

type ChatService struct {
	chatRepository    repositories.IChatRepository
	userRepository    repositories.IUserRepository
	messageRepository repositories.IMessageRepository
	log               *slog.Logger
}

func NewChatService(chats repositories.IChatRepository, users repositories.IUserRepository,
	messages repositories.IMessageRepository, log *slog.Logger) IChatService {
	return &ChatService{
		chatRepository:    chats,
		userRepository:    users,
		messageRepository: messages,
		log:               log,
	}
}

// CreateChat opens a direct chat between the current user and a target.
// The target must exist; self-chats and duplicate pairs are rejected by
// the repository.
func (s *ChatService) CreateChat(currentUserID, targetUserID string) (ChatView, error) {
	if _, err := s.userRepository.GetUserByID(targetUserID); err != nil {
		return ChatView{}, err
	}

	chat, err := s.chatRepository.CreateChat(currentUserID, targetUserID)
	if err != nil {
		return ChatView{}, err
	}
	return s.buildView(chat)
}

// GetUserChats returns every chat the user belongs to, each with members
// and the most recent page of messages.
func (s *ChatService) GetUserChats(userID string) ([]ChatView, error) {
	chats, err := s.chatRepository.GetUserChats(userID)
	if err != nil {
		return nil, err
	}

	views := make([]ChatView, 0, len(chats))
	for _, chat := range chats {
		view, err := s.buildView(chat)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// DeleteChat removes a chat and its history. Only members may delete.
func (s *ChatService) DeleteChat(userID string, chatID uuid.UUID) error {
	chat, err := s.chatRepository.GetChat(chatID)
	if err != nil {
		return err
	}
	if !chat.HasMember(userID) {
		return errors.ErrNotChatMember
	}
	return s.chatRepository.DeleteChat(chatID)
}

func (s *ChatService) buildView(chat domain.Chat) (ChatView, error) {
	members := make([]domain.User, 0, len(chat.Members))
	for _, memberID := range chat.Members {
		user, err := s.userRepository.GetUserByID(memberID)
		if err != nil {
			// A member may have been deleted out from under the chat;
			// the chat stays listable.
			s.log.Warn("Chat member missing", "chat", chat.ID, "user_id", memberID)
			continue
		}
		members = append(members, toDomainUser(user))
	}

	stored, _, err := s.messageRepository.GetMessages(chat.ID, nil)
	if err != nil {
		return ChatView{}, err
	}
	messages := make([]domain.Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, domain.Message{
			ID:        m.ID,
			ChatID:    m.ChatID,
			SenderID:  m.Sender,
			Content:   m.Content,
			CreatedAt: m.At,
		})
	}

	return ChatView{Chat: chat, Members: members, Messages: messages}, nil
}
