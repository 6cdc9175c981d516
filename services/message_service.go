package services

import (
	"abilgram/domain"
	"abilgram/errors"
	"abilgram/repositories"
	"time"

	"github.com/google/uuid"
)

type IMessageService interface {
	PostMessage(chatID uuid.UUID, senderID, content string) (domain.Message, error)
	GetChatMessages(chatID uuid.UUID, cursor *string) ([]domain.Message, *string, error)
}

// MessageService persists chat history. It runs on the REST path and is
// deliberately decoupled from realtime delivery: storing a message and
// routing it to a live session are independent, unsynchronized steps.
type MessageService struct {
	chatRepository    repositories.IChatRepository
	messageRepository repositories.IMessageRepository
}

func NewMessageService(chats repositories.IChatRepository,
	messages repositories.IMessageRepository) IMessageService {
	return &MessageService{chatRepository: chats, messageRepository: messages}
}

// PostMessage stores a message after checking the sender belongs to the
// chat.
func (s *MessageService) PostMessage(chatID uuid.UUID, senderID, content string) (domain.Message, error) {
	chat, err := s.chatRepository.GetChat(chatID)
	if err != nil {
		return domain.Message{}, err
	}
	if !chat.HasMember(senderID) {
		return domain.Message{}, errors.ErrNotChatMember
	}

	message := domain.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	err = s.messageRepository.StoreMessage(repositories.DiskMessage{
		ID:      message.ID,
		ChatID:  message.ChatID,
		Sender:  message.SenderID,
		Content: message.Content,
		At:      message.CreatedAt,
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// GetChatMessages returns one page of history, newest first, with a
// cursor for the next page.
func (s *MessageService) GetChatMessages(chatID uuid.UUID, cursor *string) ([]domain.Message, *string, error) {
	if _, err := s.chatRepository.GetChat(chatID); err != nil {
		return nil, nil, err
	}

	stored, next, err := s.messageRepository.GetMessages(chatID, cursor)
	if err != nil {
		return nil, nil, err
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
	return messages, next, nil
}
