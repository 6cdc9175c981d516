package services

import (
	"context"
	"io"
	"log/slog"

	"abilgram/domain"
	"abilgram/errors"
	"abilgram/repositories"
	"abilgram/search"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory repository doubles. They honor the same sentinel errors as
// the badger-backed implementations so services cannot tell them apart.

type fakeUserRepository struct {
	users  map[string]repositories.User // keyed by ID
	nextID int

	createErr error
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]repositories.User)}
}

func (f *fakeUserRepository) CreateUser(email, username, hashedPassword string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return "", errors.ErrUserAlreadyExists
		}
		if u.Username == username {
			return "", errors.ErrUsernameTaken
		}
	}
	id := uuid.NewString()
	f.users[id] = repositories.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
	}
	return id, nil
}

func (f *fakeUserRepository) GetUserByEmail(email string) (repositories.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repositories.User{}, errors.ErrUserNotFound
}

func (f *fakeUserRepository) GetUserByID(id string) (repositories.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repositories.User{}, errors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepository) UpdateUser(id string, username, avatarURL *string) (repositories.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repositories.User{}, errors.ErrUserNotFound
	}
	if username != nil {
		u.Username = *username
	}
	if avatarURL != nil {
		u.AvatarURL = *avatarURL
	}
	f.users[id] = u
	return u, nil
}

type fakeChatRepository struct {
	chats map[uuid.UUID]domain.Chat
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{chats: make(map[uuid.UUID]domain.Chat)}
}

func (f *fakeChatRepository) CreateChat(userA, userB string) (domain.Chat, error) {
	if userA == userB {
		return domain.Chat{}, errors.ErrChatWithSelf
	}
	for _, c := range f.chats {
		if c.HasMember(userA) && c.HasMember(userB) {
			return domain.Chat{}, errors.ErrChatAlreadyExists
		}
	}
	chat := domain.NewChat(userA, userB)
	f.chats[chat.ID] = chat
	return chat, nil
}

func (f *fakeChatRepository) GetChat(id uuid.UUID) (domain.Chat, error) {
	c, ok := f.chats[id]
	if !ok {
		return domain.Chat{}, errors.ErrChatNotFound
	}
	return c, nil
}

func (f *fakeChatRepository) GetUserChats(userID string) ([]domain.Chat, error) {
	var out []domain.Chat
	for _, c := range f.chats {
		if c.HasMember(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChatRepository) DeleteChat(id uuid.UUID) error {
	if _, ok := f.chats[id]; !ok {
		return errors.ErrChatNotFound
	}
	delete(f.chats, id)
	return nil
}

type fakeMessageRepository struct {
	stored []repositories.DiskMessage
}

func (f *fakeMessageRepository) StoreMessage(message repositories.DiskMessage) error {
	f.stored = append(f.stored, message)
	return nil
}

func (f *fakeMessageRepository) GetMessages(chatID uuid.UUID, cursor *string) ([]repositories.DiskMessage, *string, error) {
	var out []repositories.DiskMessage
	for i := len(f.stored) - 1; i >= 0; i-- {
		if f.stored[i].ChatID == chatID {
			out = append(out, f.stored[i])
		}
	}
	return out, nil, nil
}

// fakeUserIndex records index calls and serves canned search hits.
type fakeUserIndex struct {
	indexed   map[string]string
	hits      []search.Hit
	indexErr  error
	lastTerm  string
	lastLimit int
}

func newFakeUserIndex() *fakeUserIndex {
	return &fakeUserIndex{indexed: make(map[string]string)}
}

func (f *fakeUserIndex) Index(id, username string) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed[id] = username
	return nil
}

func (f *fakeUserIndex) Deindex(id string) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeUserIndex) Search(_ context.Context, term string, limit int) ([]search.Hit, error) {
	f.lastTerm = term
	f.lastLimit = limit
	return f.hits, nil
}
