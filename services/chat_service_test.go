package services

import (
	"testing"
	"time"

	"abilgram/errors"
	"abilgram/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	users    *fakeUserRepository
	chats    *fakeChatRepository
	messages *fakeMessageRepository
	svc      IChatService
}

func newChatFixture() chatFixture {
	users := newFakeUserRepository()
	chats := newFakeChatRepository()
	messages := &fakeMessageRepository{}
	return chatFixture{
		users:    users,
		chats:    chats,
		messages: messages,
		svc:      NewChatService(chats, users, messages, testLogger()),
	}
}

func TestChatService_CreateChat(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	aliceID, _ := f.users.CreateUser("alice@example.com", "alice", "h")
	bobID, _ := f.users.CreateUser("bob@example.com", "bob", "h")

	// When alice opens a chat with bob
	view, err := f.svc.CreateChat(aliceID, bobID)

	// Then the view carries both resolved members
	req.NoError(err)
	req.True(view.Chat.HasMember(aliceID))
	req.True(view.Chat.HasMember(bobID))
	req.Len(view.Members, 2)
	req.Empty(view.Messages)
}

func TestChatService_CreateChat_Unknown_Target(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	aliceID, _ := f.users.CreateUser("alice@example.com", "alice", "h")

	_, err := f.svc.CreateChat(aliceID, "ghost")
	req.ErrorIs(err, errors.ErrUserNotFound)
	req.Empty(f.chats.chats)
}

func TestChatService_CreateChat_With_Self(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	aliceID, _ := f.users.CreateUser("alice@example.com", "alice", "h")

	_, err := f.svc.CreateChat(aliceID, aliceID)
	req.ErrorIs(err, errors.ErrChatWithSelf)
}

func TestChatService_GetUserChats_Includes_Recent_Messages(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	aliceID, _ := f.users.CreateUser("alice@example.com", "alice", "h")
	bobID, _ := f.users.CreateUser("bob@example.com", "bob", "h")

	view, err := f.svc.CreateChat(aliceID, bobID)
	req.NoError(err)

	req.NoError(f.messages.StoreMessage(repositories.DiskMessage{
		ID:      uuid.New(),
		ChatID:  view.Chat.ID,
		Sender:  aliceID,
		Content: "hi bob",
		At:      time.Now().UTC(),
	}))

	views, err := f.svc.GetUserChats(aliceID)
	req.NoError(err)
	req.Len(views, 1)
	req.Len(views[0].Messages, 1)
	req.Equal("hi bob", views[0].Messages[0].Content)
	req.Equal(aliceID, views[0].Messages[0].SenderID)
}

func TestChatService_GetUserChats_Survives_A_Deleted_Member(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	aliceID, _ := f.users.CreateUser("alice@example.com", "alice", "h")
	bobID, _ := f.users.CreateUser("bob@example.com", "bob", "h")

	_, err := f.svc.CreateChat(aliceID, bobID)
	req.NoError(err)

	// When bob's account disappears
	delete(f.users.users, bobID)

	// Then the chat stays listable with the remaining member
	views, err := f.svc.GetUserChats(aliceID)
	req.NoError(err)
	req.Len(views, 1)
	req.Len(views[0].Members, 1)
	req.Equal(aliceID, views[0].Members[0].ID)
}

func TestChatService_DeleteChat_Requires_Membership(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	aliceID, _ := f.users.CreateUser("alice@example.com", "alice", "h")
	bobID, _ := f.users.CreateUser("bob@example.com", "bob", "h")
	carolID, _ := f.users.CreateUser("carol@example.com", "carol", "h")

	view, err := f.svc.CreateChat(aliceID, bobID)
	req.NoError(err)

	// When an outsider tries to delete the chat
	err = f.svc.DeleteChat(carolID, view.Chat.ID)
	req.ErrorIs(err, errors.ErrNotChatMember)
	req.Len(f.chats.chats, 1)

	// And a member succeeds
	req.NoError(f.svc.DeleteChat(aliceID, view.Chat.ID))
	req.Empty(f.chats.chats)
}

func TestChatService_DeleteChat_Unknown(t *testing.T) {
	req := require.New(t)
	f := newChatFixture()
	aliceID, _ := f.users.CreateUser("alice@example.com", "alice", "h")

	err := f.svc.DeleteChat(aliceID, uuid.New())
	req.ErrorIs(err, errors.ErrChatNotFound)
}
