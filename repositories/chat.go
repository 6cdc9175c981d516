//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"abilgram/domain"
	"abilgram/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IChatRepository interface {
	CreateChat(userA, userB string) (domain.Chat, error)
	GetChat(id uuid.UUID) (domain.Chat, error)
	GetUserChats(userID string) ([]domain.Chat, error)
	DeleteChat(id uuid.UUID) error
}

type ChatRepository struct {
	db *badger.DB
}

func NewChatRepository(db *badger.DB) IChatRepository {
	return &ChatRepository{db: db}
}

// Key layout:
//
//	chat:{uuid}                 -> cbor(chatRecord)
//	chatmember:{user}:{uuid}    -> nil      per-member listing index
//	chatpair:{a}:{b}            -> uuid     uniqueness of the member pair
//
// The pair key uses the normalized (sorted) member order from
// domain.NewChat, so (alice,bob) and (bob,alice) collide as intended.
type chatRecord struct {
	ID        string    `cbor:"id"`
	Members   [2]string `cbor:"members"`
	CreatedAt int64     `cbor:"created_at"` // unix nanoseconds
}

func chatKey(id uuid.UUID) []byte { return []byte("chat:" + id.String()) }

func memberKey(userID string, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("chatmember:%s:%s", userID, id))
}

func pairKey(a, b string) []byte {
	if b < a {
		a, b = b, a
	}
	return []byte(fmt.Sprintf("chatpair:%s:%s", a, b))
}

// CreateChat persists a new two-member chat. A user cannot chat with
// themselves, and only one chat may exist per member pair.
func (c ChatRepository) CreateChat(userA, userB string) (domain.Chat, error) {
	if userA == userB {
		return domain.Chat{}, errors.ErrChatWithSelf
	}

	chat := domain.NewChat(userA, userB)
	data, err := marshalValue(fromChat(chat))
	if err != nil {
		return domain.Chat{}, err
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pairKey(userA, userB)); err == nil {
			return errors.ErrChatAlreadyExists
		}
		if err := txn.Set(chatKey(chat.ID), data); err != nil {
			return err
		}
		if err := txn.Set(memberKey(chat.Members[0], chat.ID), nil); err != nil {
			return err
		}
		if err := txn.Set(memberKey(chat.Members[1], chat.ID), nil); err != nil {
			return err
		}
		return txn.Set(pairKey(userA, userB), []byte(chat.ID.String()))
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (c ChatRepository) GetChat(id uuid.UUID) (domain.Chat, error) {
	var record chatRecord
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chatKey(id))
		if err != nil {
			return errors.ErrChatNotFound
		}
		return item.Value(func(val []byte) error {
			return unmarshalValue(val, &record)
		})
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return toChat(record)
}

// GetUserChats scans the member index and loads each referenced chat.
func (c ChatRepository) GetUserChats(userID string) ([]domain.Chat, error) {
	var ids []uuid.UUID
	prefix := []byte("chatmember:" + userID + ":")

	err := c.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			raw := string(it.Item().Key()[len(prefix):])
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("corrupt member index key %q: %w", raw, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	chats := make([]domain.Chat, 0, len(ids))
	for _, id := range ids {
		chat, err := c.GetChat(id)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

// DeleteChat removes the chat record, its indexes, and every persisted
// message under the chat's message prefix.
func (c ChatRepository) DeleteChat(id uuid.UUID) error {
	chat, err := c.GetChat(id)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(chatKey(id)); err != nil {
			return err
		}
		if err := txn.Delete(memberKey(chat.Members[0], id)); err != nil {
			return err
		}
		if err := txn.Delete(memberKey(chat.Members[1], id)); err != nil {
			return err
		}
		if err := txn.Delete(pairKey(chat.Members[0], chat.Members[1])); err != nil {
			return err
		}

		prefix := []byte(fmt.Sprintf("msg:%s:", id))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var msgKeys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			msgKeys = append(msgKeys, it.Item().KeyCopy(nil))
		}
		for _, key := range msgKeys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func fromChat(chat domain.Chat) chatRecord {
	return chatRecord{
		ID:        chat.ID.String(),
		Members:   chat.Members,
		CreatedAt: chat.CreatedAt.UnixNano(),
	}
}

func toChat(record chatRecord) (domain.Chat, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Chat{}, err
	}
	return domain.Chat{
		ID:        id,
		Members:   record.Members,
		CreatedAt: timeFromNano(record.CreatedAt),
	}, nil
}
