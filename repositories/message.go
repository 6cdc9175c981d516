//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(chatID uuid.UUID, cursor *string) ([]DiskMessage, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type DiskMessage struct {
	ID      uuid.UUID
	ChatID  uuid.UUID
	Sender  string
	Content string
	At      time.Time
}

type messageRecord struct {
	ID      string `cbor:"id"`
	ChatID  string `cbor:"chat_id"`
	Sender  string `cbor:"sender"`
	Content string `cbor:"content"`
	At      int64  `cbor:"at"` // unix nanoseconds
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{chat_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.ChatID,
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := marshalValue(fromDiskMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages retrieves messages for a chat using a reverse prefix scan,
// newest first. Thanks to the padded timestamp in the key, ordering comes
// for free. The returned cursor resumes the scan on the next page; it is
// nil-safe and opaque to callers.
func (m MessageRepository) GetMessages(chatID uuid.UUID, cursor *string) ([]DiskMessage, *string, error) {
	var byteMessages [][]byte
	var diskMessages []DiskMessage
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", chatID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for _, b := range byteMessages {
		var record messageRecord
		if err = unmarshalValue(b, &record); err != nil {
			return nil, nil, err
		}
		message, err := toDiskMessage(record)
		if err != nil {
			return nil, nil, err
		}
		diskMessages = append(diskMessages, message)
	}
	// An empty page means the scan is exhausted; a nil cursor tells the
	// caller there is nothing left to fetch.
	if lastKey == "" {
		return diskMessages, nil, nil
	}
	return diskMessages, &lastKey, nil
}

func fromDiskMessage(message DiskMessage) messageRecord {
	return messageRecord{
		ID:      message.ID.String(),
		ChatID:  message.ChatID.String(),
		Sender:  message.Sender,
		Content: message.Content,
		At:      message.At.UnixNano(),
	}
}

func toDiskMessage(record messageRecord) (DiskMessage, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return DiskMessage{}, err
	}
	parsedChatID, err := uuid.Parse(record.ChatID)
	if err != nil {
		return DiskMessage{}, err
	}
	return DiskMessage{
		ID:      parsedID,
		ChatID:  parsedChatID,
		Sender:  record.Sender,
		Content: record.Content,
		At:      timeFromNano(record.At),
	}, nil
}

func timeFromNano(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}
