//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"abilgram/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, username, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	UpdateUser(id string, username, avatarURL *string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-level representation of an account. Unlike
// domain.User it carries the password hash, which must never leave the
// service layer.
type User struct {
	ID           string
	Username     string
	Email        string
	AvatarURL    string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// Key layout:
//
//	user:id:{uuid}        -> cbor(userRecord)   primary record
//	user:email:{email}    -> id                 unique index
//	user:name:{username}  -> id                 unique index
//
// Indexes are written in the same transaction as the record so a reader
// never observes a half-created user.
type userRecord struct {
	ID           string   `cbor:"id"`
	Username     string   `cbor:"username"`
	Email        string   `cbor:"email"`
	AvatarURL    string   `cbor:"avatar_url"`
	PasswordHash string   `cbor:"password_hash"`
	Roles        []string `cbor:"roles"`
	CreatedAt    int64    `cbor:"created_at"` // unix seconds
}

func userKey(id string) []byte       { return []byte("user:id:" + id) }
func emailKey(email string) []byte   { return []byte("user:email:" + email) }
func nameKey(username string) []byte { return []byte("user:name:" + username) }

// CreateUser persists a new user and returns the generated ID.
// Email and username uniqueness are enforced via index keys.
func (u UserRepository) CreateUser(email, username, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	record := userRecord{
		ID:           newID,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().Unix(),
	}

	data, err := marshalValue(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(nameKey(username)); err == nil {
			return errors.ErrUsernameTaken
		}
		if err := txn.Set(userKey(newID), data); err != nil {
			return err
		}
		if err := txn.Set(emailKey(email), []byte(newID)); err != nil {
			return err
		}
		return txn.Set(nameKey(username), []byte(newID))
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

// GetUserByEmail resolves the email index and loads the record.
func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return User{}, err
	}
	return u.GetUserByID(id)
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return errors.ErrUserNotFound
		}
		return item.Value(func(val []byte) error {
			return unmarshalValue(val, &record)
		})
	})
	if err != nil {
		return User{}, err
	}
	return toUser(record), nil
}

// UpdateUser applies a partial profile update. A nil field is left
// untouched. Renames move the username index inside the transaction.
func (u UserRepository) UpdateUser(id string, username, avatarURL *string) (User, error) {
	var updated userRecord
	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return errors.ErrUserNotFound
		}
		var record userRecord
		if err := item.Value(func(val []byte) error {
			return unmarshalValue(val, &record)
		}); err != nil {
			return err
		}

		if username != nil && *username != record.Username {
			if _, err := txn.Get(nameKey(*username)); err == nil {
				return errors.ErrUsernameTaken
			}
			if record.Username != "" {
				if err := txn.Delete(nameKey(record.Username)); err != nil {
					return err
				}
			}
			if err := txn.Set(nameKey(*username), []byte(id)); err != nil {
				return err
			}
			record.Username = *username
		}
		if avatarURL != nil {
			record.AvatarURL = *avatarURL
		}

		data, err := marshalValue(record)
		if err != nil {
			return err
		}
		updated = record
		return txn.Set(userKey(id), data)
	})
	if err != nil {
		return User{}, err
	}
	return toUser(updated), nil
}

func toUser(record userRecord) User {
	return User{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		AvatarURL:    record.AvatarURL,
		PasswordHash: record.PasswordHash,
		Roles:        record.Roles,
		CreatedAt:    time.Unix(record.CreatedAt, 0).UTC(),
	}
}
