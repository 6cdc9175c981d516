//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_user_index.go -package=mocks
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
)

type IUserIndex interface {
	Index(id, username string) error
	Deindex(id string) error
	Search(ctx context.Context, term string, limit int) ([]Hit, error)
}

// Hit is one username search result.
type Hit struct {
	ID       string
	Username string
}

// UserIndex maintains a Bluge full-text index of usernames so that user
// lookup can match partial input. The index is derivable from the user
// store and can be rebuilt from scratch at any time.
type UserIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewUserIndex(writer *bluge.Writer, log *slog.Logger) *UserIndex {
	return &UserIndex{writer: writer, log: log}
}

// Index upserts a user document. Called on registration and on every
// username change.
func (i *UserIndex) Index(id, username string) error {
	doc := bluge.NewDocument(id)
	doc.AddField(bluge.NewTextField("username", username).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Deindex removes a user document.
func (i *UserIndex) Deindex(id string) error {
	return i.writer.Delete(bluge.Identifier(id))
}

// Search matches usernames against the term, combining an analyzed match
// with a prefix match so that "ali" finds "alice".
func (i *UserIndex) Search(ctx context.Context, term string, limit int) ([]Hit, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(term).SetField("username")).
		AddShould(bluge.NewPrefixQuery(term).SetField("username"))

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Failed to close index reader", "err", err)
		}
	}()

	request := bluge.NewTopNSearch(limit, query)
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case "username":
				hit.Username = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
