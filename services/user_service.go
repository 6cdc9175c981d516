package services

import (
	"abilgram/domain"
	"abilgram/errors"
	"abilgram/repositories"
	"abilgram/search"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

type IUserService interface {
	GetByID(id string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, username *string, avatar *AvatarUpload) (domain.User, error)
	SearchUsers(ctx context.Context, username string) ([]search.Hit, error)
}

// AvatarUpload is a raw uploaded avatar before validation.
type AvatarUpload struct {
	Filename string
	Data     []byte
}

type UserService struct {
	userRepository repositories.IUserRepository
	userIndex      search.IUserIndex
	mediaDir       string
	searchLimit    int
	log            *slog.Logger
}

func NewUserService(repo repositories.IUserRepository, index search.IUserIndex,
	mediaDir string, searchLimit int, log *slog.Logger) IUserService {
	return &UserService{
		userRepository: repo,
		userIndex:      index,
		mediaDir:       mediaDir,
		searchLimit:    searchLimit,
		log:            log,
	}
}

func (s *UserService) GetByID(id string) (domain.User, error) {
	user, err := s.userRepository.GetUserByID(id)
	if err != nil {
		return domain.User{}, err
	}
	return toDomainUser(user), nil
}

// UpdateProfile applies a partial profile update. An uploaded avatar is
// content-sniffed and only image types are accepted; the file lands under
// the media dir and the stored URL points at the static media route.
func (s *UserService) UpdateProfile(ctx context.Context, id string, username *string, avatar *AvatarUpload) (domain.User, error) {
	var avatarURL *string
	if avatar != nil {
		url, err := s.storeAvatar(id, avatar)
		if err != nil {
			return domain.User{}, err
		}
		avatarURL = lo.ToPtr(url)
	}

	updated, err := s.userRepository.UpdateUser(id, username, avatarURL)
	if err != nil {
		return domain.User{}, err
	}

	if username != nil {
		if err := s.userIndex.Index(id, *username); err != nil {
			s.log.Warn("Failed to reindex renamed user", "user_id", id, "err", err)
		}
	}
	return toDomainUser(updated), nil
}

func (s *UserService) SearchUsers(ctx context.Context, username string) ([]search.Hit, error) {
	return s.userIndex.Search(ctx, username, s.searchLimit)
}

func (s *UserService) storeAvatar(userID string, avatar *AvatarUpload) (string, error) {
	detected := mimetype.Detect(avatar.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf("%w: got %s", errors.ErrUnsupportedAvatar, detected)
	}

	// filepath.Base strips any path components a hostile client smuggled
	// into the filename.
	name := filepath.Base(avatar.Filename)
	dir := filepath.Join(s.mediaDir, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), avatar.Data, 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("/media/%s/%s", userID, name), nil
}

func toDomainUser(user repositories.User) domain.User {
	return domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}
