package services

import (
	"abilgram/auth"
	"abilgram/errors"
	"abilgram/repositories"
	"abilgram/search"
	"fmt"
	"log/slog"
)

type IAuthService interface {
	Login(email, password string) (Token, error)
	Register(email, username, password string) (Token, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	userIndex      search.IUserIndex
	tokens         *auth.TokenManager
	log            *slog.Logger
}

type Token string

func NewAuthService(repo repositories.IUserRepository, index search.IUserIndex,
	tokens *auth.TokenManager, log *slog.Logger) IAuthService {
	return &AuthService{userRepository: repo, userIndex: index, tokens: tokens, log: log}
}

func (s *AuthService) Register(email, username, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	userID, err := s.userRepository.CreateUser(email, username, hashedPassword)
	if err != nil {
		return "", err // Will propagate ErrUserAlreadyExists if email is taken
	}

	// 4. Make the new user findable by username. A failed index write is
	// not fatal: the index can be rebuilt from the store.
	if err := s.userIndex.Index(userID, username); err != nil {
		s.log.Warn("Failed to index new user", "user_id", userID, "err", err)
	}

	// 5. Generate the initial session token
	token, err := s.tokens.Generate(userID, []string{"user"})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	// 1. Retrieve user by email from storage
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := s.tokens.Generate(user.ID, user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
