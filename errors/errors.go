package errors

import "fmt"

var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrUsernameTaken      = fmt.Errorf("username already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrChatWithSelf       = fmt.Errorf("cannot create a chat with yourself")
	ErrChatAlreadyExists  = fmt.Errorf("chat between these users already exists")
	ErrChatNotFound       = fmt.Errorf("chat not found")
	ErrNotChatMember      = fmt.Errorf("user is not a member of this chat")
	ErrUnsupportedAvatar  = fmt.Errorf("avatar must be an image")
)
