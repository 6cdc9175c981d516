package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MonMotDePasseTr0pSûr!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Negative comparison (wrong password)
	match, err = ComparePassword("MauvaisMDP", hash)
	req.NoError(err)
	req.False(match)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "alice", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "alice", "ComplexPass123!"}, true},
		{"Username too short", RegisterRequest{"test@example.com", "al", "ComplexPass123!"}, true},
		{"Username not alphanumeric", RegisterRequest{"test@example.com", "al ice!", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "alice", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "alice", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", "alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", time.Hour)

	tokenString, err := tokens.Generate("user-42", []string{"user"})
	req.NoError(err)

	claims, err := tokens.Validate(tokenString)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal([]string{"user"}, claims.Roles)
	req.Equal("abilgram", claims.Issuer)
}

func TestTokenValidationFailures(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", time.Hour)

	// Wrong secret
	other := NewTokenManager("other-secret", time.Hour)
	tokenString, err := other.Generate("user-42", nil)
	req.NoError(err)
	_, err = tokens.Validate(tokenString)
	req.Error(err)

	// Expired token
	expired := NewTokenManager("test-secret", -time.Minute)
	tokenString, err = expired.Generate("user-42", nil)
	req.NoError(err)
	_, err = tokens.Validate(tokenString)
	req.Error(err)

	// Garbage
	_, err = tokens.Validate("not.a.token")
	req.Error(err)
}

func TestMiddleware(t *testing.T) {
	req := require.New(t)
	tokens := NewTokenManager("test-secret", time.Hour)

	var seenUserID string
	handler := Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Missing header
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	req.Equal(http.StatusUnauthorized, rec.Code)

	// Invalid token
	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(rec, r)
	req.Equal(http.StatusUnauthorized, rec.Code)

	// Valid token reaches the handler with the identity in context
	tokenString, err := tokens.Generate("user-42", []string{"user"})
	req.NoError(err)
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer "+tokenString)
	handler.ServeHTTP(rec, r)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("user-42", seenUserID)
}

// BenchmarkHashPassword measures the CPU/RAM cost of the Argon2id
// parameters.
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
