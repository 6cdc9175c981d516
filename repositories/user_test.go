package repositories

import (
	"testing"

	"abilgram/errors"

	"github.com/mama165/sdk-go/database"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func Test_CreateUser_And_Lookups(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)

	// When creating a user
	id, err := repo.CreateUser("alice@example.com", "alice", "hashed-secret")
	req.NoError(err)
	req.NotEmpty(id)

	// Then both lookup paths find the same record
	byID, err := repo.GetUserByID(id)
	req.NoError(err)
	req.Equal("alice", byID.Username)
	req.Equal("alice@example.com", byID.Email)
	req.Equal("hashed-secret", byID.PasswordHash)
	req.Equal([]string{"user"}, byID.Roles)

	byEmail, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(byID, byEmail)
}

func Test_CreateUser_Duplicate_Email_Is_Rejected(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)
	_, err = repo.CreateUser("alice@example.com", "alice", "h1")
	req.NoError(err)

	// When the same email registers again under a different name
	_, err = repo.CreateUser("alice@example.com", "alice2", "h2")

	// Then creation fails and the original record is untouched
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	user, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal("alice", user.Username)
}

func Test_CreateUser_Duplicate_Username_Is_Rejected(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)
	_, err = repo.CreateUser("alice@example.com", "alice", "h1")
	req.NoError(err)

	_, err = repo.CreateUser("other@example.com", "alice", "h2")
	req.ErrorIs(err, errors.ErrUsernameTaken)
}

func Test_GetUser_Unknown_Returns_NotFound(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)

	_, err = repo.GetUserByID("nope")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repo.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_UpdateUser_Rename_Moves_The_Index(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)
	id, err := repo.CreateUser("alice@example.com", "alice", "h1")
	req.NoError(err)

	// When alice renames herself
	updated, err := repo.UpdateUser(id, lo.ToPtr("alicia"), nil)
	req.NoError(err)
	req.Equal("alicia", updated.Username)

	// Then the old name is free again and the new one is taken
	_, err = repo.CreateUser("second@example.com", "alice", "h2")
	req.NoError(err)
	_, err = repo.CreateUser("third@example.com", "alicia", "h3")
	req.ErrorIs(err, errors.ErrUsernameTaken)
}

func Test_UpdateUser_Partial_Update(t *testing.T) {
	req := require.New(t)
	_, _, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer database.CleanupDB(badgerDB, blugeWriter)

	repo := NewUserRepository(badgerDB)
	id, err := repo.CreateUser("alice@example.com", "alice", "h1")
	req.NoError(err)

	// When only the avatar changes
	updated, err := repo.UpdateUser(id, nil, lo.ToPtr("/media/a/pic.png"))
	req.NoError(err)

	// Then the username survives untouched
	req.Equal("alice", updated.Username)
	req.Equal("/media/a/pic.png", updated.AvatarURL)

	// And a nil update is a harmless no-op
	same, err := repo.UpdateUser(id, nil, nil)
	req.NoError(err)
	req.Equal(updated, same)
}
