package postgres_test

import (
	"context"
	"filedrop/internal/adapters/repository/postgres"
	"filedrop/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSqlUserRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	userRepo := postgres.NewSqlUserRepository(dbConnection)

	t.Run("FindIDByAPIKey - Nominal case", func(t *testing.T) {
		// Arrange
		truncate()
		key := "key-123"
		postgres.SeedUser(t, dbConnection, "user-1", &key)

		// Act
		id, err := userRepo.FindIDByAPIKey(ctx, key)

		// Assert
		require.NoError(t, err)
		require.Equal(t, "user-1", id)
	})

	t.Run("FindIDByAPIKey - Unknown key", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		_, err := userRepo.FindIDByAPIKey(ctx, "nope")

		// Assert
		require.ErrorIs(t, err, domain.ErrInvalidAPIKey)
	})
}
