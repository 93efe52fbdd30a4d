package handlers

import (
	"context"
	"net/http"
	"testing"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/classcollect/classcollect-api/config"
	"github.com/classcollect/classcollect-api/middleware"
	"github.com/classcollect/classcollect-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and makes
	// the foreign-key pragma stick.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, config.Migrate(db))
	return db
}

func newTestHandler(t *testing.T) *DBHandler {
	t.Helper()
	return &DBHandler{DB: newTestDB(t), UploadDir: t.TempDir()}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Auth0ID:     "auth0|" + username,
		Username:    username,
		DisplayName: username,
		Role:        models.RoleStudent,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// asUser attaches a resolved user to the request the same way the
// sync middleware does.
func asUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(middleware.ContextWithUser(r.Context(), user))
}

// withValidatedClaims simulates a request that passed JWKS validation
// without going through the user sync middleware.
func withValidatedClaims(r *http.Request, subject string) *http.Request {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
	}
	ctx := context.WithValue(r.Context(), jwtmiddleware.ContextKey{}, claims)
	return r.WithContext(ctx)
}
