package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/classcollect/classcollect-api/config"
	"github.com/classcollect/classcollect-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func requestWithClaims(subject, nickname, name, email string) *http.Request {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		CustomClaims:     &CustomClaims{Nickname: nickname, Name: name, Email: email},
	}
	req := httptest.NewRequest("GET", "/users/me", nil)
	ctx := context.WithValue(req.Context(), jwtmiddleware.ContextKey{}, claims)
	return req.WithContext(ctx)
}

func TestSyncUserProvisionsExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	sync := &UserSync{DB: db}

	var resolved *models.User
	handler := sync.Middleware(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		resolved = user
	})

	handler(httptest.NewRecorder(), requestWithClaims("auth0|abc123", "alice", "Alice A", "alice@example.com"))
	require.NotNil(t, resolved)
	assert.Equal(t, "alice", resolved.Username)
	assert.Equal(t, "Alice A", resolved.DisplayName)
	assert.Equal(t, models.RoleStudent, resolved.Role)
	assert.Empty(t, resolved.HashedPassword)

	// A second validation of the same subject creates no new rows
	handler(httptest.NewRecorder(), requestWithClaims("auth0|abc123", "alice", "Alice A", "alice@example.com"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSyncUserFallsBackToSubjectUsername(t *testing.T) {
	db := newTestDB(t)
	sync := &UserSync{DB: db}

	handler := sync.Middleware(func(w http.ResponseWriter, r *http.Request) {})
	handler(httptest.NewRecorder(), requestWithClaims("auth0|no-nickname", "", "", ""))

	var user models.User
	require.NoError(t, db.Where("auth0_id = ?", "auth0|no-nickname").First(&user).Error)
	assert.Equal(t, "auth0|no-nickname", user.Username)
	assert.Equal(t, "auth0|no-nickname", user.DisplayName)
}

func TestSyncUserRefreshesPlaceholderDisplayName(t *testing.T) {
	db := newTestDB(t)
	sync := &UserSync{DB: db}

	existing := models.User{
		Auth0ID:     "auth0|abc123",
		Username:    "alice",
		DisplayName: "auth0|abc123",
		Role:        models.RoleStudent,
	}
	require.NoError(t, db.Create(&existing).Error)

	handler := sync.Middleware(func(w http.ResponseWriter, r *http.Request) {})
	handler(httptest.NewRecorder(), requestWithClaims("auth0|abc123", "alice", "Alice A", ""))

	var user models.User
	require.NoError(t, db.Where("auth0_id = ?", "auth0|abc123").First(&user).Error)
	assert.Equal(t, "Alice A", user.DisplayName)
}

func TestSyncUserKeepsCustomDisplayName(t *testing.T) {
	db := newTestDB(t)
	sync := &UserSync{DB: db}

	existing := models.User{
		Auth0ID:     "auth0|abc123",
		Username:    "alice",
		DisplayName: "Ms. Alice",
		Role:        models.RoleTeacher,
	}
	require.NoError(t, db.Create(&existing).Error)

	handler := sync.Middleware(func(w http.ResponseWriter, r *http.Request) {})
	handler(httptest.NewRecorder(), requestWithClaims("auth0|abc123", "alice", "Alice A", ""))

	var user models.User
	require.NoError(t, db.Where("auth0_id = ?", "auth0|abc123").First(&user).Error)
	assert.Equal(t, "Ms. Alice", user.DisplayName)
	assert.Equal(t, models.RoleTeacher, user.Role)
}

func TestSyncUserRejectsMissingClaims(t *testing.T) {
	db := newTestDB(t)
	sync := &UserSync{DB: db}

	called := false
	handler := sync.Middleware(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
