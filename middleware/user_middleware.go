package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/classcollect/classcollect-api/models"
	"github.com/classcollect/classcollect-api/utils"
	"gorm.io/gorm"
)

type contextKey string

const userContextKey = contextKey("user")

// UserSync provisions local users just in time from validated Auth0
// claims and attaches the resolved user to the request context.
type UserSync struct {
	DB *gorm.DB
}

// Middleware resolves the current user from the token subject,
// creating a row on first sight. At most one insert or update happens
// per request.
func (s *UserSync) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := utils.GetValidatedClaims(r)
		if !ok || claims.RegisteredClaims.Subject == "" {
			http.Error(w, "No Auth0 subject found", http.StatusUnauthorized)
			return
		}

		auth0ID := claims.RegisteredClaims.Subject
		nickname := ""
		displayName := ""
		email := ""
		if customClaims, ok := claims.CustomClaims.(*CustomClaims); ok && customClaims != nil {
			nickname = customClaims.Nickname
			displayName = customClaims.Name
			email = customClaims.Email
		}

		var user models.User
		result := s.DB.Where("auth0_id = ?", auth0ID).First(&user)

		if result.Error != nil {
			// User does not exist, create a new one
			username := nickname
			if username == "" {
				username = auth0ID
			}
			if displayName == "" {
				displayName = username
			}
			user = models.User{
				Auth0ID:     auth0ID,
				Username:    username,
				Email:       email,
				DisplayName: displayName,
				Role:        models.RoleStudent,
			}
			createResult := s.DB.Create(&user)
			if createResult.Error != nil {
				http.Error(w, "Failed to create user", http.StatusInternalServerError)
				log.Println("Database creation error:", createResult.Error)
				return
			}
			log.Printf("Created new user: %s\n", user.Username)
		} else if user.DisplayName == "" || user.DisplayName == auth0ID {
			// Refresh a placeholder display name from the claims
			refreshed := displayName
			if refreshed == "" {
				refreshed = nickname
			}
			if refreshed != "" && refreshed != user.DisplayName {
				user.DisplayName = refreshed
				saveResult := s.DB.Save(&user)
				if saveResult.Error != nil {
					http.Error(w, "Failed to update user", http.StatusInternalServerError)
					log.Println("Database update error:", saveResult.Error)
					return
				}
				log.Printf("Updated display name for user: %s\n", user.Username)
			}
		}

		// Add user to context for downstream handlers
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), &user)))
	}
}

// ContextWithUser attaches a resolved user to the context.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user resolved by Middleware, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
