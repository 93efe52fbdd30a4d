package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/classcollect/classcollect-api/auth"
	"github.com/classcollect/classcollect-api/middleware"
	"github.com/classcollect/classcollect-api/models"
)

// UserHandler extends DBHandler with the secret for locally issued
// tokens. Auth0 bearer tokens never touch it.
type UserHandler struct {
	*DBHandler
	JWTSecret string
}

// POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	var existing models.User
	if err := h.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		http.Error(w, "Username already taken", http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Register: Failed to hash password: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Username:       req.Username,
		Email:          req.Email,
		DisplayName:    req.Username,
		Role:           models.RoleStudent,
		HashedPassword: string(hashed),
	}
	if err := h.Create(&user).Error; err != nil {
		// A concurrent registration can slip past the lookup above and
		// land on the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			http.Error(w, "Username already taken", http.StatusBadRequest)
			return
		}
		log.Printf("Register: Failed to create user: %v", err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	tokenString, err := auth.CreateToken(h.JWTSecret, user.Username)
	if err != nil {
		log.Printf("Register: Token generation error: %v", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.Printf("Register: Created user %s", user.Username)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":         user,
		"access_token": tokenString,
		"token_type":   "bearer",
	})
}

// POST /token
//
// Form-encoded username/password login for locally registered users.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := h.Where("username = ?", username).First(&user).Error; err != nil {
		http.Error(w, "Incorrect username or password", http.StatusUnauthorized)
		return
	}
	if user.HashedPassword == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		http.Error(w, "Incorrect username or password", http.StatusUnauthorized)
		return
	}

	tokenString, err := auth.CreateToken(h.JWTSecret, user.Username)
	if err != nil {
		log.Printf("Token: Token generation error: %v", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"access_token": tokenString,
		"token_type":   "bearer",
	})
}

// GET /users/me
func (db *DBHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// PUT /users/me/display_name
//
// Also refreshes the denormalized creator display name on the user's
// collections so public listings stay consistent.
func (db *DBHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		http.Error(w, "Display name is required", http.StatusBadRequest)
		return
	}

	user.DisplayName = req.DisplayName
	if err := db.Save(user).Error; err != nil {
		log.Printf("UpdateDisplayName: Failed to update userID=%d: %v", user.ID, err)
		http.Error(w, "Failed to update display name", http.StatusInternalServerError)
		return
	}

	if err := db.Model(&models.Collection{}).
		Where("user_id = ?", user.ID).
		Update("creator_display_name", user.DisplayName).Error; err != nil {
		log.Printf("UpdateDisplayName: Failed to refresh creator fields for userID=%d: %v", user.ID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// PUT /users/{id}/role
func (db *DBHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.ValidRole(req.Role) {
		http.Error(w, "Role must be student or teacher", http.StatusUnprocessableEntity)
		return
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	user.Role = req.Role
	if err := db.Save(&user).Error; err != nil {
		log.Printf("UpdateUserRole: Failed to update userID=%d: %v", userID, err)
		http.Error(w, "Failed to update role", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// GET /users/{username}/sequences
func (db *DBHandler) GetSequencesForUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var sequences []models.Sequence
	if err := db.Where("user_id = ?", user.ID).Find(&sequences).Error; err != nil {
		log.Printf("GetSequencesForUser: Failed for userID=%d: %v", user.ID, err)
		http.Error(w, "Failed to fetch sequences", http.StatusInternalServerError)
		return
	}
	if len(sequences) == 0 {
		sequences = []models.Sequence{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sequences)
}
