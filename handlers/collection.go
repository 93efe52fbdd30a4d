package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/classcollect/classcollect-api/middleware"
	"github.com/classcollect/classcollect-api/models"
	"github.com/classcollect/classcollect-api/utils"
)

type DBHandler struct {
	*gorm.DB
	UploadDir string
	Issues    FeedbackForwarder
}

// POST /collections
func (db *DBHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	type CreateCollectionRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Status      string `json:"status"`
	}
	var req CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("CreateCollection: Invalid request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Collection name is required", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPrivate
	}
	if req.Status != models.StatusPrivate && req.Status != models.StatusPublic {
		http.Error(w, "Status must be private or public", http.StatusBadRequest)
		return
	}

	collection := models.Collection{
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Status:             req.Status,
		UserID:             user.ID,
		CreatorUsername:    user.Username,
		CreatorDisplayName: user.DisplayName,
	}
	// Collection timestamps are kept in the fixed civil timezone
	collection.CreatedAt = utils.CivilNow()

	if err := db.Create(&collection).Error; err != nil {
		log.Printf("CreateCollection: Failed to create collection: %v", err)
		http.Error(w, "Failed to create collection", http.StatusInternalServerError)
		return
	}

	log.Printf("CreateCollection: Created collection id=%d for userID=%d", collection.ID, user.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(collection)
}

// GET /users/me/collections
func (db *DBHandler) GetMyCollections(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var collections []models.Collection
	if err := db.Preload("Items").Where("user_id = ?", user.ID).Order("created_at desc").Find(&collections).Error; err != nil {
		log.Printf("GetMyCollections: Failed to fetch collections for userID=%d: %v", user.ID, err)
		http.Error(w, "Failed to fetch collections", http.StatusInternalServerError)
		return
	}
	if len(collections) == 0 {
		collections = []models.Collection{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collections)
}

// PUT /collections/{id}
func (db *DBHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	collection, ok := db.findOwnedCollection(w, r, user)
	if !ok {
		return
	}

	type UpdateCollectionRequest struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		Status      *string `json:"status,omitempty"`
	}
	var req UpdateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("UpdateCollection: Invalid request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		collection.Name = *req.Name
	}
	if req.Description != nil {
		collection.Description = *req.Description
	}
	if req.Category != nil {
		collection.Category = *req.Category
	}
	if req.Status != nil {
		if *req.Status != models.StatusPrivate && *req.Status != models.StatusPublic {
			http.Error(w, "Status must be private or public", http.StatusBadRequest)
			return
		}
		collection.Status = *req.Status
	}

	if err := db.Save(collection).Error; err != nil {
		log.Printf("UpdateCollection: Failed to update collection id=%d: %v", collection.ID, err)
		http.Error(w, "Failed to update collection", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collection)
}

// DELETE /collections/{id}
//
// Completion records reference the collection and are removed first;
// items go with the collection through the foreign-key cascade. The
// delete is unscoped so the cascade fires at the database level.
func (db *DBHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	collection, ok := db.findOwnedCollection(w, r, user)
	if !ok {
		return
	}

	if err := db.Where("collection_id = ?", collection.ID).Delete(&models.CompletionRecord{}).Error; err != nil {
		log.Printf("DeleteCollection: Failed to delete completion records for id=%d: %v", collection.ID, err)
		http.Error(w, "Failed to delete collection", http.StatusInternalServerError)
		return
	}
	if err := db.Unscoped().Delete(collection).Error; err != nil {
		log.Printf("DeleteCollection: Failed to delete collection id=%d: %v", collection.ID, err)
		http.Error(w, "Failed to delete collection", http.StatusInternalServerError)
		return
	}

	log.Printf("DeleteCollection: Deleted collection id=%d", collection.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"detail": "Collection deleted successfully"})
}

// GET /collections/{id}/items
func (db *DBHandler) GetCollectionItems(w http.ResponseWriter, r *http.Request) {
	collectionID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid collection ID", http.StatusBadRequest)
		return
	}

	var items []models.Item
	if err := db.Where("collection_id = ?", collectionID).Find(&items).Error; err != nil {
		log.Printf("GetCollectionItems: Failed to fetch items for collectionID=%d: %v", collectionID, err)
		http.Error(w, "Failed to fetch items", http.StatusInternalServerError)
		return
	}
	if len(items) == 0 {
		items = []models.Item{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// POST /collections/{id}/items
//
// Replaces the collection's items with the supplied names.
func (db *DBHandler) ReplaceCollectionItems(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	collection, ok := db.findOwnedCollection(w, r, user)
	if !ok {
		return
	}

	var names []string
	if err := json.NewDecoder(r.Body).Decode(&names); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("collection_id = ?", collection.ID).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		for _, name := range names {
			item := models.Item{Name: name, CollectionID: collection.ID}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ReplaceCollectionItems: Failed for collectionID=%d: %v", collection.ID, err)
		http.Error(w, "Failed to save items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Items added successfully"})
}

// GET /collections/public
func (db *DBHandler) GetPublicCollections(w http.ResponseWriter, r *http.Request) {
	var collections []models.Collection
	if err := db.Preload("Items").Where("status = ?", models.StatusPublic).Order("created_at desc").Find(&collections).Error; err != nil {
		log.Printf("GetPublicCollections: Failed to fetch public collections: %v", err)
		http.Error(w, "Failed to fetch public collections", http.StatusInternalServerError)
		return
	}
	if len(collections) == 0 {
		collections = []models.Collection{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collections)
}

// GET /collections/search?query=
//
// Case-insensitive match on the collection name or the owning
// username, restricted to public collections.
func (db *DBHandler) SearchPublicCollections(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		http.Error(w, "Query parameter is required", http.StatusBadRequest)
		return
	}

	pattern := "%" + query + "%"
	var collections []models.Collection
	err := db.Preload("Items").
		Joins("JOIN users ON users.id = collections.user_id").
		Where("collections.status = ?", models.StatusPublic).
		Where("LOWER(collections.name) LIKE LOWER(?) OR LOWER(users.username) LIKE LOWER(?)", pattern, pattern).
		Order("collections.created_at desc").
		Find(&collections).Error
	if err != nil {
		log.Printf("SearchPublicCollections: Search failed for query=%q: %v", query, err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}
	if len(collections) == 0 {
		collections = []models.Collection{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collections)
}

// findOwnedCollection loads the collection from the path ID and
// enforces ownership, writing the error response itself on failure.
func (db *DBHandler) findOwnedCollection(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Collection, bool) {
	collectionID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid collection ID", http.StatusBadRequest)
		return nil, false
	}

	var collection models.Collection
	if err := db.First(&collection, collectionID).Error; err != nil {
		http.Error(w, fmt.Sprintf("Collection with ID %d not found", collectionID), http.StatusNotFound)
		return nil, false
	}
	if collection.UserID != user.ID {
		log.Printf("findOwnedCollection: user %d attempted to modify collection %d", user.ID, collection.ID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return &collection, true
}

func parseID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
