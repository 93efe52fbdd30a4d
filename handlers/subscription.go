package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/classcollect/classcollect-api/middleware"
	"github.com/classcollect/classcollect-api/models"
	"github.com/classcollect/classcollect-api/utils"
)

// POST /collections/subscribe/{id}
//
// Subscribing copies a public collection into the caller's own private
// collections. The copy is fully independent of the original.
func (db *DBHandler) SubscribeToCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	collectionID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid collection ID", http.StatusBadRequest)
		return
	}

	var source models.Collection
	if err := db.First(&source, collectionID).Error; err != nil {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}
	if source.Status != models.StatusPublic {
		// Private collections are invisible to everyone but the owner
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	var existing models.Collection
	if err := db.Where("user_id = ? AND name = ?", user.ID, source.Name).First(&existing).Error; err == nil {
		http.Error(w, "You already have a collection with this name", http.StatusBadRequest)
		return
	}

	var sourceItems []models.Item
	if err := db.Where("collection_id = ?", source.ID).Find(&sourceItems).Error; err != nil {
		log.Printf("SubscribeToCollection: Failed to load items for collection id=%d: %v", source.ID, err)
		http.Error(w, "Failed to subscribe to collection", http.StatusInternalServerError)
		return
	}

	copy := models.Collection{
		Name:               source.Name,
		Description:        source.Description,
		Category:           source.Category,
		Status:             models.StatusPrivate,
		UserID:             user.ID,
		CreatorUsername:    user.Username,
		CreatorDisplayName: user.DisplayName,
	}
	copy.CreatedAt = utils.CivilNow()

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&copy).Error; err != nil {
			return err
		}
		for _, item := range sourceItems {
			clone := models.Item{Name: item.Name, Count: item.Count, CollectionID: copy.ID}
			if err := tx.Create(&clone).Error; err != nil {
				return err
			}
			copy.Items = append(copy.Items, clone)
		}
		return nil
	})
	if err != nil {
		log.Printf("SubscribeToCollection: Failed to copy collection id=%d for userID=%d: %v", source.ID, user.ID, err)
		http.Error(w, "Failed to subscribe to collection", http.StatusInternalServerError)
		return
	}

	log.Printf("SubscribeToCollection: user %d subscribed to collection %d as %d", user.ID, source.ID, copy.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(copy)
}

// GET /collections/check-subscription/{id}
func (db *DBHandler) CheckSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	collectionID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid collection ID", http.StatusBadRequest)
		return
	}

	var source models.Collection
	if err := db.First(&source, collectionID).Error; err != nil {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	var count int64
	if err := db.Model(&models.Collection{}).Where("user_id = ? AND name = ?", user.ID, source.Name).Count(&count).Error; err != nil {
		log.Printf("CheckSubscription: Failed for collectionID=%d: %v", collectionID, err)
		http.Error(w, "Failed to check subscription", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"subscribed": count > 0})
}

// POST /collections/check-subscriptions-batch
//
// Returns a map keyed by collection id (as a string) of whether the
// caller already holds a copy. Unknown ids map to false.
func (db *DBHandler) CheckSubscriptionsBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CollectionIDs []uint `json:"collection_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := make(map[string]bool, len(req.CollectionIDs))
	for _, id := range req.CollectionIDs {
		result[strconv.FormatUint(uint64(id), 10)] = false
	}

	var sources []models.Collection
	if err := db.Where("id IN ?", req.CollectionIDs).Find(&sources).Error; err != nil {
		log.Printf("CheckSubscriptionsBatch: Failed to load collections: %v", err)
		http.Error(w, "Failed to check subscriptions", http.StatusInternalServerError)
		return
	}

	var mine []models.Collection
	if err := db.Select("name").Where("user_id = ?", user.ID).Find(&mine).Error; err != nil {
		log.Printf("CheckSubscriptionsBatch: Failed to load user collections: %v", err)
		http.Error(w, "Failed to check subscriptions", http.StatusInternalServerError)
		return
	}
	ownedNames := make(map[string]bool, len(mine))
	for _, c := range mine {
		ownedNames[c.Name] = true
	}

	for _, source := range sources {
		result[strconv.FormatUint(uint64(source.ID), 10)] = ownedNames[source.Name]
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
