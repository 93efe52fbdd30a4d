package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/classcollect/classcollect-api/middleware"
	"github.com/classcollect/classcollect-api/models"
	"github.com/classcollect/classcollect-api/utils"
)

// POST /collections/{id}/complete
func (db *DBHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
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

	var collection models.Collection
	if err := db.First(&collection, collectionID).Error; err != nil {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	record := models.CompletionRecord{
		CollectionID: collection.ID,
		UserID:       user.ID,
		CompletedAt:  utils.CivilNow(),
	}
	if err := db.Create(&record).Error; err != nil {
		log.Printf("RecordCompletion: Failed for collectionID=%d userID=%d: %v", collection.ID, user.ID, err)
		http.Error(w, "Failed to record completion", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// GET /collections/completion-counts
//
// The caller's completion counts keyed by collection id.
func (db *DBHandler) GetCompletionCounts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	type countRow struct {
		CollectionID uint
		Count        int64
	}
	var rows []countRow
	err := db.Model(&models.CompletionRecord{}).
		Select("collection_id, COUNT(*) as count").
		Where("user_id = ?", user.ID).
		Group("collection_id").
		Scan(&rows).Error
	if err != nil {
		log.Printf("GetCompletionCounts: Failed for userID=%d: %v", user.ID, err)
		http.Error(w, "Failed to fetch completion counts", http.StatusInternalServerError)
		return
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[strconv.FormatUint(uint64(row.CollectionID), 10)] = row.Count
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}
