package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/classcollect/classcollect-api/models"
)

// ReportRow is one user's aggregated completion activity.
type ReportRow struct {
	UserID               uint   `json:"user_id"`
	Username             string `json:"username"`
	DisplayName          string `json:"display_name"`
	Role                 string `json:"role"`
	CompletionsCount     int64  `json:"completions_count"`
	CollectionsCompleted int64  `json:"collections_completed"`
	CollectionsCreated   int64  `json:"collections_created"`
	ItemsCreated         int64  `json:"items_created"`
}

// GET /reports?page=&limit=
func (db *DBHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		log.Printf("GetReports: Failed to count users: %v", err)
		http.Error(w, "Failed to fetch reports", http.StatusInternalServerError)
		return
	}

	var rows []ReportRow
	err := db.Table("users").
		Select(`users.id AS user_id,
			users.username,
			users.display_name,
			users.role,
			COUNT(completion_records.id) AS completions_count,
			COUNT(DISTINCT completion_records.collection_id) AS collections_completed,
			(SELECT COUNT(*) FROM collections WHERE collections.user_id = users.id AND collections.deleted_at IS NULL) AS collections_created,
			(SELECT COUNT(*) FROM items JOIN collections ON collections.id = items.collection_id WHERE collections.user_id = users.id AND items.deleted_at IS NULL) AS items_created`).
		Joins("LEFT JOIN completion_records ON completion_records.user_id = users.id").
		Where("users.deleted_at IS NULL").
		Group("users.id, users.username, users.display_name, users.role").
		Order("completions_count DESC, users.username ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error
	if err != nil {
		log.Printf("GetReports: Failed to aggregate reports: %v", err)
		http.Error(w, "Failed to fetch reports", http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		rows = []ReportRow{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total":   total,
		"page":    page,
		"limit":   limit,
		"reports": rows,
	})
}
