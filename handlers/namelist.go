package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/classcollect/classcollect-api/middleware"
	"github.com/classcollect/classcollect-api/models"
)

// GET /namelists
func (db *DBHandler) GetNameLists(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var lists []models.NameList
	if err := db.Where("user_id = ?", user.ID).Find(&lists).Error; err != nil {
		log.Printf("GetNameLists: Failed for userID=%d: %v", user.ID, err)
		http.Error(w, "Failed to fetch name lists", http.StatusInternalServerError)
		return
	}
	if len(lists) == 0 {
		lists = []models.NameList{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lists)
}

// POST /namelists
func (db *DBHandler) CreateNameList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name  string   `json:"name"`
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name list name is required", http.StatusBadRequest)
		return
	}

	list := models.NameList{
		Name:   req.Name,
		Names:  models.StringList(req.Names),
		UserID: user.ID,
	}
	if err := db.Create(&list).Error; err != nil {
		log.Printf("CreateNameList: Failed for userID=%d: %v", user.ID, err)
		http.Error(w, "Failed to create name list", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(list)
}

// PUT /namelists/{id}
func (db *DBHandler) UpdateNameList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	list, ok := db.findOwnedNameList(w, r, user)
	if !ok {
		return
	}

	var req struct {
		Name  *string   `json:"name,omitempty"`
		Names *[]string `json:"names,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		list.Name = *req.Name
	}
	if req.Names != nil {
		list.Names = models.StringList(*req.Names)
	}

	if err := db.Save(list).Error; err != nil {
		log.Printf("UpdateNameList: Failed to update name list id=%d: %v", list.ID, err)
		http.Error(w, "Failed to update name list", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// DELETE /namelists/{id}
func (db *DBHandler) DeleteNameList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	list, ok := db.findOwnedNameList(w, r, user)
	if !ok {
		return
	}

	if err := db.Delete(list).Error; err != nil {
		log.Printf("DeleteNameList: Failed to delete name list id=%d: %v", list.ID, err)
		http.Error(w, "Failed to delete name list", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"detail": "Name list deleted successfully"})
}

func (db *DBHandler) findOwnedNameList(w http.ResponseWriter, r *http.Request, user *models.User) (*models.NameList, bool) {
	listID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid name list ID", http.StatusBadRequest)
		return nil, false
	}

	var list models.NameList
	if err := db.First(&list, listID).Error; err != nil {
		http.Error(w, fmt.Sprintf("Name list with ID %d not found", listID), http.StatusNotFound)
		return nil, false
	}
	if list.UserID != user.ID {
		log.Printf("findOwnedNameList: user %d attempted to modify name list %d", user.ID, list.ID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return &list, true
}
