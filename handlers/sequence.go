package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/classcollect/classcollect-api/middleware"
	"github.com/classcollect/classcollect-api/models"
)

// POST /sequences
func (db *DBHandler) CreateSequence(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Sequence name is required", http.StatusBadRequest)
		return
	}

	sequence := models.Sequence{
		Name:        req.Name,
		Description: req.Description,
		UserID:      user.ID,
	}
	if err := db.Create(&sequence).Error; err != nil {
		log.Printf("CreateSequence: Failed to create sequence for userID=%d: %v", user.ID, err)
		http.Error(w, "Failed to create sequence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sequence)
}

// PUT /sequences/{id}
func (db *DBHandler) UpdateSequence(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sequence, ok := db.findOwnedSequence(w, r, user)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		sequence.Name = *req.Name
	}
	if req.Description != nil {
		sequence.Description = *req.Description
	}

	if err := db.Save(sequence).Error; err != nil {
		log.Printf("UpdateSequence: Failed to update sequence id=%d: %v", sequence.ID, err)
		http.Error(w, "Failed to update sequence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sequence)
}

// DELETE /sequences/{id}
func (db *DBHandler) DeleteSequence(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sequence, ok := db.findOwnedSequence(w, r, user)
	if !ok {
		return
	}

	if err := db.Delete(sequence).Error; err != nil {
		log.Printf("DeleteSequence: Failed to delete sequence id=%d: %v", sequence.ID, err)
		http.Error(w, "Failed to delete sequence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"detail": "Sequence deleted successfully"})
}

func (db *DBHandler) findOwnedSequence(w http.ResponseWriter, r *http.Request, user *models.User) (*models.Sequence, bool) {
	sequenceID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid sequence ID", http.StatusBadRequest)
		return nil, false
	}

	var sequence models.Sequence
	if err := db.First(&sequence, sequenceID).Error; err != nil {
		http.Error(w, fmt.Sprintf("Sequence with ID %d not found", sequenceID), http.StatusNotFound)
		return nil, false
	}
	if sequence.UserID != user.ID {
		log.Printf("findOwnedSequence: user %d attempted to modify sequence %d", user.ID, sequence.ID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return &sequence, true
}
