package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/classcollect/classcollect-api/models"
	"github.com/classcollect/classcollect-api/utils"
)

// FeedbackForwarder mirrors feedback into an external issue tracker.
type FeedbackForwarder interface {
	CreateFeedbackIssue(ctx context.Context, feedback *models.Feedback) (int, error)
}

const maxFeedbackMemory = 10 << 20 // 10 MB

// POST /api/feedback
//
// Multipart form: message, page_url, optional images. Authentication
// is optional; anonymous feedback persists with a null user id.
// Forwarding to the issue tracker is best effort: the row is already
// committed, so a forwarding failure is logged and swallowed.
func (db *DBHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFeedbackMemory); err != nil {
		http.Error(w, "Invalid multipart payload", http.StatusBadRequest)
		return
	}

	message := r.FormValue("message")
	if message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}
	pageURL := r.FormValue("page_url")

	var imagePaths models.StringList
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			path, err := db.saveFeedbackImage(header)
			if err != nil {
				log.Printf("SubmitFeedback: Failed to save image %s: %v", header.Filename, err)
				http.Error(w, "Failed to save image", http.StatusInternalServerError)
				return
			}
			imagePaths = append(imagePaths, path)
		}
	}

	var userID *uint
	if auth0ID, ok := utils.GetAuth0ID(r); ok && auth0ID != "" {
		var user models.User
		if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err == nil {
			userID = &user.ID
		}
	}

	feedback := models.Feedback{
		Message:    message,
		PageURL:    pageURL,
		ImagePaths: imagePaths,
		UserID:     userID,
	}
	feedback.CreatedAt = utils.CivilNow()

	if err := db.Create(&feedback).Error; err != nil {
		log.Printf("SubmitFeedback: Failed to persist feedback: %v", err)
		http.Error(w, "Failed to submit feedback", http.StatusInternalServerError)
		return
	}

	if db.Issues != nil {
		if issueNumber, err := db.Issues.CreateFeedbackIssue(r.Context(), &feedback); err != nil {
			log.Printf("SubmitFeedback: Failed to forward feedback %d to issue tracker: %v", feedback.ID, err)
		} else {
			log.Printf("SubmitFeedback: Forwarded feedback %d as issue #%d", feedback.ID, issueNumber)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(feedback)
}

func (db *DBHandler) saveFeedbackImage(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	name, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	filename := name + filepath.Ext(header.Filename)

	if err := os.MkdirAll(db.UploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(db.UploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return path, nil
}
