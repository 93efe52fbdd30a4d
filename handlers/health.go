package handlers

import (
	"encoding/json"
	"net/http"
)

// GET /health
func (db *DBHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	sqlDB, err := db.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		status = "database unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
