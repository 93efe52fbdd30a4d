package config

import (
	"os"
	"strings"
)

// Environment holds process configuration read once at startup and
// passed explicitly to the pieces that need it.
type Environment struct {
	DatabaseURL    string
	Auth0Domain    string
	Auth0Audience  string
	JWTSecret      string
	AllowedOrigins []string
	GitHubToken    string
	GitHubRepo     string
	UploadDir      string
	Port           string
}

// Load reads configuration from environment variables, applying
// development defaults where a value is optional.
func Load() *Environment {
	env := &Environment{
		DatabaseURL:   os.Getenv("DB_URL"),
		Auth0Domain:   os.Getenv("AUTH0_DOMAIN"),
		Auth0Audience: os.Getenv("AUTH0_AUDIENCE"),
		JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
		GitHubToken:   os.Getenv("GITHUB_ACCESS_TOKEN"),
		GitHubRepo:    os.Getenv("GITHUB_REPO"),
		UploadDir:     os.Getenv("UPLOAD_DIR"),
		Port:          os.Getenv("PORT"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				env.AllowedOrigins = append(env.AllowedOrigins, origin)
			}
		}
	} else {
		env.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if env.UploadDir == "" {
		env.UploadDir = "uploads"
	}
	if env.Port == "" {
		env.Port = "8080" // fallback port for local development
	}

	return env
}
