package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/classcollect/classcollect-api/config"
	"github.com/classcollect/classcollect-api/handlers"
	"github.com/classcollect/classcollect-api/integrations"
	"github.com/classcollect/classcollect-api/middleware"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	env := config.Load()

	db, err := config.Connect(env.DatabaseURL)
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	issues, err := integrations.NewIssueCreator(env.GitHubToken, env.GitHubRepo)
	if err != nil {
		log.Printf("Warning: feedback forwarding disabled: %v", err)
	}

	authMiddleware := middleware.EnsureValidToken(env)
	userSync := &middleware.UserSync{DB: db}

	dbHandler := &handlers.DBHandler{DB: db, UploadDir: env.UploadDir}
	if issues != nil {
		dbHandler.Issues = issues
	}
	userHandler := &handlers.UserHandler{DBHandler: dbHandler, JWTSecret: env.JWTSecret}

	mux := http.NewServeMux()

	// Users
	mux.HandleFunc("POST /users", userHandler.Register)
	mux.HandleFunc("POST /token", userHandler.Token)
	mux.HandleFunc("GET /users/me", userSync.Middleware(dbHandler.GetCurrentUser))
	mux.HandleFunc("PUT /users/me/display_name", userSync.Middleware(dbHandler.UpdateDisplayName))
	mux.HandleFunc("PUT /users/{id}/role", userSync.Middleware(dbHandler.UpdateUserRole))
	mux.HandleFunc("GET /users/{username}/sequences", dbHandler.GetSequencesForUser)

	// Sequences
	mux.HandleFunc("POST /sequences", userSync.Middleware(dbHandler.CreateSequence))
	mux.HandleFunc("PUT /sequences/{id}", userSync.Middleware(dbHandler.UpdateSequence))
	mux.HandleFunc("DELETE /sequences/{id}", userSync.Middleware(dbHandler.DeleteSequence))

	// Collections
	mux.HandleFunc("POST /collections", userSync.Middleware(dbHandler.CreateCollection))
	mux.HandleFunc("GET /users/me/collections", userSync.Middleware(dbHandler.GetMyCollections))
	mux.HandleFunc("PUT /collections/{id}", userSync.Middleware(dbHandler.UpdateCollection))
	mux.HandleFunc("DELETE /collections/{id}", userSync.Middleware(dbHandler.DeleteCollection))
	mux.HandleFunc("GET /collections/public", dbHandler.GetPublicCollections)
	mux.HandleFunc("GET /collections/search", dbHandler.SearchPublicCollections)
	mux.HandleFunc("POST /collections/check-subscriptions-batch", userSync.Middleware(dbHandler.CheckSubscriptionsBatch))
	mux.HandleFunc("GET /collections/completion-counts", userSync.Middleware(dbHandler.GetCompletionCounts))

	// The three-segment collection routes overlap as ServeMux patterns
	// ("/collections/subscribe/{id}" vs "/collections/{id}/items"), so
	// they are dispatched by hand.
	subscribeHandler := userSync.Middleware(dbHandler.SubscribeToCollection)
	checkSubscriptionHandler := userSync.Middleware(dbHandler.CheckSubscription)
	recordCompletionHandler := userSync.Middleware(dbHandler.RecordCompletion)
	replaceItemsHandler := userSync.Middleware(dbHandler.ReplaceCollectionItems)

	mux.HandleFunc("POST /collections/{first}/{second}", func(w http.ResponseWriter, r *http.Request) {
		first, second := r.PathValue("first"), r.PathValue("second")
		switch {
		case first == "subscribe":
			r.SetPathValue("id", second)
			subscribeHandler(w, r)
		case second == "complete":
			r.SetPathValue("id", first)
			recordCompletionHandler(w, r)
		case second == "items":
			r.SetPathValue("id", first)
			replaceItemsHandler(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("GET /collections/{first}/{second}", func(w http.ResponseWriter, r *http.Request) {
		first, second := r.PathValue("first"), r.PathValue("second")
		switch {
		case first == "check-subscription":
			r.SetPathValue("id", second)
			checkSubscriptionHandler(w, r)
		case second == "items":
			r.SetPathValue("id", first)
			dbHandler.GetCollectionItems(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	// Name lists
	mux.HandleFunc("GET /namelists", userSync.Middleware(dbHandler.GetNameLists))
	mux.HandleFunc("POST /namelists", userSync.Middleware(dbHandler.CreateNameList))
	mux.HandleFunc("PUT /namelists/{id}", userSync.Middleware(dbHandler.UpdateNameList))
	mux.HandleFunc("DELETE /namelists/{id}", userSync.Middleware(dbHandler.DeleteNameList))

	// Feedback and reports
	mux.HandleFunc("POST /api/feedback", dbHandler.SubmitFeedback)
	mux.HandleFunc("GET /reports", dbHandler.GetReports)
	mux.HandleFunc("GET /health", dbHandler.HealthCheck)

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	serverAddr := "0.0.0.0:" + env.Port
	log.Printf("main: listening on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		log.Fatalf("main: server error: %v", err)
	}
}
