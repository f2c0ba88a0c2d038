package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/unt-prep/backend/internal/auth"
	"github.com/unt-prep/backend/internal/bank"
	"github.com/unt-prep/backend/internal/database"
	"github.com/unt-prep/backend/internal/exam"
	"github.com/unt-prep/backend/internal/history"
	"github.com/unt-prep/backend/internal/middleware"
	"github.com/unt-prep/backend/internal/prediction"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Load the question bank into memory
	questionBank := bank.New(bank.NewStore(db))
	if err := questionBank.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	log.Printf("Question bank loaded with %d questions", questionBank.Size())

	// Initialize handlers
	historyStore := history.NewStore(db)
	examService := exam.NewService(exam.NewManager(), questionBank, prediction.NewStore(db), historyStore)

	authHandler := auth.NewHandler(db)
	bankHandler := bank.NewHandler(questionBank, bank.NewStore(db))
	predictionHandler := prediction.NewHandler(prediction.NewStore(db))
	examHandler := exam.NewHandler(examService)
	historyHandler := history.NewHandler(historyStore)

	// Session countdowns run server-side
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go examService.RunTicker(ctx)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/subjects", bankHandler.ListSubjects).Methods("GET")
	protected.HandleFunc("/programs", predictionHandler.ListPrograms).Methods("GET")

	protected.HandleFunc("/sessions", examHandler.CreateSession).Methods("POST")
	protected.HandleFunc("/sessions/{id}", examHandler.GetSession).Methods("GET")
	protected.HandleFunc("/sessions/{id}/configure", examHandler.Configure).Methods("POST")
	protected.HandleFunc("/sessions/{id}/start", examHandler.Start).Methods("POST")
	protected.HandleFunc("/sessions/{id}/answer", examHandler.SetAnswer).Methods("POST")
	protected.HandleFunc("/sessions/{id}/flag", examHandler.ToggleFlag).Methods("POST")
	protected.HandleFunc("/sessions/{id}/next", examHandler.Next).Methods("POST")
	protected.HandleFunc("/sessions/{id}/prev", examHandler.Prev).Methods("POST")
	protected.HandleFunc("/sessions/{id}/navigate", examHandler.Navigate).Methods("POST")
	protected.HandleFunc("/sessions/{id}/finish", examHandler.Finish).Methods("POST")
	protected.HandleFunc("/sessions/{id}/review", examHandler.Review).Methods("POST")
	protected.HandleFunc("/sessions/{id}/review/end", examHandler.EndReview).Methods("POST")
	protected.HandleFunc("/sessions/{id}/reset", examHandler.Reset).Methods("POST")

	protected.HandleFunc("/diagnostic", examHandler.SubmitDiagnostic).Methods("POST")

	protected.HandleFunc("/results", historyHandler.ListResults).Methods("GET")
	protected.HandleFunc("/results/trend", historyHandler.GetTrend).Methods("GET")
	protected.HandleFunc("/results/{id}", historyHandler.GetResult).Methods("GET")

	// Admin import/export of the question bank
	protected.HandleFunc("/admin/questions/import", bankHandler.ImportQuestions).Methods("POST")
	protected.HandleFunc("/admin/questions/export", bankHandler.ExportQuestions).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
