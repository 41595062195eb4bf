package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/geoquiz/backend/internal/adaptive"
	"github.com/geoquiz/backend/internal/database"
	"github.com/geoquiz/backend/internal/performance"
	"github.com/geoquiz/backend/internal/quiz"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire the adaptation loop
	tracker := performance.NewTracker(performance.NewStore(db))
	predictor := adaptive.NewPredictor()
	modelStore := adaptive.NewModelStore(db)

	service := quiz.NewService(tracker, predictor, modelStore)
	if err := service.RestoreLatestModel(); err != nil {
		log.Printf("WARN: model reload failed, starting untrained: %v", err)
	}

	handler := quiz.NewHandler(service)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/attempts", handler.SubmitAttempt).Methods("POST")
	api.HandleFunc("/students/summary", handler.GetSummary).Methods("GET")
	api.HandleFunc("/students/{id}/snapshot", handler.GetSnapshot).Methods("GET")
	api.HandleFunc("/students/{id}/next-difficulty", handler.GetNextDifficulty).Methods("GET")
	api.HandleFunc("/students/{id}/progress", handler.GetProgress).Methods("GET")
	api.HandleFunc("/students/{id}/attempts", handler.GetAttempts).Methods("GET")
	api.HandleFunc("/model/train", handler.TrainModel).Methods("POST")
	api.HandleFunc("/model/info", handler.GetModelInfo).Methods("GET")

	// Health check
	r.HandleFunc("/health", handler.Health).Methods("GET")

	// Optional periodic retraining
	if os.Getenv("AUTO_TRAIN_ENABLED") == "true" {
		go service.StartAutoTrainWorker(context.Background(), time.Hour)
	}

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
