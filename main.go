package main

import (
	"context"
	"log"
	"os"

	"bookhaven/controllers"
	"bookhaven/database"
	"bookhaven/gcs"
	"bookhaven/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded:", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI not set")
	}
	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		log.Fatal("GCS_BUCKET not set")
	}

	store, err := db.Connect(mongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer store.Disconnect()

	uploader, err := gcs.NewUploader(context.Background(), bucket, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if err != nil {
		log.Fatal("Failed to connect to Google Cloud Storage:", err)
	}
	defer uploader.Close()

	ct := controllers.New(store, uploader, []byte(jwtSecret))

	// Publish upcoming books whose release date has passed.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		promoted, err := ct.Catalog().PromoteUpcoming()
		if err != nil {
			log.Println("Failed to promote upcoming books:", err)
			return
		}
		if promoted > 0 {
			log.Printf("Promoted %d upcoming books to new arrivals", promoted)
		}
	}); err != nil {
		log.Fatal("Failed to schedule upcoming promotion:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := gin.Default()
	routes.SetupRoutes(r, ct)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Starting server on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
