package db

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dbName = "bookhaven_db"

// Store wraps the Mongo client plus the collection handles the services use.
// It is constructed once in main and injected everywhere; no package-level
// connection state.
type Store struct {
	Client  *mongo.Client
	Books   *mongo.Collection
	Users   *mongo.Collection
	Reviews *mongo.Collection
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(uri string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	database := client.Database(dbName)
	log.Println("Connected to MongoDB")

	return &Store{
		Client:  client,
		Books:   database.Collection("books"),
		Users:   database.Collection("users"),
		Reviews: database.Collection("reviews"),
	}, nil
}

// Disconnect closes the underlying client.
func (s *Store) Disconnect() {
	if s == nil || s.Client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Client.Disconnect(ctx); err != nil {
		log.Println("Failed to disconnect MongoDB:", err)
		return
	}
	log.Println("Disconnected from MongoDB")
}

// Collection returns a handle for a collection outside the fixed set.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.Client.Database(dbName).Collection(name)
}
