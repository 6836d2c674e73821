package mongodb

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/VitaminP8/picstream/internal/config"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var client *mongo.Client

var DB *mongo.Database

// GetDB возвращает глобальную переменную DB (для тестирования)
func GetDB() *mongo.Database {
	return DB
}

// InitDB подключается к MongoDB и устанавливает глобальную переменную DB
func InitDB() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	uri := config.GetEnv("MONGO_URI")
	dbName := config.GetEnvDefault("MONGO_DB", "picstream")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	client = c
	DB = c.Database(dbName)
	log.Println("Successfully connected to MongoDB.")
	return nil
}

// CloseDB закрывает соединение с базой данных
func CloseDB() error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("failed to close the mongodb connection: %w", err)
	}

	log.Println("MongoDB connection closed.")
	return nil
}

// InitDBWithConnection для тестирования (позволяет инъекцию соединения БД)
func InitDBWithConnection(db *mongo.Database) {
	DB = db
}
