package neo4jdb

import (
	"context"
	"fmt"
	"log"

	"github.com/VitaminP8/picstream/internal/config"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var Driver neo4j.DriverWithContext

// InitDriver подключается к Neo4j и устанавливает глобальную переменную Driver
func InitDriver(ctx context.Context) error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	uri := config.GetEnv("NEO4J_URI")
	username := config.GetEnv("NEO4J_USER")
	password := config.GetEnv("NEO4J_PASSWORD")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	Driver = driver
	log.Println("Successfully connected to Neo4j.")
	return nil
}

// CloseDriver закрывает соединение с графовой базой
func CloseDriver(ctx context.Context) error {
	if Driver == nil {
		return nil
	}

	err := Driver.Close(ctx)
	if err != nil {
		return fmt.Errorf("failed to close the neo4j connection: %w", err)
	}

	log.Println("Neo4j connection closed.")
	return nil
}

// InitDriverWithConnection для тестирования (позволяет инъекцию драйвера)
func InitDriverWithConnection(driver neo4j.DriverWithContext) {
	Driver = driver
}
