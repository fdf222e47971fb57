package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/chapas/internal/auth"
)

// Prints the ADMIN_TOKEN_HASH line for the token in ADMIN_TOKEN.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		log.Fatal("ADMIN_TOKEN is not set")
	}

	hash, err := auth.HashAdminToken(adminToken)
	if err != nil {
		log.Fatalf("Failed to hash admin token: %v", err)
	}

	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
}
