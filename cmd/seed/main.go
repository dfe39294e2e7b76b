package main

import (
	"log"
	"os"
	"time"

	"govllminer-be/internal/model"
	"govllminer-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a verified demo account for local development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	email := os.Getenv("SEED_USER_EMAIL")
	if email == "" {
		email = "demo@example.com"
	}
	password := os.Getenv("SEED_USER_PASSWORD")
	if password == "" {
		password = "demo-password"
	}

	var count int64
	db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		log.Printf("User %s already exists, nothing to do", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Error: Failed to hash password:", err)
	}
	hashStr := string(hash)

	user := model.User{
		Id:            uuid.New(),
		Email:         email,
		FullName:      "Demo User",
		PasswordHash:  &hashStr,
		EmailVerified: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal("Error: Failed to seed user:", err)
	}

	log.Printf("Seeded verified user %s", email)
}
