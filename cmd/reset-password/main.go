package main

import (
	"flag"
	"log"

	"go-rewards-admin/internal/model"
	"go-rewards-admin/pkg/config"
	"go-rewards-admin/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "admin@example.com", "admin email to reset")
	newPassword := flag.String("password", "admin123", "new password to set")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg.DB)

	// 3. Find Admin
	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// 5. Update password and kill any live session
	if err := db.Model(&user).Updates(map[string]interface{}{
		"password":      string(hashedPassword),
		"token_version": "",
	}).Error; err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", *email)
}
