package database

import (
	"log"
	"os"

	"satstream/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the bootstrap admin account if no admin exists yet.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD; skipped when unset.
func SeedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] bcrypt: %v", err)
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hash),
		WalletID:     uuid.New().String(),
		IsAdmin:      true,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[Seed] create admin: %v", err)
		return
	}
	log.Printf("[Seed] admin account created (%s)", email)
}

// SeedDemoUsers creates a few funded demo accounts for local
// development. Gated on SEED_DEMO_USERS; no-op when users already exist.
func SeedDemoUsers(db *gorm.DB) {
	if os.Getenv("SEED_DEMO_USERS") != "true" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("is_admin = ?", false).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] bcrypt: %v", err)
		return
	}
	demos := []models.User{
		{Username: "satoshi", Email: "satoshi@satstream.local", Balance: 100000},
		{Username: "hal", Email: "hal@satstream.local", Balance: 50000},
		{Username: "laszlo", Email: "laszlo@satstream.local", Balance: 10000},
	}
	for i := range demos {
		demos[i].PasswordHash = string(hash)
		demos[i].WalletID = uuid.New().String()
		if err := db.Create(&demos[i]).Error; err != nil {
			log.Printf("[Seed] create %s: %v", demos[i].Username, err)
		}
	}
	log.Printf("[Seed] %d demo accounts created", len(demos))
}
