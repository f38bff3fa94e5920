package database

import (
	"fmt"
	"log"

	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.NftPurchase{},
		&models.CommissionSchedule{},
		&models.Withdrawal{},
		&models.SupportTicket{},
		&models.TicketMessage{},
		&models.Setting{},
		&models.JobLock{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}

	SeedJobLocks()
	fmt.Println("✅ Database migration successful")
}

// SeedJobLocks makes sure the advisory-lock rows exist so trigger runs can claim them
// with a plain conditional UPDATE.
func SeedJobLocks() {
	for _, name := range []string{models.JobLockCommissionDisbursement, models.JobLockDeactivationSweep} {
		lock := models.JobLock{Name: name}
		if err := DB.Where(models.JobLock{Name: name}).FirstOrCreate(&lock).Error; err != nil {
			log.Fatalf("🔥 Failed to seed job lock %s: %v", name, err)
		}
	}
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		MemberID: "ADMIN001",
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
