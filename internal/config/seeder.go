package config

import (
	"log"
	"time"

	"creditdesk/internal/adapters/persistence/models"
	"creditdesk/internal/core/domain"
	"creditdesk/internal/pkg/money"
	"creditdesk/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if err := s.seedDemoPortfolio(); err != nil {
		log.Printf("⚠️ Demo portfolio seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	// Check if admin already exists
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@creditdesk.example.com",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedDemoPortfolio seeds a small sample portfolio so a fresh dev
// database has something to look at: two clients, three credits in
// different states and a few repayments on the accepted one.
func (s *Seeder) seedDemoPortfolio() error {
	var count int64
	s.db.Model(&models.Client{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	hassan := &models.Client{Name: "Hassan Alami", Email: "hassan.alami@example.com"}
	yasmine := &models.Client{Name: "Yasmine Berrada", Email: "yasmine.berrada@example.com"}

	if err := s.db.Create(hassan).Error; err != nil {
		return err
	}
	if err := s.db.Create(yasmine).Error; err != nil {
		return err
	}

	acceptance := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	request := acceptance.AddDate(0, 0, -10)

	personal := &models.Credit{
		Type:           domain.CreditTypePersonal,
		Status:         domain.StatusAccepted,
		RequestDate:    request,
		AcceptanceDate: &acceptance,
		Amount:         50000,
		TermMonths:     36,
		InterestRate:   3.5,
		Motif:          "Travaux maison",
		ClientID:       hassan.ID,
	}
	if err := s.db.Create(personal).Error; err != nil {
		return err
	}

	// Two paid installments on the accepted credit
	monthly := domain.MonthlyPayment(personal.Amount, personal.InterestRate, personal.TermMonths)
	for i := 1; i <= 2; i++ {
		repayment := &models.Repayment{
			CreditID: personal.ID,
			Date:     acceptance.AddDate(0, i, 0),
			Amount:   money.Round2(monthly),
			Type:     domain.RepaymentInstallment,
		}
		if err := s.db.Create(repayment).Error; err != nil {
			return err
		}
	}

	apartment := domain.PropertyApartment
	realEstate := &models.Credit{
		Type:         domain.CreditTypeRealEstate,
		Status:       domain.StatusInProgress,
		RequestDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:       400000,
		TermMonths:   240,
		InterestRate: 4.2,
		PropertyType: &apartment,
		ClientID:     hassan.ID,
	}
	if err := s.db.Create(realEstate).Error; err != nil {
		return err
	}

	business := &models.Credit{
		Type:            domain.CreditTypeBusiness,
		Status:          domain.StatusRejected,
		RequestDate:     time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount:          150000,
		TermMonths:      48,
		InterestRate:    5.0,
		RejectionReason: "Insufficient company financials",
		CompanyName:     "Berrada Textiles SARL",
		ClientID:        yasmine.ID,
	}
	if err := s.db.Create(business).Error; err != nil {
		return err
	}

	log.Println("✅ Demo portfolio created: 2 clients, 3 credits")
	return nil
}
