package config

import (
	"log"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/core/domain"
	"libraria/internal/pkg/password"

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
	if err := s.seedCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds a default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@libraria.local",
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedCatalog seeds a few books so a fresh install has something to browse
func (s *Seeder) seedCatalog() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil // Catalog already populated
	}

	type seedBook struct {
		authorFirst string
		authorLast  string
		title       string
		isbn        string
		year        int
		genre       string
		publisher   string
	}

	seeds := []seedBook{
		{"Leo", "Tolstoy", "War and Peace", "9780199232765", 1869, "Classic", "Oxford University Press"},
		{"Leo", "Tolstoy", "Anna Karenina", "9780143035008", 1877, "Classic", "Penguin Classics"},
		{"Ursula", "Le Guin", "The Dispossessed", "9780061054884", 1974, "Science Fiction", "Harper Voyager"},
		{"Agatha", "Christie", "Murder on the Orient Express", "9780062693662", 1934, "Mystery", "William Morrow"},
		{"Donald", "Knuth", "The Art of Computer Programming, Vol. 1", "9780201896831", 1968, "Computing", "Addison-Wesley"},
	}

	for _, seed := range seeds {
		var author models.Author
		err := s.db.Where("first_name = ? AND last_name = ?", seed.authorFirst, seed.authorLast).
			FirstOrCreate(&author, models.Author{FirstName: seed.authorFirst, LastName: seed.authorLast}).Error
		if err != nil {
			return err
		}

		book := &models.Book{
			Title:           seed.title,
			ISBN:            seed.isbn,
			PublicationYear: seed.year,
			Genre:           seed.genre,
			Publisher:       seed.publisher,
			Status:          models.BookStatusAvailable,
			AuthorID:        author.ID,
		}
		if err := s.db.Create(book).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Catalog seeded with %d books", len(seeds))
	return nil
}
