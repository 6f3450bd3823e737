package repositories

import (
	"context"
	"errors"

	"libraria/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// bookRepository implements BookRepository interface
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book with its author
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Update updates a book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// UpdateStatus updates only the availability status
func (r *bookRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// List lists books matching the filter, with pagination
func (r *bookRepository) List(ctx context.Context, filter BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Book{}).
		Joins("JOIN authors ON authors.id = books.author_id")

	if filter.Title != "" {
		query = query.Where("books.title LIKE ?", "%"+filter.Title+"%")
	}
	if filter.Author != "" {
		like := "%" + filter.Author + "%"
		query = query.Where("authors.first_name LIKE ? OR authors.last_name LIKE ?", like, like)
	}
	if filter.Genre != "" {
		query = query.Where("books.genre = ?", filter.Genre)
	}
	if filter.OnlyAvailable {
		query = query.Where("books.status = ?", models.BookStatusAvailable)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("books.title").
		Offset(offset).Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

// Genres returns the distinct genres present in the catalog
func (r *bookRepository) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Distinct("genre").
		Where("genre <> ''").
		Order("genre").
		Pluck("genre", &genres).Error
	return genres, err
}

// GetOrCreateAuthor finds an author by exact name or creates one
func (r *bookRepository) GetOrCreateAuthor(ctx context.Context, firstName, lastName string) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).
		Where("first_name = ? AND last_name = ?", firstName, lastName).
		First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	author = models.Author{FirstName: firstName, LastName: lastName}
	if err := r.db.WithContext(ctx).Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// ExistsByISBN checks whether another book already uses the ISBN
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("isbn = ?", isbn).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}
