package services

import (
	"context"
	"errors"
	"log"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/core/domain"

	"gorm.io/gorm"
)

// CatalogService handles the book catalog: listing with filters for everyone,
// create and update for staff.
type CatalogService struct {
	bookRepo repositories.BookRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(bookRepo repositories.BookRepository) *CatalogService {
	return &CatalogService{bookRepo: bookRepo}
}

// BookInput represents book creation/update input
type BookInput struct {
	Title           string `json:"title" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	PublicationYear int    `json:"publication_year"`
	Genre           string `json:"genre"`
	Publisher       string `json:"publisher"`
	Description     string `json:"description"`
	AuthorFirstName string `json:"author_first_name" validate:"required"`
	AuthorLastName  string `json:"author_last_name" validate:"required"`
}

// ListBooks lists catalog books matching the filter.
func (s *CatalogService) ListBooks(ctx context.Context, filter repositories.BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.List(ctx, filter, offset, limit)
}

// GetBook returns a book with its author.
func (s *CatalogService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// Genres returns the distinct genres in the catalog.
func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	return s.bookRepo.Genres(ctx)
}

// CreateBook adds a book to the catalog, reusing the author row when the same
// name already exists.
func (s *CatalogService) CreateBook(ctx context.Context, actor domain.Actor, input *BookInput) (*models.Book, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if input.Title == "" || input.ISBN == "" || input.AuthorFirstName == "" || input.AuthorLastName == "" {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.bookRepo.ExistsByISBN(ctx, input.ISBN, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEntry
	}

	author, err := s.bookRepo.GetOrCreateAuthor(ctx, input.AuthorFirstName, input.AuthorLastName)
	if err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:           input.Title,
		ISBN:            input.ISBN,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
		Publisher:       input.Publisher,
		Description:     input.Description,
		Status:          models.BookStatusAvailable,
		AuthorID:        author.ID,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Book created: #%d %q", book.ID, book.Title)

	return s.bookRepo.GetByID(ctx, book.ID)
}

// UpdateBook edits catalog fields. Availability status is owned by the loan
// flow and never set here.
func (s *CatalogService) UpdateBook(ctx context.Context, actor domain.Actor, id uint, input *BookInput) (*models.Book, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ISBN != "" && input.ISBN != book.ISBN {
		exists, err := s.bookRepo.ExistsByISBN(ctx, input.ISBN, book.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateEntry
		}
		book.ISBN = input.ISBN
	}

	if input.Title != "" {
		book.Title = input.Title
	}
	if input.PublicationYear != 0 {
		book.PublicationYear = input.PublicationYear
	}
	if input.Genre != "" {
		book.Genre = input.Genre
	}
	if input.Publisher != "" {
		book.Publisher = input.Publisher
	}
	if input.Description != "" {
		book.Description = input.Description
	}
	if input.AuthorFirstName != "" && input.AuthorLastName != "" {
		author, err := s.bookRepo.GetOrCreateAuthor(ctx, input.AuthorFirstName, input.AuthorLastName)
		if err != nil {
			return nil, err
		}
		book.AuthorID = author.ID
		book.Author = nil
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	log.Printf("✅ Book updated: #%d %q", book.ID, book.Title)

	return s.bookRepo.GetByID(ctx, book.ID)
}
