package handlers

import (
	"errors"
	"strconv"

	"libraria/internal/adapters/http/middleware"
	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/core/domain"
	"libraria/internal/core/services"
	"libraria/internal/pkg/pagination"
	"libraria/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	catalogService *services.CatalogService
}

// NewBookHandler creates a new book handler
func NewBookHandler(catalogService *services.CatalogService) *BookHandler {
	return &BookHandler{catalogService: catalogService}
}

// ListBooks handles catalog listing with filters
// @Summary List books
// @Description Get catalog books filtered by title, author, genre or availability
// @Tags Books
// @Accept json
// @Produce json
// @Param title query string false "Title contains"
// @Param author query string false "Author name contains"
// @Param genre query string false "Exact genre"
// @Param available query bool false "Only available books"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(9)
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) ListBooks(c *fiber.Ctx) error {
	params := pagination.GetCatalogParams(c)
	filter := repositories.BookFilter{
		Title:         c.Query("title"),
		Author:        c.Query("author"),
		Genre:         c.Query("genre"),
		OnlyAvailable: c.QueryBool("available"),
	}

	books, total, err := h.catalogService.ListBooks(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	items := make([]*models.BookResponse, 0, len(books))
	for _, book := range books {
		items = append(items, book.ToResponse())
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(items, params, total))
}

// GetBook handles getting a single book
// @Summary Get book
// @Description Get one book with its author
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.catalogService.GetBook(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// Genres handles listing catalog genres
// @Summary List genres
// @Description Get the distinct genres present in the catalog
// @Tags Books
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /books/genres [get]
func (h *BookHandler) Genres(c *fiber.Ctx) error {
	genres, err := h.catalogService.Genres(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list genres")
	}

	return response.Success(c, "Genres retrieved successfully", fiber.Map{
		"genres": genres,
	})
}

// CreateBook handles adding a book (staff)
// @Summary Create book
// @Description Add a book to the catalog (staff only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookInput true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books [post]
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.catalogService.CreateBook(c.Context(), middleware.Actor(c), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Title, ISBN and author name are required")
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "A book with this ISBN already exists")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Staff access required")
		default:
			return response.InternalServerError(c, "Failed to create book")
		}
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// UpdateBook handles editing a book (staff)
// @Summary Update book
// @Description Edit catalog fields of a book (staff only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body services.BookInput true "Book data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.catalogService.UpdateBook(c.Context(), middleware.Actor(c), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrDuplicateEntry):
			return response.Conflict(c, "A book with this ISBN already exists")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Staff access required")
		default:
			return response.InternalServerError(c, "Failed to update book")
		}
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}
