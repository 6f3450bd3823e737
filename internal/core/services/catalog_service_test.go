package services

import (
	"context"
	"testing"

	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/adapters/persistence/stubs"
	"libraria/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duneInput() *BookInput {
	return &BookInput{
		Title:           "Dune",
		ISBN:            "9780441172719",
		PublicationYear: 1965,
		Genre:           "Science Fiction",
		Publisher:       "Ace",
		AuthorFirstName: "Frank",
		AuthorLastName:  "Herbert",
	}
}

func TestCreateBook(t *testing.T) {
	svc := NewCatalogService(stubs.NewBookStore())
	ctx := context.Background()

	// Staff only
	_, err := svc.CreateBook(ctx, memberActor(1), duneInput())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	book, err := svc.CreateBook(ctx, staff, duneInput())
	require.NoError(t, err)

	assert.Equal(t, "Dune", book.Title)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Herbert", book.Author.LastName)

	// Duplicate ISBN rejected
	_, err = svc.CreateBook(ctx, staff, duneInput())
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
}

func TestCreateBookValidation(t *testing.T) {
	svc := NewCatalogService(stubs.NewBookStore())

	input := duneInput()
	input.Title = ""
	_, err := svc.CreateBook(context.Background(), staff, input)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	input = duneInput()
	input.AuthorLastName = ""
	_, err = svc.CreateBook(context.Background(), staff, input)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateBookReusesAuthor(t *testing.T) {
	svc := NewCatalogService(stubs.NewBookStore())
	ctx := context.Background()

	first, err := svc.CreateBook(ctx, staff, duneInput())
	require.NoError(t, err)

	second := duneInput()
	second.Title = "Dune Messiah"
	second.ISBN = "9780441172696"
	messiah, err := svc.CreateBook(ctx, staff, second)
	require.NoError(t, err)

	assert.Equal(t, first.AuthorID, messiah.AuthorID)
}

func TestUpdateBook(t *testing.T) {
	svc := NewCatalogService(stubs.NewBookStore())
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, staff, duneInput())
	require.NoError(t, err)

	updated, err := svc.UpdateBook(ctx, staff, book.ID, &BookInput{Genre: "Classic SF"})
	require.NoError(t, err)
	assert.Equal(t, "Classic SF", updated.Genre)
	assert.Equal(t, "Dune", updated.Title, "empty fields are left untouched")

	_, err = svc.UpdateBook(ctx, staff, 999, &BookInput{Title: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestUpdateBookISBNCollision(t *testing.T) {
	svc := NewCatalogService(stubs.NewBookStore())
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, staff, duneInput())
	require.NoError(t, err)

	other := duneInput()
	other.Title = "The Hobbit"
	other.ISBN = "9780547928227"
	other.AuthorFirstName = "J.R.R."
	other.AuthorLastName = "Tolkien"
	hobbit, err := svc.CreateBook(ctx, staff, other)
	require.NoError(t, err)

	_, err = svc.UpdateBook(ctx, staff, hobbit.ID, &BookInput{ISBN: duneInput().ISBN})
	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
}

func TestListBooksFilters(t *testing.T) {
	store := stubs.NewBookStore()
	svc := NewCatalogService(store)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, staff, duneInput())
	require.NoError(t, err)

	other := duneInput()
	other.Title = "Murder on the Orient Express"
	other.ISBN = "9780062693662"
	other.Genre = "Mystery"
	other.AuthorFirstName = "Agatha"
	other.AuthorLastName = "Christie"
	_, err = svc.CreateBook(ctx, staff, other)
	require.NoError(t, err)

	books, total, err := svc.ListBooks(ctx, repositories.BookFilter{Genre: "Mystery"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, "Murder on the Orient Express", books[0].Title)

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Science Fiction", "Mystery"}, genres)
}
