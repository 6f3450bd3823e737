// Package stubs provides in-memory repository implementations so services can
// be tested without a database.
package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// ReservationStore is an in-memory ReservationRepository.
type ReservationStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]*models.Reservation
}

// NewReservationStore creates an empty reservation store.
func NewReservationStore() *ReservationStore {
	return &ReservationStore{nextID: 1, items: make(map[uint]*models.Reservation)}
}

func (s *ReservationStore) Create(ctx context.Context, res *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.ID = s.nextID
	s.nextID++
	res.CreatedAt = time.Now()
	cp := *res
	s.items[res.ID] = &cp
	return nil
}

func (s *ReservationStore) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *res
	return &cp, nil
}

func (s *ReservationStore) Update(ctx context.Context, res *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[res.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *res
	s.items[res.ID] = &cp
	return nil
}

func (s *ReservationStore) List(ctx context.Context, status string, offset, limit int) ([]*models.Reservation, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.Reservation
	for _, res := range s.items {
		if status == "" || res.Status == status {
			cp := *res
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *ReservationStore) ListByReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Reservation, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.Reservation
	for _, res := range s.items {
		if res.ReaderID == readerID {
			cp := *res
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *ReservationStore) FindOverlappingForBook(ctx context.Context, bookID uint, start, end time.Time, excludeID uint) ([]*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Reservation
	for _, res := range s.items {
		if res.BookID != bookID || res.ID == excludeID || !res.IsActive() {
			continue
		}
		if overlaps(res, start, end) {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *ReservationStore) FindOverlappingForReader(ctx context.Context, readerID uint, start, end time.Time, excludeID uint) ([]*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Reservation
	for _, res := range s.items {
		if res.ReaderID != readerID || res.ID == excludeID || !res.IsActive() {
			continue
		}
		if overlaps(res, start, end) {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *ReservationStore) CancelExpiredPending(ctx context.Context, before time.Time, reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, res := range s.items {
		if res.Status == models.ReservationStatusPending && res.EndDate.Before(before) {
			res.Status = models.ReservationStatusCancelled
			res.RejectionReason = reason
			n++
		}
	}
	return n, nil
}

func overlaps(res *models.Reservation, start, end time.Time) bool {
	return !res.StartDate.After(end) && !start.After(res.EndDate)
}

// LoanStore is an in-memory LoanRepository backed by a BookStore so the
// borrow/return book status flips behave like the transactional repository.
type LoanStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]*models.Loan
	books  *BookStore
}

// NewLoanStore creates an empty loan store wired to the given book store.
func NewLoanStore(books *BookStore) *LoanStore {
	return &LoanStore{nextID: 1, items: make(map[uint]*models.Loan), books: books}
}

func (s *LoanStore) CreateBorrowed(ctx context.Context, loan *models.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan.ID = s.nextID
	s.nextID++
	loan.Status = models.LoanStatusBorrowed
	cp := *loan
	s.items[loan.ID] = &cp
	return s.books.UpdateStatus(ctx, loan.BookID, models.BookStatusBorrowed)
}

func (s *LoanStore) MarkReturned(ctx context.Context, loan *models.Loan, returnedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[loan.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = models.LoanStatusReturned
	stored.ReturnDate = &returnedAt
	loan.Status = models.LoanStatusReturned
	loan.ReturnDate = &returnedAt
	return s.books.UpdateStatus(ctx, loan.BookID, models.BookStatusAvailable)
}

func (s *LoanStore) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loan, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *loan
	return &cp, nil
}

func (s *LoanStore) GetActiveByBook(ctx context.Context, bookID uint) (*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, loan := range s.items {
		if loan.BookID == bookID && loan.Status == models.LoanStatusBorrowed {
			cp := *loan
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *LoanStore) ExistsForReservation(ctx context.Context, reservationID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, loan := range s.items {
		if loan.ReservationID != nil && *loan.ReservationID == reservationID {
			return true, nil
		}
	}
	return false, nil
}

func (s *LoanStore) List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.Loan
	for _, loan := range s.items {
		if status == "" || loan.Status == status {
			cp := *loan
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *LoanStore) ListByReader(ctx context.Context, readerID uint, offset, limit int) ([]*models.Loan, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.Loan
	for _, loan := range s.items {
		if loan.ReaderID == readerID {
			cp := *loan
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *LoanStore) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, loan := range s.items {
		if loan.IsOverdue(now) {
			n++
		}
	}
	return n, nil
}

// BookStore is an in-memory BookRepository.
type BookStore struct {
	mu           sync.RWMutex
	nextID       uint
	nextAuthorID uint
	items        map[uint]*models.Book
	authors      map[uint]*models.Author
}

// NewBookStore creates an empty book store.
func NewBookStore() *BookStore {
	return &BookStore{
		nextID:       1,
		nextAuthorID: 1,
		items:        make(map[uint]*models.Book),
		authors:      make(map[uint]*models.Author),
	}
}

func (s *BookStore) Create(ctx context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = s.nextID
	s.nextID++
	if book.Status == "" {
		book.Status = models.BookStatusAvailable
	}
	cp := *book
	s.items[book.ID] = &cp
	return nil
}

func (s *BookStore) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *book
	if a, ok := s.authors[book.AuthorID]; ok {
		ac := *a
		cp.Author = &ac
	}
	return &cp, nil
}

func (s *BookStore) Update(ctx context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[book.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *book
	s.items[book.ID] = &cp
	return nil
}

func (s *BookStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	book.Status = status
	return nil
}

func (s *BookStore) List(ctx context.Context, filter repositories.BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.Book
	for _, book := range s.items {
		if filter.Genre != "" && book.Genre != filter.Genre {
			continue
		}
		if filter.OnlyAvailable && book.Status != models.BookStatusAvailable {
			continue
		}
		cp := *book
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *BookStore) Genres(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var genres []string
	for _, book := range s.items {
		if book.Genre != "" && !seen[book.Genre] {
			seen[book.Genre] = true
			genres = append(genres, book.Genre)
		}
	}
	sort.Strings(genres)
	return genres, nil
}

func (s *BookStore) GetOrCreateAuthor(ctx context.Context, firstName, lastName string) (*models.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.authors {
		if a.FirstName == firstName && a.LastName == lastName {
			cp := *a
			return &cp, nil
		}
	}
	author := &models.Author{ID: s.nextAuthorID, FirstName: firstName, LastName: lastName}
	s.nextAuthorID++
	s.authors[author.ID] = author
	cp := *author
	return &cp, nil
}

func (s *BookStore) ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, book := range s.items {
		if book.ISBN == isbn && book.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// ReaderStore is an in-memory ReaderRepository.
type ReaderStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]*models.Reader
}

// NewReaderStore creates an empty reader store.
func NewReaderStore() *ReaderStore {
	return &ReaderStore{nextID: 1, items: make(map[uint]*models.Reader)}
}

func (s *ReaderStore) Create(ctx context.Context, reader *models.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reader.ID = s.nextID
	s.nextID++
	cp := *reader
	s.items[reader.ID] = &cp
	return nil
}

func (s *ReaderStore) GetByID(ctx context.Context, id uint) (*models.Reader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reader, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reader
	return &cp, nil
}

func (s *ReaderStore) GetByUserID(ctx context.Context, userID uint) (*models.Reader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, reader := range s.items {
		if reader.UserID == userID {
			cp := *reader
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *ReaderStore) List(ctx context.Context, offset, limit int) ([]*models.Reader, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.Reader
	for _, reader := range s.items {
		cp := *reader
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

// RequestStore is an in-memory ReaderRequestRepository.
type RequestStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]*models.ReaderRequest
}

// NewRequestStore creates an empty reader request store.
func NewRequestStore() *RequestStore {
	return &RequestStore{nextID: 1, items: make(map[uint]*models.ReaderRequest)}
}

func (s *RequestStore) Create(ctx context.Context, req *models.ReaderRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = s.nextID
	s.nextID++
	req.CreatedAt = time.Now()
	cp := *req
	s.items[req.ID] = &cp
	return nil
}

func (s *RequestStore) GetByID(ctx context.Context, id uint) (*models.ReaderRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *RequestStore) Update(ctx context.Context, req *models.ReaderRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[req.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *req
	s.items[req.ID] = &cp
	return nil
}

func (s *RequestStore) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.ReaderRequest, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.ReaderRequest
	for _, req := range s.items {
		if status == "" || req.Status == status {
			cp := *req
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *RequestStore) LatestByUser(ctx context.Context, userID uint) (*models.ReaderRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.ReaderRequest
	for _, req := range s.items {
		if req.UserID != userID {
			continue
		}
		if latest == nil || req.ID > latest.ID {
			latest = req
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *RequestStore) HasPendingByUser(ctx context.Context, userID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, req := range s.items {
		if req.UserID == userID && req.Status == models.RequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

// UserStore is an in-memory UserRepository.
type UserStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]*models.User
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, items: make(map[uint]*models.User)}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now()
	cp := *user
	s.items[user.ID] = &cp
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.items {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.items {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	s.items[user.ID] = &cp
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *UserStore) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []*models.User
	for _, user := range s.items {
		cp := *user
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *UserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// TokenStore is an in-memory RefreshTokenRepository.
type TokenStore struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]*models.RefreshToken
}

// NewTokenStore creates an empty refresh token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{nextID: 1, items: make(map[uint]*models.RefreshToken)}
}

func (s *TokenStore) Create(ctx context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token.ID = s.nextID
	s.nextID++
	cp := *token
	s.items[token.ID] = &cp
	return nil
}

func (s *TokenStore) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, token := range s.items {
		if token.TokenHash == tokenHash {
			cp := *token
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *TokenStore) GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.RefreshToken
	for _, token := range s.items {
		if token.UserID == userID {
			cp := *token
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *TokenStore) Revoke(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

func (s *TokenStore) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, token := range s.items {
		if token.TokenHash == tokenHash {
			token.RevokedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *TokenStore) RevokeAllByUserID(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, token := range s.items {
		if token.UserID == userID {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (s *TokenStore) DeleteExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, token := range s.items {
		if token.ExpiresAt.Before(now) {
			delete(s.items, id)
		}
	}
	return nil
}

func page[T any](items []*T, offset, limit int) []*T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
