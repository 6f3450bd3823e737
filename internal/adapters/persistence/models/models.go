package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog Tables
// ============================================================

// Author represents authors table
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null;index:idx_author_name" json:"first_name"`
	LastName  string    `gorm:"size:100;not null;index:idx_author_name" json:"last_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Author) TableName() string {
	return "authors"
}

// Book status
const (
	BookStatusAvailable = "available"
	BookStatusBorrowed  = "borrowed"
)

// Book represents books table
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255;not null;index" json:"title"`
	ISBN            string         `gorm:"size:20;uniqueIndex" json:"isbn"`
	PublicationYear int            `json:"publication_year"`
	Genre           string         `gorm:"size:100;index" json:"genre"`
	Publisher       string         `gorm:"size:255" json:"publisher"`
	Description     string         `gorm:"type:text" json:"description"`
	Status          string         `gorm:"size:20;not null;default:'available'" json:"status"`
	AuthorID        uint           `gorm:"not null;index" json:"author_id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Author *Author `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// BookResponse DTO
type BookResponse struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publication_year"`
	Genre           string `json:"genre"`
	Publisher       string `json:"publisher"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	AuthorFirstName string `json:"author_first_name"`
	AuthorLastName  string `json:"author_last_name"`
}

func (b *Book) ToResponse() *BookResponse {
	resp := &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Genre:           b.Genre,
		Publisher:       b.Publisher,
		Description:     b.Description,
		Status:          b.Status,
	}
	if b.Author != nil {
		resp.AuthorFirstName = b.Author.FirstName
		resp.AuthorLastName = b.Author.LastName
	}
	return resp
}

// ============================================================
// Reader Tables
// ============================================================

// Reader represents readers table (a user approved for borrowing)
type Reader struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName        string    `gorm:"size:100;not null" json:"first_name"`
	LastName         string    `gorm:"size:100;not null" json:"last_name"`
	Address          string    `gorm:"size:255" json:"address"`
	Email            string    `gorm:"size:100" json:"email"`
	PhoneNumber      string    `gorm:"size:30" json:"phone_number"`
	CardNumber       string    `gorm:"size:36;uniqueIndex;not null" json:"card_number"`
	RegistrationDate time.Time `gorm:"not null" json:"registration_date"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Reader) TableName() string {
	return "readers"
}

// ReaderResponse DTO
type ReaderResponse struct {
	ID               uint      `json:"id"`
	UserID           uint      `json:"user_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Address          string    `json:"address"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	CardNumber       string    `json:"card_number"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (r *Reader) ToResponse() *ReaderResponse {
	return &ReaderResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Address:          r.Address,
		Email:            r.Email,
		PhoneNumber:      r.PhoneNumber,
		CardNumber:       r.CardNumber,
		RegistrationDate: r.RegistrationDate,
	}
}

// ReaderRequest status
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// ReaderRequest represents reader_requests table
type ReaderRequest struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	FirstName       string     `gorm:"size:100;not null" json:"first_name"`
	LastName        string     `gorm:"size:100;not null" json:"last_name"`
	Address         string     `gorm:"size:255" json:"address"`
	PhoneNumber     string     `gorm:"size:30" json:"phone_number"`
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ProcessedBy     *uint      `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (ReaderRequest) TableName() string {
	return "reader_requests"
}

// ============================================================
// Reservation & Loan Tables
// ============================================================

// Reservation status
const (
	ReservationStatusPending   = "pending"
	ReservationStatusApproved  = "approved"
	ReservationStatusRejected  = "rejected"
	ReservationStatusCancelled = "cancelled"
)

// Reservation represents reservations table. StartDate and EndDate are an
// inclusive calendar-day window, stored normalized to noon UTC.
type Reservation struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	BookID          uint       `gorm:"not null;index" json:"book_id"`
	ReaderID        uint       `gorm:"not null;index" json:"reader_id"`
	StartDate       time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate         time.Time  `gorm:"not null;index" json:"end_date"`
	Status          string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ProcessedBy     *uint      `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Book   *Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Reader *Reader `gorm:"foreignKey:ReaderID" json:"reader,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// IsActive reports whether the reservation still occupies its window.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusApproved
}

// ReservationResponse DTO
type ReservationResponse struct {
	ID              uint       `json:"id"`
	BookID          uint       `json:"book_id"`
	BookTitle       string     `json:"book_title,omitempty"`
	ReaderID        uint       `json:"reader_id"`
	ReaderName      string     `json:"reader_name,omitempty"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (r *Reservation) ToResponse() *ReservationResponse {
	resp := &ReservationResponse{
		ID:              r.ID,
		BookID:          r.BookID,
		ReaderID:        r.ReaderID,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		ProcessedAt:     r.ProcessedAt,
		CreatedAt:       r.CreatedAt,
	}
	if r.Book != nil {
		resp.BookTitle = r.Book.Title
	}
	if r.Reader != nil {
		resp.ReaderName = r.Reader.FirstName + " " + r.Reader.LastName
	}
	return resp
}

// Loan status
const (
	LoanStatusBorrowed = "borrowed"
	LoanStatusReturned = "returned"
)

// Loan represents loans table
type Loan struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	BookID        uint       `gorm:"not null;index" json:"book_id"`
	ReaderID      uint       `gorm:"not null;index" json:"reader_id"`
	ReservationID *uint      `gorm:"uniqueIndex" json:"reservation_id,omitempty"`
	LoanDate      time.Time  `gorm:"not null" json:"loan_date"`
	DueDate       time.Time  `gorm:"not null;index" json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Status        string     `gorm:"size:20;not null;default:'borrowed';index" json:"status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Book        *Book        `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Reader      *Reader      `gorm:"foreignKey:ReaderID" json:"reader,omitempty"`
	Reservation *Reservation `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsOverdue reports whether the loan is still out past its due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusBorrowed && now.After(l.DueDate)
}

// OverdueDays returns how many full days the loan is past due, zero if not.
func (l *Loan) OverdueDays(now time.Time) int {
	if !l.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours() / 24)
}

// LoanResponse DTO
type LoanResponse struct {
	ID            uint       `json:"id"`
	BookID        uint       `json:"book_id"`
	BookTitle     string     `json:"book_title,omitempty"`
	ReaderID      uint       `json:"reader_id"`
	ReaderName    string     `json:"reader_name,omitempty"`
	ReservationID *uint      `json:"reservation_id,omitempty"`
	LoanDate      string     `json:"loan_date"`
	DueDate       string     `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Status        string     `json:"status"`
	Overdue       bool       `json:"overdue"`
	OverdueDays   int        `json:"overdue_days"`
}

func (l *Loan) ToResponse() *LoanResponse {
	now := time.Now()
	resp := &LoanResponse{
		ID:            l.ID,
		BookID:        l.BookID,
		ReaderID:      l.ReaderID,
		ReservationID: l.ReservationID,
		LoanDate:      l.LoanDate.Format("2006-01-02"),
		DueDate:       l.DueDate.Format("2006-01-02"),
		ReturnDate:    l.ReturnDate,
		Status:        l.Status,
		Overdue:       l.IsOverdue(now),
		OverdueDays:   l.OverdueDays(now),
	}
	if l.Book != nil {
		resp.BookTitle = l.Book.Title
	}
	if l.Reader != nil {
		resp.ReaderName = l.Reader.FirstName + " " + l.Reader.LastName
	}
	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Author{},
		&Book{},
		&Reader{},
		&ReaderRequest{},
		&Reservation{},
		&Loan{},
	)
}
