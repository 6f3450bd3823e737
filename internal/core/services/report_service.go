package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"libraria/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ReportService produces read-only aggregates for staff. It queries the
// database directly; reports never mutate state.
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// ActiveLoanRow is one row of the active-loans report
type ActiveLoanRow struct {
	LoanID      uint   `json:"loan_id"`
	BookTitle   string `json:"book_title"`
	ReaderName  string `json:"reader_name"`
	LoanDate    string `json:"loan_date"`
	DueDate     string `json:"due_date"`
	Overdue     bool   `json:"overdue"`
	OverdueDays int    `json:"overdue_days"`
}

// ActiveLoans lists open loans ordered most-overdue first.
func (s *ReportService) ActiveLoans(ctx context.Context) ([]ActiveLoanRow, error) {
	loans, err := s.openLoans(ctx, false)
	if err != nil {
		return nil, err
	}
	return s.loanRows(loans), nil
}

// OverdueLoans lists only open loans past their due date.
func (s *ReportService) OverdueLoans(ctx context.Context) ([]ActiveLoanRow, error) {
	loans, err := s.openLoans(ctx, true)
	if err != nil {
		return nil, err
	}
	return s.loanRows(loans), nil
}

func (s *ReportService) openLoans(ctx context.Context, overdueOnly bool) ([]*models.Loan, error) {
	query := s.db.WithContext(ctx).
		Preload("Book").Preload("Reader").
		Where("status = ?", models.LoanStatusBorrowed)
	if overdueOnly {
		query = query.Where("due_date < ?", time.Now())
	}

	var loans []*models.Loan
	err := query.Order("due_date").Find(&loans).Error
	return loans, err
}

func (s *ReportService) loanRows(loans []*models.Loan) []ActiveLoanRow {
	now := time.Now()
	rows := make([]ActiveLoanRow, 0, len(loans))
	for _, loan := range loans {
		row := ActiveLoanRow{
			LoanID:      loan.ID,
			LoanDate:    loan.LoanDate.Format("2006-01-02"),
			DueDate:     loan.DueDate.Format("2006-01-02"),
			Overdue:     loan.IsOverdue(now),
			OverdueDays: loan.OverdueDays(now),
		}
		if loan.Book != nil {
			row.BookTitle = loan.Book.Title
		}
		if loan.Reader != nil {
			row.ReaderName = loan.Reader.FirstName + " " + loan.Reader.LastName
		}
		rows = append(rows, row)
	}
	return rows
}

// PopularBookRow is one row of the popular-books ranking
type PopularBookRow struct {
	BookID           uint   `json:"book_id"`
	Title            string `json:"title"`
	ReservationCount int64  `json:"reservation_count"`
	LoanCount        int64  `json:"loan_count"`
}

// PopularBooks ranks books by reservation count, loans breaking ties.
func (s *ReportService) PopularBooks(ctx context.Context, limit int) ([]PopularBookRow, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []PopularBookRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT b.id AS book_id,
		       b.title AS title,
		       COUNT(DISTINCT r.id) AS reservation_count,
		       COUNT(DISTINCT l.id) AS loan_count
		FROM books b
		LEFT JOIN reservations r ON r.book_id = b.id AND r.status <> 'cancelled'
		LEFT JOIN loans l ON l.book_id = b.id
		GROUP BY b.id, b.title
		ORDER BY reservation_count DESC, loan_count DESC, b.title
		LIMIT ?`, limit).Scan(&rows).Error
	return rows, err
}

// readerActivityRow backs the reader-activity CSV
type readerActivityRow struct {
	ReaderID         uint
	FirstName        string
	LastName         string
	CardNumber       string
	ReservationCount int64
	LoanCount        int64
	OverdueCount     int64
}

// ReaderActivityCSV renders per-reader reservation and loan counts as CSV.
func (s *ReportService) ReaderActivityCSV(ctx context.Context) ([]byte, error) {
	var rows []readerActivityRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT rd.id AS reader_id,
		       rd.first_name,
		       rd.last_name,
		       rd.card_number,
		       COUNT(DISTINCT r.id) AS reservation_count,
		       COUNT(DISTINCT l.id) AS loan_count,
		       COUNT(DISTINCT CASE WHEN l.status = 'borrowed' AND l.due_date < ? THEN l.id END) AS overdue_count
		FROM readers rd
		LEFT JOIN reservations r ON r.reader_id = rd.id
		LEFT JOIN loans l ON l.reader_id = rd.id
		GROUP BY rd.id, rd.first_name, rd.last_name, rd.card_number
		ORDER BY loan_count DESC, rd.last_name`, time.Now()).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"reader_id", "first_name", "last_name", "card_number", "reservations", "loans", "overdue_loans"})
	for _, row := range rows {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(row.ReaderID), 10),
			row.FirstName,
			row.LastName,
			row.CardNumber,
			strconv.FormatInt(row.ReservationCount, 10),
			strconv.FormatInt(row.LoanCount, 10),
			strconv.FormatInt(row.OverdueCount, 10),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// userStatisticsRow backs the user-statistics CSV
type userStatisticsRow struct {
	UserID    uint
	Username  string
	Email     string
	Role      string
	IsActive  bool
	IsReader  bool
	CreatedAt time.Time
}

// UserStatisticsCSV renders the user roster as CSV. Admin only at the route
// level.
func (s *ReportService) UserStatisticsCSV(ctx context.Context) ([]byte, error) {
	var rows []userStatisticsRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT u.id AS user_id,
		       u.username,
		       u.email,
		       u.role,
		       u.is_active,
		       rd.id IS NOT NULL AS is_reader,
		       u.created_at
		FROM users u
		LEFT JOIN readers rd ON rd.user_id = u.id
		WHERE u.deleted_at IS NULL
		ORDER BY u.id`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"user_id", "username", "email", "role", "active", "reader", "registered_at"})
	for _, row := range rows {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(row.UserID), 10),
			row.Username,
			row.Email,
			row.Role,
			strconv.FormatBool(row.IsActive),
			strconv.FormatBool(row.IsReader),
			row.CreatedAt.Format("2006-01-02"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
