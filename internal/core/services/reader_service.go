package services

import (
	"context"
	"errors"
	"log"
	"time"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// timeNow is swapped out in tests
var timeNow = time.Now

// ReaderService handles the reader registration workflow: users apply with a
// reader request, staff approve (creating the Reader with a library card) or
// reject with a reason.
type ReaderService struct {
	readerRepo  repositories.ReaderRepository
	requestRepo repositories.ReaderRequestRepository
	userRepo    repositories.UserRepository
}

// NewReaderService creates a new reader service
func NewReaderService(
	readerRepo repositories.ReaderRepository,
	requestRepo repositories.ReaderRequestRepository,
	userRepo repositories.UserRepository,
) *ReaderService {
	return &ReaderService{
		readerRepo:  readerRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
	}
}

// ReaderRequestInput represents reader registration input
type ReaderRequestInput struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

// SubmitRequest files a reader registration request. A user may hold at most
// one pending request, and users who are already readers cannot apply again.
func (s *ReaderService) SubmitRequest(ctx context.Context, actor domain.Actor, input *ReaderRequestInput) (*models.ReaderRequest, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.readerRepo.GetByUserID(ctx, actor.UserID); err == nil {
		return nil, domain.ErrAlreadyReader
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pending, err := s.requestRepo.HasPendingByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domain.ErrRequestPending
	}

	request := &models.ReaderRequest{
		UserID:      actor.UserID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Address:     input.Address,
		PhoneNumber: input.PhoneNumber,
		Status:      models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Reader request submitted: #%d by user %d", request.ID, actor.UserID)

	return request, nil
}

// MyRequestStatus returns the caller's latest request, or ErrNotFound if the
// user never applied.
func (s *ReaderService) MyRequestStatus(ctx context.Context, actor domain.Actor) (*models.ReaderRequest, error) {
	request, err := s.requestRepo.LatestByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return request, nil
}

// ApproveRequest promotes the applicant to a reader with a fresh card number.
func (s *ReaderService) ApproveRequest(ctx context.Context, actor domain.Actor, id uint) (*models.Reader, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	request, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, domain.ErrInvalidState
	}

	user, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	reader := &models.Reader{
		UserID:           request.UserID,
		FirstName:        request.FirstName,
		LastName:         request.LastName,
		Address:          request.Address,
		PhoneNumber:      request.PhoneNumber,
		Email:            user.Email,
		CardNumber:       uuid.New().String(),
		RegistrationDate: now,
	}
	if err := s.readerRepo.Create(ctx, reader); err != nil {
		return nil, err
	}

	request.Status = models.RequestStatusApproved
	request.ProcessedBy = &actor.UserID
	request.ProcessedAt = &now
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Reader request approved: #%d, card %s", request.ID, reader.CardNumber)

	return reader, nil
}

// RejectRequest declines the application. A reason is mandatory.
func (s *ReaderService) RejectRequest(ctx context.Context, actor domain.Actor, id uint, reason string) (*models.ReaderRequest, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	request, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, domain.ErrInvalidState
	}

	now := timeNow()
	request.Status = models.RequestStatusRejected
	request.RejectionReason = reason
	request.ProcessedBy = &actor.UserID
	request.ProcessedAt = &now
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Reader request rejected: #%d by %s", request.ID, actor.Username)

	return request, nil
}

// ListRequests lists reader requests for staff, optionally by status.
func (s *ReaderService) ListRequests(ctx context.Context, status string, offset, limit int) ([]*models.ReaderRequest, int64, error) {
	return s.requestRepo.ListByStatus(ctx, status, offset, limit)
}

// GetReader returns a reader by ID.
func (s *ReaderService) GetReader(ctx context.Context, id uint) (*models.Reader, error) {
	reader, err := s.readerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReaderNotFound
		}
		return nil, err
	}
	return reader, nil
}

// GetReaderForUser returns the reader linked to a user account.
func (s *ReaderService) GetReaderForUser(ctx context.Context, userID uint) (*models.Reader, error) {
	reader, err := s.readerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReaderNotFound
		}
		return nil, err
	}
	return reader, nil
}

// ListReaders lists readers for staff.
func (s *ReaderService) ListReaders(ctx context.Context, offset, limit int) ([]*models.Reader, int64, error) {
	return s.readerRepo.List(ctx, offset, limit)
}

func (s *ReaderService) getRequest(ctx context.Context, id uint) (*models.ReaderRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return request, nil
}
