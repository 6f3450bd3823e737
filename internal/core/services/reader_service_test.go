package services

import (
	"context"
	"testing"

	"libraria/internal/adapters/persistence/models"
	"libraria/internal/adapters/persistence/stubs"
	"libraria/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readerEnv struct {
	svc      *ReaderService
	readers  *stubs.ReaderStore
	requests *stubs.RequestStore
	users    *stubs.UserStore
}

func newReaderEnv(t *testing.T) *readerEnv {
	t.Helper()

	readers := stubs.NewReaderStore()
	requests := stubs.NewRequestStore()
	users := stubs.NewUserStore()

	return &readerEnv{
		svc:      NewReaderService(readers, requests, users),
		readers:  readers,
		requests: requests,
		users:    users,
	}
}

func (e *readerEnv) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Role: "user", IsActive: true}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func validRequestInput() *ReaderRequestInput {
	return &ReaderRequestInput{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Address:     "12 Analytical St",
		PhoneNumber: "555-0101",
	}
}

func TestSubmitRequest(t *testing.T) {
	env := newReaderEnv(t)
	user := env.addUser(t, "ada")
	actor := memberActor(user.ID)

	request, err := env.svc.SubmitRequest(context.Background(), actor, validRequestInput())
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, user.ID, request.UserID)
}

func TestSubmitRequestRequiresName(t *testing.T) {
	env := newReaderEnv(t)
	user := env.addUser(t, "ada")

	_, err := env.svc.SubmitRequest(context.Background(), memberActor(user.ID), &ReaderRequestInput{FirstName: "Ada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitRequestOnePendingPerUser(t *testing.T) {
	env := newReaderEnv(t)
	user := env.addUser(t, "ada")
	actor := memberActor(user.ID)
	ctx := context.Background()

	_, err := env.svc.SubmitRequest(ctx, actor, validRequestInput())
	require.NoError(t, err)

	_, err = env.svc.SubmitRequest(ctx, actor, validRequestInput())
	assert.ErrorIs(t, err, domain.ErrRequestPending)
}

func TestSubmitRequestAlreadyReader(t *testing.T) {
	env := newReaderEnv(t)
	user := env.addUser(t, "ada")
	require.NoError(t, env.readers.Create(context.Background(), &models.Reader{UserID: user.ID}))

	_, err := env.svc.SubmitRequest(context.Background(), memberActor(user.ID), validRequestInput())
	assert.ErrorIs(t, err, domain.ErrAlreadyReader)
}

func TestApproveRequest(t *testing.T) {
	env := newReaderEnv(t)
	user := env.addUser(t, "ada")
	ctx := context.Background()

	request, err := env.svc.SubmitRequest(ctx, memberActor(user.ID), validRequestInput())
	require.NoError(t, err)

	// Regular users cannot approve
	_, err = env.svc.ApproveRequest(ctx, memberActor(user.ID), request.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	reader, err := env.svc.ApproveRequest(ctx, staff, request.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, reader.UserID)
	assert.Equal(t, "Ada", reader.FirstName)
	assert.Equal(t, user.Email, reader.Email)
	assert.NotEmpty(t, reader.CardNumber)
	assert.False(t, reader.RegistrationDate.IsZero())

	// The request is marked processed
	stored, err := env.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, stored.Status)

	// Approving twice is a state error
	_, err = env.svc.ApproveRequest(ctx, staff, request.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestApproveRequestCardNumbersAreUnique(t *testing.T) {
	env := newReaderEnv(t)
	ctx := context.Background()

	first := env.addUser(t, "ada")
	second := env.addUser(t, "grace")

	reqA, err := env.svc.SubmitRequest(ctx, memberActor(first.ID), validRequestInput())
	require.NoError(t, err)
	reqB, err := env.svc.SubmitRequest(ctx, memberActor(second.ID), validRequestInput())
	require.NoError(t, err)

	readerA, err := env.svc.ApproveRequest(ctx, staff, reqA.ID)
	require.NoError(t, err)
	readerB, err := env.svc.ApproveRequest(ctx, staff, reqB.ID)
	require.NoError(t, err)

	assert.NotEqual(t, readerA.CardNumber, readerB.CardNumber)
}

func TestRejectRequest(t *testing.T) {
	env := newReaderEnv(t)
	user := env.addUser(t, "ada")
	ctx := context.Background()

	request, err := env.svc.SubmitRequest(ctx, memberActor(user.ID), validRequestInput())
	require.NoError(t, err)

	_, err = env.svc.RejectRequest(ctx, staff, request.ID, "")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	rejected, err := env.svc.RejectRequest(ctx, staff, request.ID, "incomplete address")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)
	assert.Equal(t, "incomplete address", rejected.RejectionReason)

	// A rejected user may apply again
	_, err = env.svc.SubmitRequest(ctx, memberActor(user.ID), validRequestInput())
	assert.NoError(t, err)
}

func TestMyRequestStatus(t *testing.T) {
	env := newReaderEnv(t)
	user := env.addUser(t, "ada")
	ctx := context.Background()
	actor := memberActor(user.ID)

	_, err := env.svc.MyRequestStatus(ctx, actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	submitted, err := env.svc.SubmitRequest(ctx, actor, validRequestInput())
	require.NoError(t, err)

	latest, err := env.svc.MyRequestStatus(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, latest.ID)
}

func TestGetReaderForUser(t *testing.T) {
	env := newReaderEnv(t)
	ctx := context.Background()

	_, err := env.svc.GetReaderForUser(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrReaderNotFound)

	require.NoError(t, env.readers.Create(ctx, &models.Reader{UserID: 42}))

	reader, err := env.svc.GetReaderForUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), reader.UserID)
}
