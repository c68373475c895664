package release

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/internal/causes"
	"givetrace/donor-portal/donor-portal-backend/internal/donations"
	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
	"givetrace/donor-portal/donor-portal-backend/internal/tasks"
	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
)

type mockDonationRepo struct{ mock.Mock }

func (m *mockDonationRepo) Create(ctx context.Context, d *donations.Donation) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDonationRepo) GetByID(ctx context.Context, id uuid.UUID) (*donations.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*donations.Donation), args.Error(1)
}

func (m *mockDonationRepo) ListByCause(ctx context.Context, causeID uuid.UUID) ([]donations.Donation, error) {
	args := m.Called(ctx, causeID)
	return args.Get(0).([]donations.Donation), args.Error(1)
}

func (m *mockDonationRepo) Update(ctx context.Context, d *donations.Donation) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDonationRepo) ClaimRelease(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockDonationRepo) ClearReleaseClaim(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDonationRepo) MarkReleased(ctx context.Context, id uuid.UUID, txHash string, completedAt time.Time) error {
	return m.Called(ctx, id, txHash, completedAt).Error(0)
}

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) Create(ctx context.Context, t *tasks.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*tasks.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tasks.Task), args.Error(1)
}

func (m *mockTaskRepo) ListByCause(ctx context.Context, causeID uuid.UUID) ([]tasks.Task, error) {
	args := m.Called(ctx, causeID)
	return args.Get(0).([]tasks.Task), args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *tasks.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) ClaimRelease(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockTaskRepo) ClearReleaseClaim(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskRepo) MarkReleased(ctx context.Context, id uuid.UUID, txHash string, completedAt time.Time) error {
	return m.Called(ctx, id, txHash, completedAt).Error(0)
}

type mockCauseRepo struct{ mock.Mock }

func (m *mockCauseRepo) Create(ctx context.Context, c *causes.Cause) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCauseRepo) GetByID(ctx context.Context, id uuid.UUID) (*causes.Cause, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*causes.Cause), args.Error(1)
}

func (m *mockCauseRepo) List(ctx context.Context) ([]causes.Cause, error) {
	args := m.Called(ctx)
	return args.Get(0).([]causes.Cause), args.Error(1)
}

func (m *mockCauseRepo) Update(ctx context.Context, c *causes.Cause) error {
	return m.Called(ctx, c).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) SubmitTransfer(ctx context.Context, destination string, amount decimal.Decimal, memo string) (string, error) {
	args := m.Called(ctx, destination, amount, memo)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) GetTransferHistory(ctx context.Context, account string) ([]ledger.TransferEvent, error) {
	args := m.Called(ctx, account)
	return args.Get(0).([]ledger.TransferEvent), args.Error(1)
}

func (m *mockGateway) GetTransferOutcome(ctx context.Context, hash string) (*ledger.TransferOutcome, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransferOutcome), args.Error(1)
}

var adminActor = auth.Actor{UserID: uuid.New(), Role: auth.RoleAdmin}

func newAuthority(dr *mockDonationRepo, tr *mockTaskRepo, cr *mockCauseRepo, gw *mockGateway) *Authority {
	return NewAuthority(dr, tr, cr, gw, nil, nil)
}

func verifiedCause() *causes.Cause {
	return &causes.Cause{ID: uuid.New(), Name: "Well Building", WalletAddress: "GDESTWALLETADDRESS"}
}

func TestReleaseTaskHappyPath(t *testing.T) {
	dr, tr, cr, gw := new(mockDonationRepo), new(mockTaskRepo), new(mockCauseRepo), new(mockGateway)
	authority := newAuthority(dr, tr, cr, gw)

	ctx := context.Background()
	cause := verifiedCause()
	task := &tasks.Task{
		ID:             uuid.New(),
		CauseID:        cause.ID,
		Status:         tasks.StatusVerified,
		AmountReceived: decimal.NewFromInt(500),
		Currency:       "XLM",
	}

	tr.On("GetByID", ctx, task.ID).Return(task, nil)
	cr.On("GetByID", ctx, cause.ID).Return(cause, nil)
	tr.On("ClaimRelease", ctx, task.ID).Return(true, nil)
	gw.On("SubmitTransfer", ctx, cause.WalletAddress, task.AmountReceived, "milestone").Return("abc123hash", nil)
	tr.On("MarkReleased", ctx, task.ID, "abc123hash", mock.AnythingOfType("time.Time")).Return(nil)

	result, err := authority.Release(ctx, RecordTypeTask, task.ID, adminActor)

	require.NoError(t, err)
	assert.Equal(t, "abc123hash", result.TransferHash)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(500)))
	tr.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestReleaseRequiresAdmin(t *testing.T) {
	authority := newAuthority(new(mockDonationRepo), new(mockTaskRepo), new(mockCauseRepo), new(mockGateway))

	_, err := authority.Release(context.Background(), RecordTypeTask, uuid.New(),
		auth.Actor{UserID: uuid.New(), Role: auth.RoleOrgRep})

	var authErr *apperrors.AuthorizationError
	require.True(t, errors.As(err, &authErr))
}

func TestReleaseRejectsUnverifiedRecord(t *testing.T) {
	dr, tr, cr, gw := new(mockDonationRepo), new(mockTaskRepo), new(mockCauseRepo), new(mockGateway)
	authority := newAuthority(dr, tr, cr, gw)

	ctx := context.Background()
	task := &tasks.Task{ID: uuid.New(), CauseID: uuid.New(), Status: tasks.StatusInProgress}
	tr.On("GetByID", ctx, task.ID).Return(task, nil)

	_, err := authority.Release(ctx, RecordTypeTask, task.ID, adminActor)

	var conflictErr *apperrors.StateConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, tasks.StatusInProgress, conflictErr.Current)
	gw.AssertNotCalled(t, "SubmitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReleaseMissingWalletFailsBeforeGateway(t *testing.T) {
	dr, tr, cr, gw := new(mockDonationRepo), new(mockTaskRepo), new(mockCauseRepo), new(mockGateway)
	authority := newAuthority(dr, tr, cr, gw)

	ctx := context.Background()
	cause := &causes.Cause{ID: uuid.New(), Name: "No Wallet Yet"}
	task := &tasks.Task{ID: uuid.New(), CauseID: cause.ID, Status: tasks.StatusVerified, AmountReceived: decimal.NewFromInt(10)}

	tr.On("GetByID", ctx, task.ID).Return(task, nil)
	cr.On("GetByID", ctx, cause.ID).Return(cause, nil)

	_, err := authority.Release(ctx, RecordTypeTask, task.ID, adminActor)

	var validationErr *apperrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "destination_wallet", validationErr.Requirement)
	gw.AssertNotCalled(t, "SubmitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	tr.AssertNotCalled(t, "ClaimRelease", mock.Anything, mock.Anything)
}

func TestReleaseGatewayFailureLeavesRecordVerified(t *testing.T) {
	dr, tr, cr, gw := new(mockDonationRepo), new(mockTaskRepo), new(mockCauseRepo), new(mockGateway)
	authority := newAuthority(dr, tr, cr, gw)

	ctx := context.Background()
	cause := verifiedCause()
	task := &tasks.Task{ID: uuid.New(), CauseID: cause.ID, Status: tasks.StatusVerified, AmountReceived: decimal.NewFromInt(75)}

	tr.On("GetByID", ctx, task.ID).Return(task, nil)
	cr.On("GetByID", ctx, cause.ID).Return(cause, nil)
	tr.On("ClaimRelease", ctx, task.ID).Return(true, nil)
	gw.On("SubmitTransfer", ctx, cause.WalletAddress, task.AmountReceived, "milestone").
		Return("", errors.New("horizon timeout"))
	tr.On("ClearReleaseClaim", ctx, task.ID).Return(nil)

	_, err := authority.Release(ctx, RecordTypeTask, task.ID, adminActor)

	var gatewayErr *apperrors.GatewayError
	require.True(t, errors.As(err, &gatewayErr))
	tr.AssertCalled(t, "ClearReleaseClaim", ctx, task.ID)
	tr.AssertNotCalled(t, "MarkReleased", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConcurrentDonationReleaseExactlyOneSucceeds(t *testing.T) {
	dr, tr, cr, gw := new(mockDonationRepo), new(mockTaskRepo), new(mockCauseRepo), new(mockGateway)
	authority := newAuthority(dr, tr, cr, gw)

	ctx := context.Background()
	cause := verifiedCause()
	donation := &donations.Donation{
		ID:       uuid.New(),
		CauseID:  cause.ID,
		Status:   donations.StatusVerified,
		Amount:   decimal.NewFromInt(200),
		Currency: "XLM",
	}

	dr.On("GetByID", ctx, donation.ID).Return(donation, nil)
	cr.On("GetByID", ctx, cause.ID).Return(cause, nil)
	// the compare-and-swap admits exactly one claimant
	dr.On("ClaimRelease", ctx, donation.ID).Return(true, nil).Once()
	dr.On("ClaimRelease", ctx, donation.ID).Return(false, nil)
	gw.On("SubmitTransfer", ctx, cause.WalletAddress, donation.Amount, "release").Return("deadbeef", nil)
	dr.On("MarkReleased", ctx, donation.ID, "deadbeef", mock.AnythingOfType("time.Time")).Return(nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = authority.Release(ctx, RecordTypeDonation, donation.ID, adminActor)
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var conflictErr *apperrors.StateConflictError
		if errors.As(err, &conflictErr) {
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	gw.AssertNumberOfCalls(t, "SubmitTransfer", 1)
}

func TestSecondReleaseAfterCompletionConflicts(t *testing.T) {
	dr, tr, cr, gw := new(mockDonationRepo), new(mockTaskRepo), new(mockCauseRepo), new(mockGateway)
	authority := newAuthority(dr, tr, cr, gw)

	ctx := context.Background()
	hash := "deadbeef"
	task := &tasks.Task{
		ID:             uuid.New(),
		CauseID:        uuid.New(),
		Status:         tasks.StatusCompleted,
		FundsReleased:  true,
		ReleasedTxHash: &hash,
	}
	tr.On("GetByID", ctx, task.ID).Return(task, nil)

	_, err := authority.Release(ctx, RecordTypeTask, task.ID, adminActor)

	var conflictErr *apperrors.StateConflictError
	require.True(t, errors.As(err, &conflictErr))
	gw.AssertNotCalled(t, "SubmitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
