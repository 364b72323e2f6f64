package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/repository"
	"github.com/yusufkecer/fitcoach-backend/internal/validation"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newProfileService(stores *repository.MockStores) *ProfileService {
	return NewProfileService(stores.Profiles, stores.History).
		WithClock(clock(fixedNow)).
		WithBcryptCost(bcrypt.MinCost)
}

func registerRequest() *domain.RegisterRequest {
	return &domain.RegisterRequest{
		Name:              "Jane Doe",
		Email:             " Jane@Example.com ",
		Password:          "secret1",
		Phone:             "5551234567",
		DOB:               "1995-03-11",
		Gender:            "female",
		Diet:              "vegetarian",
		Weight:            70,
		Height:            175,
		ExerciseIntensity: "medium",
		BodyType:          "mesomorph",
		Goal:              "lose fat",
		Budget:            100,
		ExplainGoal:       "drop five kilos before summer",
	}
}

func TestProfileService_Register(t *testing.T) {
	stores := repository.NewMockStores()
	svc := newProfileService(stores)
	ctx := context.Background()

	account, profile, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NotEmpty(t, account.UID)
	assert.Equal(t, "jane@example.com", account.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("secret1")))

	// age 29 on fixedNow
	assert.Equal(t, 22.86, profile.CurrentData.BMI)
	assert.Equal(t, 1653.75, profile.CurrentData.BMR)
	assert.Equal(t, 2563.31, profile.CurrentData.MaintenanceCalories)

	stored, err := svc.Get(ctx, account.UID)
	require.NoError(t, err)
	assert.Equal(t, profile.CurrentData.BMI, stored.CurrentData.BMI)

	history, err := svc.History(ctx, account.UID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 70.0, history[0].Weight)
	assert.Equal(t, 22.86, history[0].BMI)
	assert.Equal(t, fixedNow, history[0].Timestamp)
}

func TestProfileService_Register_Invalid(t *testing.T) {
	svc := newProfileService(repository.NewMockStores())

	req := registerRequest()
	req.Height = 20
	_, _, err := svc.Register(context.Background(), req)

	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "height", vErr.Field)
}

func TestProfileService_Register_DuplicateEmail(t *testing.T) {
	svc := newProfileService(repository.NewMockStores())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerRequest())
	assert.True(t, IsEmailTaken(err))
}

func TestProfileService_Update_RecomputesAllMetrics(t *testing.T) {
	stores := repository.NewMockStores()
	svc := newProfileService(stores)
	ctx := context.Background()

	account, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, svc.SetRequiredIntake(ctx, account.UID, 2100))
	require.NoError(t, svc.SetIdealBMR(ctx, account.UID, 1600))

	weight := 80.0
	level := "regular"
	updated, err := svc.Update(ctx, account.UID, &domain.UpdateProfileRequest{
		Weight:            &weight,
		ExerciseIntensity: &level,
	})
	require.NoError(t, err)

	cd := updated.CurrentData
	assert.Equal(t, 80.0, cd.Weight)
	assert.Equal(t, 26.12, cd.BMI)
	assert.Equal(t, 1753.75, cd.BMR)
	assert.Equal(t, 3025.22, cd.MaintenanceCalories)
	require.NotNil(t, cd.IdealBMI)
	assert.Equal(t, 24.9, *cd.IdealBMI)
	assert.Nil(t, cd.ReqCalIntake)
	assert.Nil(t, cd.IdealBMR)

	history, err := svc.History(ctx, account.UID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 26.12, history[1].BMI)
	assert.Equal(t, "regular", history[1].ExerciseIntensity)

	weights, err := svc.WeightSeries(ctx, account.UID)
	require.NoError(t, err)
	require.Len(t, weights, 2)
	assert.Equal(t, 70.0, weights[0].Weight)
	assert.Equal(t, 80.0, weights[1].Weight)

	bmis, err := svc.BMISeries(ctx, account.UID)
	require.NoError(t, err)
	assert.Equal(t, []float64{22.86, 26.12}, []float64{bmis[0].BMI, bmis[1].BMI})
}

func TestProfileService_Update_KeepsCoachValuesWhenMetricsUnchanged(t *testing.T) {
	stores := repository.NewMockStores()
	svc := newProfileService(stores)
	ctx := context.Background()

	account, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, svc.SetRequiredIntake(ctx, account.UID, 2100))
	require.NoError(t, svc.SetIdealBMI(ctx, account.UID, 23))

	name := "Jane Roe"
	updated, err := svc.Update(ctx, account.UID, &domain.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Jane Roe", updated.Name)
	require.NotNil(t, updated.CurrentData.ReqCalIntake)
	assert.Equal(t, 2100.0, *updated.CurrentData.ReqCalIntake)
	require.NotNil(t, updated.CurrentData.IdealBMI)
	assert.Equal(t, 23.0, *updated.CurrentData.IdealBMI)
}

func TestProfileService_Update_NotFound(t *testing.T) {
	svc := newProfileService(repository.NewMockStores())
	_, err := svc.Update(context.Background(), "missing", &domain.UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileService_History_Empty(t *testing.T) {
	svc := newProfileService(repository.NewMockStores())
	history, err := svc.History(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
