package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/yusufkecer/fitcoach-backend/internal/bodymetrics"
	"github.com/yusufkecer/fitcoach-backend/internal/domain"
	"github.com/yusufkecer/fitcoach-backend/internal/validation"
)

type ProfileService struct {
	profiles   ProfileStore
	history    HistoryStore
	now        func() time.Time
	bcryptCost int
}

func NewProfileService(profiles ProfileStore, history HistoryStore) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		history:    history,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithClock replaces the time source; used by tests.
func (s *ProfileService) WithClock(now func() time.Time) *ProfileService {
	s.now = now
	return s
}

func (s *ProfileService) WithBcryptCost(cost int) *ProfileService {
	s.bcryptCost = cost
	return s
}

// Register creates the account and its profile. BMI, BMR and maintenance
// calories are computed from the submitted measurements and stored with the
// first history record.
func (s *ProfileService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Account, *domain.Profile, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	now := s.now().UTC()
	dob, err := validation.Registration(req, now)
	if err != nil {
		return nil, nil, err
	}

	metrics := bodymetrics.Compute(bodymetrics.Input{
		WeightKg: req.Weight,
		HeightCm: req.Height,
		AgeYears: bodymetrics.AgeOn(dob, now),
		Activity: bodymetrics.ActivityLevel(req.ExerciseIntensity),
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		UID:          uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	profile := &domain.Profile{
		UID:    account.UID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		DOB:    dob.Format(validation.DateLayout),
		Gender: req.Gender,
		Diet:   strings.TrimSpace(req.Diet),
		CurrentData: domain.CurrentData{
			Weight:              req.Weight,
			Height:              req.Height,
			ExerciseIntensity:   req.ExerciseIntensity,
			BodyType:            req.BodyType,
			Goal:                req.Goal,
			Budget:              req.Budget,
			BMI:                 metrics.BMI,
			BMR:                 metrics.BMR,
			MaintenanceCalories: metrics.MaintenanceCalories,
			AnyComplication:     req.AnyComplication,
			ExplainGoal:         strings.TrimSpace(req.ExplainGoal),
			UpdatedAt:           now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	rec := domain.NewHistoryRecord(profile.UID, profile.CurrentData, now)
	if err := s.profiles.Register(ctx, account, profile, rec); err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"uid": account.UID,
		"bmi": metrics.BMI,
		"bmr": metrics.BMR,
	}).Info("account registered")
	return account, profile, nil
}

func (s *ProfileService) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	p, err := s.profiles.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Update applies the changed fields and recomputes every derived metric from
// the merged measurements. Coach values that depend on the old metrics are
// cleared so they get fetched again.
func (s *ProfileService) Update(ctx context.Context, uid string, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	if err := validation.ProfileUpdate(req); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dob, err := time.Parse(validation.DateLayout, p.DOB)
	if err != nil {
		return nil, fmt.Errorf("stored dob %q for %s: %w", p.DOB, uid, err)
	}

	cd := &p.CurrentData
	before := bodymetrics.UserMetrics{
		BMI:                 cd.BMI,
		BMR:                 cd.BMR,
		MaintenanceCalories: cd.MaintenanceCalories,
	}

	setString(&p.Name, req.Name)
	setString(&p.Phone, req.Phone)
	setString(&p.Diet, req.Diet)
	setFloat(&cd.Weight, req.Weight)
	setFloat(&cd.Height, req.Height)
	setString(&cd.ExerciseIntensity, req.ExerciseIntensity)
	setString(&cd.BodyType, req.BodyType)
	setString(&cd.Goal, req.Goal)
	setFloat(&cd.Budget, req.Budget)
	setString(&cd.AnyComplication, req.AnyComplication)
	setString(&cd.ExplainGoal, req.ExplainGoal)

	metrics := bodymetrics.Compute(bodymetrics.Input{
		WeightKg: cd.Weight,
		HeightCm: cd.Height,
		AgeYears: bodymetrics.AgeOn(dob, now),
		Activity: bodymetrics.ActivityLevel(cd.ExerciseIntensity),
	})
	cd.BMI = metrics.BMI
	cd.BMR = metrics.BMR
	cd.MaintenanceCalories = metrics.MaintenanceCalories

	if metrics != before {
		cd.IdealBMR = nil
		cd.ReqCalIntake = nil
	}
	if cd.IdealBMI == nil {
		ideal := bodymetrics.IdealBMI
		cd.IdealBMI = &ideal
	}
	cd.UpdatedAt = now
	p.UpdatedAt = now

	if err := s.profiles.Update(ctx, p, domain.NewHistoryRecord(uid, *cd, now)); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) History(ctx context.Context, uid string) ([]domain.HistoryRecord, error) {
	records, err := s.history.ListByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}

func (s *ProfileService) WeightSeries(ctx context.Context, uid string) ([]domain.WeightPoint, error) {
	records, err := s.History(ctx, uid)
	if err != nil {
		return nil, err
	}
	points := make([]domain.WeightPoint, 0, len(records))
	for _, r := range records {
		points = append(points, domain.WeightPoint{Date: r.Timestamp, Weight: r.Weight})
	}
	return points, nil
}

func (s *ProfileService) BMISeries(ctx context.Context, uid string) ([]domain.BMIPoint, error) {
	records, err := s.History(ctx, uid)
	if err != nil {
		return nil, err
	}
	points := make([]domain.BMIPoint, 0, len(records))
	for _, r := range records {
		points = append(points, domain.BMIPoint{Date: r.Timestamp, BMI: r.BMI})
	}
	return points, nil
}

func (s *ProfileService) SetIdealBMI(ctx context.Context, uid string, v float64) error {
	return s.setCoachValue(ctx, uid, "ideal_bmi", v)
}

func (s *ProfileService) SetIdealBMR(ctx context.Context, uid string, v float64) error {
	return s.setCoachValue(ctx, uid, "ideal_bmr", v)
}

func (s *ProfileService) SetRequiredIntake(ctx context.Context, uid string, v float64) error {
	return s.setCoachValue(ctx, uid, "req_cal_intake", v)
}

func (s *ProfileService) setCoachValue(ctx context.Context, uid, column string, v float64) error {
	if err := s.profiles.SetCoachValue(ctx, uid, column, v); err != nil {
		return err
	}
	log.Debugf("stored %s=%.2f for %s", column, v, uid)
	return nil
}

// IsEmailTaken reports whether err means the email is registered already.
func IsEmailTaken(err error) bool {
	return errors.Is(err, ErrEmailExists)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
