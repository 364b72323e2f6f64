package validation

import (
	"time"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

// Registration checks a sign-up form in the order the form presents it and
// returns the parsed date of birth.
func Registration(req *domain.RegisterRequest, now time.Time) (time.Time, error) {
	if err := First(
		Name(req.Name),
		Email(req.Email),
		Password(req.Password),
		Phone(req.Phone),
		Weight(req.Weight),
		Height(req.Height),
	); err != nil {
		return time.Time{}, err
	}

	dob, err := DateOfBirth(req.DOB, now)
	if err != nil {
		return time.Time{}, err
	}

	err = First(
		Required("gender", req.Gender, "Please select your gender"),
		Required("body_type", req.BodyType, "Please select your body type"),
		ExerciseIntensity(req.ExerciseIntensity),
		Budget(req.Budget),
		Diet(req.Diet),
		Required("goal", req.Goal, "Please select your fitness goal"),
		ExplainGoal(req.ExplainGoal),
	)
	return dob, err
}

func ProfileUpdate(req *domain.UpdateProfileRequest) error {
	var errs []error
	if req.Name != nil {
		errs = append(errs, Name(*req.Name))
	}
	if req.Phone != nil {
		errs = append(errs, Phone(*req.Phone))
	}
	if req.Diet != nil {
		errs = append(errs, Diet(*req.Diet))
	}
	if req.Weight != nil {
		errs = append(errs, Weight(*req.Weight))
	}
	if req.Height != nil {
		errs = append(errs, Height(*req.Height))
	}
	if req.ExerciseIntensity != nil {
		errs = append(errs, ExerciseIntensity(*req.ExerciseIntensity))
	}
	if req.BodyType != nil {
		errs = append(errs, Required("body_type", *req.BodyType, "Please select your body type"))
	}
	if req.Goal != nil {
		errs = append(errs, Required("goal", *req.Goal, "Please select your fitness goal"))
	}
	if req.Budget != nil {
		errs = append(errs, Budget(*req.Budget))
	}
	if req.ExplainGoal != nil {
		errs = append(errs, ExplainGoal(*req.ExplainGoal))
	}
	return First(errs...)
}
