package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/yusufkecer/fitcoach-backend/internal/bodymetrics"
)

const DateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// Error is a user-facing form error for a single field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(field, msg string) error {
	return &Error{Field: field, Message: msg}
}

func Name(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fail("name", "Please enter your full name")
	}
	if len(name) < 2 {
		return fail("name", "Name must be at least 2 characters")
	}
	if !namePattern.MatchString(name) {
		return fail("name", "Name should only contain letters")
	}
	return nil
}

func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fail("email", "Please enter your email")
	}
	if !emailPattern.MatchString(email) {
		return fail("email", "Please enter a valid email address")
	}
	return nil
}

func Password(password string) error {
	if password == "" {
		return fail("password", "Please enter a password")
	}
	if len(password) < 6 {
		return fail("password", "Password must be at least 6 characters")
	}
	if !strings.ContainsFunc(password, isASCIILetter) {
		return fail("password", "Password must contain at least one letter")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return fail("password", "Password must contain at least one number")
	}
	return nil
}

func Phone(phone string) error {
	if phone == "" {
		return fail("phone", "Please enter your phone number")
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 10 || digits > 15 {
		return fail("phone", "Please enter a valid phone number")
	}
	return nil
}

func Weight(kg float64) error {
	if kg == 0 {
		return fail("weight", "Please enter your weight")
	}
	if kg < 20 || kg > 300 {
		return fail("weight", "Please enter a valid weight between 20-300 kg")
	}
	return nil
}

func Height(cm float64) error {
	if cm == 0 {
		return fail("height", "Please enter your height")
	}
	if cm < 50 || cm > 250 {
		return fail("height", "Please enter a valid height between 50-250 cm")
	}
	return nil
}

// DateOfBirth parses dob and checks the resulting age is within 13-120 years
// on now.
func DateOfBirth(dob string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(dob) == "" {
		return time.Time{}, fail("dob", "Please select your date of birth")
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(dob))
	if err != nil {
		return time.Time{}, fail("dob", "Please enter a valid date of birth")
	}
	age := bodymetrics.AgeOn(t, now)
	if age < 13 || age > 120 {
		return time.Time{}, fail("dob", "You must be between 13 and 120 years old")
	}
	return t, nil
}

func ExerciseIntensity(level string) error {
	if level == "" {
		return fail("exercise_intensity", "Please select your exercise frequency")
	}
	if !bodymetrics.ActivityLevel(level).Valid() {
		return fail("exercise_intensity", "Please select a valid exercise frequency")
	}
	return nil
}

func Budget(budget float64) error {
	if budget < 0 {
		return fail("budget", "Please enter a valid budget amount")
	}
	return nil
}

func Diet(diet string) error {
	if len(strings.TrimSpace(diet)) < 3 {
		return fail("diet", "Please describe your diet preferences")
	}
	return nil
}

func ExplainGoal(text string) error {
	if len(strings.TrimSpace(text)) < 10 {
		return fail("explain_goal", "Please explain your goal in at least 10 characters")
	}
	return nil
}

func Required(field, value, msg string) error {
	if strings.TrimSpace(value) == "" {
		return fail(field, msg)
	}
	return nil
}

// First returns the first non-nil error, in argument order.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
