package bodymetrics

import (
	"math"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBMI(t *testing.T) {
	assert.InDelta(t, 22.86, BMI(70, 175), 0.005)
	assert.InDelta(t, 25.0, BMI(100, 200), 1e-9)

	assert.True(t, math.IsInf(BMI(70, 0), 1))
	assert.True(t, math.IsNaN(BMI(0, 0)))
	assert.Less(t, BMI(-70, 175), 0.0)
}

func TestBMR(t *testing.T) {
	assert.InDelta(t, 1673.75, BMR(70, 175, 30), 1e-9)
	assert.InDelta(t, 10*80+6.25*180-5*45+5, BMR(80, 180, 45), 1e-9)
}

func TestMaintenanceCalories(t *testing.T) {
	assert.InDelta(t, 2594.31, MaintenanceCalories(1673.75, ActivityMedium), 0.005)

	cases := map[ActivityLevel]float64{
		ActivityNone:    1.2,
		ActivityLight:   1.375,
		ActivityMedium:  1.55,
		ActivityRegular: 1.725,
		ActivityStudent: 1.9,
	}
	for level, mult := range cases {
		assert.InDelta(t, 1000*mult, MaintenanceCalories(1000, level), 1e-9, string(level))
		assert.True(t, level.Valid())
	}
}

func TestMaintenanceCalories_UnknownLevelFallsBack(t *testing.T) {
	x := 1673.75
	assert.Equal(t, MaintenanceCalories(x, ActivityNone), MaintenanceCalories(x, "unrecognized"))
	assert.Equal(t, MaintenanceCalories(x, ActivityNone), MaintenanceCalories(x, ""))
	assert.False(t, ActivityLevel("unrecognized").Valid())
}

func TestBMI_Monotonic(t *testing.T) {
	faker := gofakeit.New(42)
	for i := 0; i < 200; i++ {
		w := faker.Float64Range(20, 300)
		h := faker.Float64Range(50, 250)
		dw := faker.Float64Range(0.1, 20)
		dh := faker.Float64Range(0.1, 20)

		require.Greater(t, BMI(w+dw, h), BMI(w, h))
		require.Less(t, BMI(w, h+dh), BMI(w, h))
	}
}

func TestFunctions_Idempotent(t *testing.T) {
	assert.Equal(t, BMI(82.5, 181), BMI(82.5, 181))
	assert.Equal(t, BMR(82.5, 181, 27), BMR(82.5, 181, 27))
	assert.Equal(t, MaintenanceCalories(1800, ActivityRegular), MaintenanceCalories(1800, ActivityRegular))

	in := Input{WeightKg: 82.5, HeightCm: 181, AgeYears: 27, Activity: ActivityLight}
	assert.Equal(t, Compute(in), Compute(in))
}

func TestCompute(t *testing.T) {
	m := Compute(Input{WeightKg: 70, HeightCm: 175, AgeYears: 30, Activity: ActivityMedium})

	assert.Equal(t, 22.86, m.BMI)
	assert.Equal(t, 1673.75, m.BMR)
	assert.Equal(t, 2594.31, m.MaintenanceCalories)
}

func TestCompute_MaintenanceUsesRoundedBMR(t *testing.T) {
	in := Input{WeightKg: 63.3, HeightCm: 167.3, AgeYears: 41, Activity: ActivityStudent}
	m := Compute(in)

	assert.Equal(t, Round2(BMR(in.WeightKg, in.HeightCm, in.AgeYears)), m.BMR)
	assert.Equal(t, Round2(m.BMR*1.9), m.MaintenanceCalories)
}

func TestAgeOn(t *testing.T) {
	dob := time.Date(1994, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, AgeOn(dob, time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, AgeOn(dob, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, AgeOn(dob, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, AgeOn(dob, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCategory(t *testing.T) {
	cases := []struct {
		bmi  float64
		want BMICategory
	}{
		{17.2, Underweight},
		{18.5, NormalWeight},
		{24.95, NormalWeight},
		{25, Overweight},
		{29.99, Overweight},
		{30, ObesityLevel1},
		{35, ObesityLevel2},
		{39.9, ObesityLevel2},
		{40, ObesityLevel3},
		{55, ObesityLevel3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Category(tc.bmi), "bmi %v", tc.bmi)
	}
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, -20.0, PercentChange(2500, 2000))
	assert.Equal(t, 12.5, PercentChange(2000, 2250))
}
