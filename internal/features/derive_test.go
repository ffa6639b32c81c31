package features_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dishpatch/dishpatch/internal/features"
)

// validInput returns a RawOrderInput that passes validation. Tests mutate the
// fields they care about.
func validInput() features.RawOrderInput {
	return features.RawOrderInput{
		DeliveryPersonAge:     30,
		DeliveryPersonRatings: 4.5,
		VehicleCondition:      1,
		WeatherConditions:     "Sunny",
		Festival:              "No",
		DistanceKm:            5.0,
		MultipleDeliveries:    0,
		OrderDayOfWeek:        2,
		RoadTrafficDensity:    "High",
		OrderMonth:            "3",
		TypeOfOrder:           "Snack",
		TypeOfVehicle:         "motorcycle",
		City:                  "Metropolitian",
		RestaurantZone:        "1",
		CustomerZone:          "3",
	}
}

// at returns a timestamp with the given hour on a fixed date.
func at(hour int) time.Time {
	return time.Date(2025, time.March, 12, hour, 30, 0, 0, time.UTC)
}

func TestDerive_TrafficOrdinal(t *testing.T) {
	cases := []struct {
		density string
		want    int
	}{
		{"low", 1},
		{"Low", 1},
		{"medium", 2},
		{"MEDIUM", 2},
		{"high", 3},
		{"High", 3},
		{"jam", 4},
		{"Jam", 4},
	}

	for _, tc := range cases {
		in := validInput()
		in.RoadTrafficDensity = tc.density

		rec, err := features.Derive(in, at(12), nil)
		require.NoError(t, err, "density %q", tc.density)
		assert.Equal(t, tc.want, rec.TrafficOrdinal, "density %q", tc.density)
		// Pass-through keeps the caller's casing.
		assert.Equal(t, tc.density, rec.RoadTrafficDensity)
	}
}

func TestDerive_UnknownTrafficDensityFails(t *testing.T) {
	for _, density := range []string{"gridlock", "", "lo w", "none"} {
		in := validInput()
		in.RoadTrafficDensity = density

		rec, err := features.Derive(in, at(12), nil)
		require.Error(t, err, "density %q", density)
		assert.ErrorIs(t, err, features.ErrUnknownTrafficDensity)
		assert.Nil(t, rec)
	}
}

func TestDistanceBin_Boundaries(t *testing.T) {
	cases := []struct {
		distance float64
		want     int
	}{
		{0, 0},
		{1.99, 0},
		{2.0, 1},
		{4.99, 1},
		{5.0, 2},
		{9.99, 2},
		{10.0, 3},
		{19.99, 3},
		{20.0, 4},
		{100, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, features.DistanceBin(tc.distance), "distance %g", tc.distance)
	}
}

func TestPartOfDay_TotalOverAllHours(t *testing.T) {
	want := map[int]string{
		4:  features.PartOfDayNight,
		5:  features.PartOfDayMorning,
		10: features.PartOfDayMorning,
		11: features.PartOfDayLunch,
		14: features.PartOfDayLunch,
		15: features.PartOfDayAfternoon,
		17: features.PartOfDayAfternoon,
		18: features.PartOfDayEvening,
		21: features.PartOfDayEvening,
		22: features.PartOfDayNight,
	}
	for hour, label := range want {
		assert.Equal(t, label, features.PartOfDay(hour), "hour %d", hour)
	}

	// Every hour must get exactly one of the five labels.
	seen := map[string]bool{}
	for hour := 0; hour < 24; hour++ {
		label := features.PartOfDay(hour)
		assert.NotEmpty(t, label, "hour %d", hour)
		seen[label] = true
	}
	assert.Len(t, seen, 5)
}

func TestDerive_PeakAndRushWindowsDiffer(t *testing.T) {
	cases := []struct {
		hour     int
		peak     int
		rush     int
	}{
		{12, 1, 1},
		{14, 0, 1}, // peak closes at 14, rush runs to 15
		{15, 0, 0},
		{16, 0, 0},
		{17, 1, 0},
		{19, 1, 1},
		{21, 0, 1}, // peak closes at 21, rush runs to 22
		{22, 0, 0},
	}
	for _, tc := range cases {
		rec, err := features.Derive(validInput(), at(tc.hour), nil)
		require.NoError(t, err)
		assert.Equal(t, tc.peak, rec.PeakHours, "peak at hour %d", tc.hour)
		assert.Equal(t, tc.rush, rec.RushHour, "rush at hour %d", tc.hour)
		assert.Equal(t, rec.PeakHours, rec.PeakTraffic, "peak_traffic aliases peak_hours")
	}
}

func TestDerive_IsWeekendFromOrderDay(t *testing.T) {
	for day, want := range map[int]int{0: 0, 4: 0, 5: 1, 6: 1} {
		in := validInput()
		in.OrderDayOfWeek = day

		rec, err := features.Derive(in, at(12), nil)
		require.NoError(t, err)
		assert.Equal(t, want, rec.IsWeekend, "day %d", day)
	}
}

func TestAgeGroup(t *testing.T) {
	bins := []string{"18-25", "26-35", "36-45"}

	assert.Equal(t, "26-35", features.AgeGroup(30, bins))
	assert.Equal(t, "18-25", features.AgeGroup(18, bins))
	assert.Equal(t, "36-45", features.AgeGroup(45, bins))
	assert.Equal(t, features.AgeGroupUnknown, features.AgeGroup(99, bins))
	assert.Equal(t, features.AgeGroupUnknown, features.AgeGroup(30, nil))

	// Malformed labels are skipped without error.
	assert.Equal(t, "26-35", features.AgeGroup(30, []string{"abc", "26-35"}))
	assert.Equal(t, features.AgeGroupUnknown, features.AgeGroup(30, []string{"abc", "x-y", "10"}))
}

func TestDerive_InteractionFeatures(t *testing.T) {
	in := validInput()
	in.DeliveryPersonRatings = 4.5
	in.VehicleCondition = 2

	rec, err := features.Derive(in, at(12), []string{"18-25", "26-35"})
	require.NoError(t, err)

	assert.InDelta(t, 0.9, rec.DriverScore, 1e-9) // 4.5 * 0.2
	assert.InDelta(t, 9.0, rec.RatingVehicle, 1e-9)
	assert.InDelta(t, 60.0, rec.DistOrderHour, 1e-9) // 5km * hour 12
}

func TestDerive_EndToEnd(t *testing.T) {
	in := validInput()
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)

	rec, err := features.Derive(in, now, []string{"18-25", "26-35", "36-45"})
	require.NoError(t, err)
	require.NoError(t, rec.Validate())

	assert.Equal(t, 3, rec.TrafficOrdinal)
	assert.Equal(t, 2, rec.DistanceBin)
	assert.Equal(t, features.PartOfDayLunch, rec.PartOfDay)
	assert.Equal(t, 1, rec.PeakHours)
	assert.Equal(t, 0, rec.IsWeekend)
	assert.InDelta(t, 5.0, rec.DistanceTraffic, 1e-9)
	assert.InDelta(t, 4.5, rec.RatingVehicle, 1e-9)
	assert.InDelta(t, 0.45, rec.DriverScore, 1e-9)
	assert.InDelta(t, 60.0, rec.DistOrderHour, 1e-9)
	assert.Equal(t, "26-35", rec.AgeBins)

	// Temporal decomposition from the injected clock.
	assert.Equal(t, 12, rec.HourOfOrder)
	assert.Equal(t, 4, rec.DayOfMonth)
	_, wantWeek := now.ISOWeek()
	assert.Equal(t, wantWeek, rec.WeekOfYear)
}

func TestDerive_WeekendPeakInteractions(t *testing.T) {
	in := validInput()
	in.OrderDayOfWeek = 6
	in.MultipleDeliveries = 1

	// Peak hour on a weekend order day.
	rec, err := features.Derive(in, at(12), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.DelayWeekend)
	assert.Equal(t, 1, rec.MultiPeak)

	// Off-peak zeros both interactions.
	rec, err = features.Derive(in, at(9), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.DelayWeekend)
	assert.Equal(t, 0, rec.MultiPeak)
	assert.InDelta(t, 0.0, rec.DistanceTraffic, 1e-9)
}

func TestRawOrderInput_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*features.RawOrderInput)
	}{
		{"age too low", func(in *features.RawOrderInput) { in.DeliveryPersonAge = 17 }},
		{"age too high", func(in *features.RawOrderInput) { in.DeliveryPersonAge = 61 }},
		{"ratings negative", func(in *features.RawOrderInput) { in.DeliveryPersonRatings = -0.1 }},
		{"ratings too high", func(in *features.RawOrderInput) { in.DeliveryPersonRatings = 5.1 }},
		{"vehicle condition", func(in *features.RawOrderInput) { in.VehicleCondition = 4 }},
		{"negative distance", func(in *features.RawOrderInput) { in.DistanceKm = -1 }},
		{"multiple deliveries", func(in *features.RawOrderInput) { in.MultipleDeliveries = 2 }},
		{"day of week", func(in *features.RawOrderInput) { in.OrderDayOfWeek = 7 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, features.ErrInvalidInput)
		})
	}

	in := validInput()
	assert.NoError(t, in.Validate())
}

func TestFeatureRecord_Validate(t *testing.T) {
	rec, err := features.Derive(validInput(), at(12), []string{"26-35"})
	require.NoError(t, err)
	require.NoError(t, rec.Validate())

	rec.City = ""
	assert.ErrorIs(t, rec.Validate(), features.ErrInvalidInput)
}
