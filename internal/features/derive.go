package features

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Derive transforms raw order attributes into the 32-field feature record.
// It is a pure function: the request-time clock is injected as now, and the
// reference age-bin labels are passed in so the engine touches no I/O. Safe
// for concurrent use.
func Derive(raw RawOrderInput, now time.Time, ageBins []string) (*FeatureRecord, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	ctx := DecomposeTime(now)

	trafficOrdinal, ok := TrafficOrdinals[strings.ToLower(raw.RoadTrafficDensity)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrafficDensity, raw.RoadTrafficDensity)
	}

	isWeekend := 0
	if raw.OrderDayOfWeek >= 5 {
		isWeekend = 1
	}

	peakHours := peakHoursFlag(ctx.Hour)
	rushHour := rushHourFlag(ctx.Hour)

	return &FeatureRecord{
		DistanceKm:            raw.DistanceKm,
		DistanceTraffic:       raw.DistanceKm * float64(peakHours),
		DriverScore:           raw.DeliveryPersonRatings * (float64(raw.VehicleCondition) / 10),
		DeliveryPersonAge:     raw.DeliveryPersonAge,
		DeliveryPersonRatings: raw.DeliveryPersonRatings,
		VehicleCondition:      raw.VehicleCondition,
		MultipleDeliveries:    raw.MultipleDeliveries,
		OrderDayOfWeek:        raw.OrderDayOfWeek,
		WeekOfYear:            ctx.WeekOfYear,
		DayOfMonth:            ctx.DayOfMonth,
		HourOfOrder:           ctx.Hour,
		RushHour:              rushHour,
		TrafficOrdinal:        trafficOrdinal,
		RatingVehicle:         raw.DeliveryPersonRatings * float64(raw.VehicleCondition),
		DelayWeekend:          peakHours * isWeekend,
		DistOrderHour:         raw.DistanceKm * float64(ctx.Hour),
		PeakTraffic:           peakHours,
		MultiPeak:             raw.MultipleDeliveries * peakHours,
		PeakHours:             peakHours,
		IsWeekend:             isWeekend,
		WeatherConditions:     raw.WeatherConditions,
		RoadTrafficDensity:    raw.RoadTrafficDensity,
		TypeOfOrder:           raw.TypeOfOrder,
		TypeOfVehicle:         raw.TypeOfVehicle,
		Festival:              raw.Festival,
		City:                  raw.City,
		OrderMonth:            raw.OrderMonth,
		AgeBins:               AgeGroup(raw.DeliveryPersonAge, ageBins),
		PartOfDay:             PartOfDay(ctx.Hour),
		RestaurantZone:        raw.RestaurantZone,
		CustomerZone:          raw.CustomerZone,
		DistanceBin:           DistanceBin(raw.DistanceKm),
	}, nil
}

// DecomposeTime extracts the temporal features from the request-time clock.
func DecomposeTime(now time.Time) DerivedContext {
	_, week := now.ISOWeek()
	return DerivedContext{
		Hour:       now.Hour(),
		WeekOfYear: week,
		DayOfMonth: now.Day(),
	}
}

// peakHoursFlag is 1 in [11,14) and [17,21). The window deliberately differs
// from rushHourFlag at hours 14, 15 and 21; the trained models expect both
// encodings as-is.
func peakHoursFlag(hour int) int {
	if (hour >= 11 && hour < 14) || (hour >= 17 && hour < 21) {
		return 1
	}
	return 0
}

// rushHourFlag is 1 in [11,15) and [18,22).
func rushHourFlag(hour int) int {
	if (hour >= 11 && hour < 15) || (hour >= 18 && hour < 22) {
		return 1
	}
	return 0
}

// DistanceBin buckets the delivery distance. Intervals are left-closed,
// right-open: a boundary distance belongs to the higher bucket.
func DistanceBin(distanceKm float64) int {
	switch {
	case distanceKm < 2:
		return 0
	case distanceKm < 5:
		return 1
	case distanceKm < 10:
		return 2
	case distanceKm < 20:
		return 3
	default:
		return 4
	}
}

// PartOfDay labels the hour of day.
func PartOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return PartOfDayMorning
	case hour >= 11 && hour < 15:
		return PartOfDayLunch
	case hour >= 15 && hour < 18:
		return PartOfDayAfternoon
	case hour >= 18 && hour < 22:
		return PartOfDayEvening
	default:
		return PartOfDayNight
	}
}

// AgeGroup finds the first reference bin whose closed [low, high] interval
// contains age. Bin labels are "low-high" strings; labels that do not parse
// are skipped, and AgeGroupUnknown is returned when nothing matches.
func AgeGroup(age int, bins []string) string {
	for _, bin := range bins {
		low, high, ok := parseAgeBin(bin)
		if !ok {
			continue
		}
		if age >= low && age <= high {
			return bin
		}
	}
	return AgeGroupUnknown
}

// parseAgeBin parses a "low-high" label into its bounds.
func parseAgeBin(label string) (low, high int, ok bool) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	low, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	high, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return low, high, true
}
