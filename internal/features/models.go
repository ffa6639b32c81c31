// Package features derives the fixed-schema feature record consumed by the
// ETA and delay models from raw order attributes.
package features

import (
	"errors"
	"fmt"
)

// Derivation errors.
var (
	ErrUnknownTrafficDensity = errors.New("unknown road traffic density")
	ErrInvalidInput          = errors.New("invalid order input")
)

// AgeGroupUnknown is the sentinel age-bin label used when no reference bin
// contains the delivery person's age. It is a valid model input, not an error.
const AgeGroupUnknown = "Unknown"

// Part-of-day labels. The hour windows form a total, non-overlapping
// partition of 0-23.
const (
	PartOfDayMorning   = "morning"
	PartOfDayLunch     = "lunch"
	PartOfDayAfternoon = "afternoon"
	PartOfDayEvening   = "evening"
	PartOfDayNight     = "night"
)

// TrafficOrdinals maps road traffic density (lower-cased) to its ordinal
// encoding. Values outside this table are a hard failure; the models were
// trained on exactly these four levels and silently defaulting would skew
// both predictions.
var TrafficOrdinals = map[string]int{
	"low":    1,
	"medium": 2,
	"high":   3,
	"jam":    4,
}

// RawOrderInput holds the user-supplied order attributes for one prediction
// request. It is transient: built per request and discarded after derivation.
type RawOrderInput struct {
	// DeliveryPersonAge in years (18-60).
	DeliveryPersonAge int

	// DeliveryPersonRatings is the courier's average rating (0.0-5.0).
	DeliveryPersonRatings float64

	// VehicleCondition score (0-3, higher is better).
	VehicleCondition int

	// WeatherConditions is a categorical value from the reference dataset.
	WeatherConditions string

	// Festival is the categorical festival flag from the reference dataset.
	Festival string

	// DistanceKm is the delivery distance in kilometres (>= 0).
	DistanceKm float64

	// MultipleDeliveries is 1 when the courier carries more than one order.
	MultipleDeliveries int

	// OrderDayOfWeek is the intended order day, 0=Monday..6=Sunday. This is
	// caller-supplied and deliberately independent of the request-time clock
	// used for the other temporal features.
	OrderDayOfWeek int

	// RoadTrafficDensity is one of low/medium/high/jam (any casing).
	RoadTrafficDensity string

	// OrderMonth is a categorical month value from the reference dataset.
	OrderMonth string

	TypeOfOrder   string
	TypeOfVehicle string
	City          string

	// RestaurantZone and CustomerZone are categorical zone labels "0".."4".
	RestaurantZone string
	CustomerZone   string
}

// Validate checks the documented input ranges and returns a single wrapped
// error naming the first offending field.
func (in *RawOrderInput) Validate() error {
	switch {
	case in.DeliveryPersonAge < 18 || in.DeliveryPersonAge > 60:
		return fmt.Errorf("%w: delivery_person_age must be 18-60, got %d", ErrInvalidInput, in.DeliveryPersonAge)
	case in.DeliveryPersonRatings < 0 || in.DeliveryPersonRatings > 5:
		return fmt.Errorf("%w: delivery_person_ratings must be 0.0-5.0, got %g", ErrInvalidInput, in.DeliveryPersonRatings)
	case in.VehicleCondition < 0 || in.VehicleCondition > 3:
		return fmt.Errorf("%w: vehicle_condition must be 0-3, got %d", ErrInvalidInput, in.VehicleCondition)
	case in.DistanceKm < 0:
		return fmt.Errorf("%w: distance_km must be >= 0, got %g", ErrInvalidInput, in.DistanceKm)
	case in.MultipleDeliveries != 0 && in.MultipleDeliveries != 1:
		return fmt.Errorf("%w: multiple_deliveries must be 0 or 1, got %d", ErrInvalidInput, in.MultipleDeliveries)
	case in.OrderDayOfWeek < 0 || in.OrderDayOfWeek > 6:
		return fmt.Errorf("%w: order_dayofweek must be 0-6, got %d", ErrInvalidInput, in.OrderDayOfWeek)
	}
	return nil
}

// DerivedContext holds the temporal values decomposed from the request-time
// clock. It changes with wall-clock time, which makes derivation
// non-deterministic across calls unless the caller pins the timestamp.
type DerivedContext struct {
	// Hour of day (0-23).
	Hour int

	// WeekOfYear is the ISO week number (1-53).
	WeekOfYear int

	// DayOfMonth (1-31).
	DayOfMonth int
}

// FeatureRecord is the flat 32-field schema both models expect. Field set and
// wire names are fixed; every field must be populated before inference.
type FeatureRecord struct {
	DistanceKm            float64 `json:"distance_km"`
	DistanceTraffic       float64 `json:"distance_traffic"`
	DriverScore           float64 `json:"driver_score"`
	DeliveryPersonAge     int     `json:"delivery_person_age"`
	DeliveryPersonRatings float64 `json:"delivery_person_ratings"`
	VehicleCondition      int     `json:"vehicle_condition"`
	MultipleDeliveries    int     `json:"multiple_deliveries"`
	OrderDayOfWeek        int     `json:"order_dayofweek"`
	WeekOfYear            int     `json:"week_of_year"`
	DayOfMonth            int     `json:"day_of_month"`
	HourOfOrder           int     `json:"hour_of_order"`
	RushHour              int     `json:"rush_hour"`
	TrafficOrdinal        int     `json:"traffic_ordinal"`
	RatingVehicle         float64 `json:"rating_vehicle"`
	DelayWeekend          int     `json:"delay_weekend"`
	DistOrderHour         float64 `json:"dist_order_hour"`
	PeakTraffic           int     `json:"peak_traffic"`
	MultiPeak             int     `json:"multi_peak"`
	PeakHours             int     `json:"peak_hours"`
	IsWeekend             int     `json:"is_weekend"`
	WeatherConditions     string  `json:"weather_conditions"`
	RoadTrafficDensity    string  `json:"road_traffic_density"`
	TypeOfOrder           string  `json:"type_of_order"`
	TypeOfVehicle         string  `json:"type_of_vehicle"`
	Festival              string  `json:"festival"`
	City                  string  `json:"city"`
	OrderMonth            string  `json:"order_month"`
	AgeBins               string  `json:"age_bins"`
	PartOfDay             string  `json:"part_of_day"`
	RestaurantZone        string  `json:"restaurant_zone"`
	CustomerZone          string  `json:"customer_zone"`
	DistanceBin           int     `json:"distance_bin"`
}

// Validate confirms the record is schema-complete: no categorical field may
// be empty when the record is handed to a model.
func (r *FeatureRecord) Validate() error {
	categoricals := map[string]string{
		"weather_conditions":   r.WeatherConditions,
		"road_traffic_density": r.RoadTrafficDensity,
		"type_of_order":        r.TypeOfOrder,
		"type_of_vehicle":      r.TypeOfVehicle,
		"festival":             r.Festival,
		"city":                 r.City,
		"order_month":          r.OrderMonth,
		"age_bins":             r.AgeBins,
		"part_of_day":          r.PartOfDay,
		"restaurant_zone":      r.RestaurantZone,
		"customer_zone":        r.CustomerZone,
	}
	for field, value := range categoricals {
		if value == "" {
			return fmt.Errorf("%w: feature %s is empty", ErrInvalidInput, field)
		}
	}
	return nil
}
