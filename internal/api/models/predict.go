package models

import (
	"strings"

	"github.com/dishpatch/dishpatch/internal/features"
)

// PredictRequest is the request body for computing a delivery prediction.
type PredictRequest struct {
	DeliveryPersonAge     int     `json:"deliveryPersonAge"`
	DeliveryPersonRatings float64 `json:"deliveryPersonRatings"`
	VehicleCondition      int     `json:"vehicleCondition"`
	WeatherConditions     string  `json:"weatherConditions"`
	Festival              string  `json:"festival"`
	DistanceKm            float64 `json:"distanceKm"`
	MultipleDeliveries    int     `json:"multipleDeliveries"`
	OrderDayOfWeek        int     `json:"orderDayOfWeek"`
	RoadTrafficDensity    string  `json:"roadTrafficDensity"`
	OrderMonth            string  `json:"orderMonth"`
	TypeOfOrder           string  `json:"typeOfOrder"`
	TypeOfVehicle         string  `json:"typeOfVehicle"`
	City                  string  `json:"city"`
	RestaurantZone        string  `json:"restaurantZone"`
	CustomerZone          string  `json:"customerZone"`

	// PredictionTime optionally pins the request-time clock (RFC3339).
	// When omitted the server clock is used. Pinning it makes the derived
	// temporal features reproducible.
	PredictionTime *Timestamp `json:"predictionTime,omitempty"`
}

// Validate checks the request fields and returns structured field errors.
func (req *PredictRequest) Validate() []FieldError {
	var errs []FieldError

	if req.DeliveryPersonAge < 18 || req.DeliveryPersonAge > 60 {
		errs = append(errs, FieldError{Field: "deliveryPersonAge", Message: "must be between 18 and 60"})
	}
	if req.DeliveryPersonRatings < 0 || req.DeliveryPersonRatings > 5 {
		errs = append(errs, FieldError{Field: "deliveryPersonRatings", Message: "must be between 0.0 and 5.0"})
	}
	if req.VehicleCondition < 0 || req.VehicleCondition > 3 {
		errs = append(errs, FieldError{Field: "vehicleCondition", Message: "must be between 0 and 3"})
	}
	if req.DistanceKm < 0 {
		errs = append(errs, FieldError{Field: "distanceKm", Message: "must be >= 0"})
	}
	if req.MultipleDeliveries != 0 && req.MultipleDeliveries != 1 {
		errs = append(errs, FieldError{Field: "multipleDeliveries", Message: "must be 0 or 1"})
	}
	if req.OrderDayOfWeek < 0 || req.OrderDayOfWeek > 6 {
		errs = append(errs, FieldError{Field: "orderDayOfWeek", Message: "must be between 0 (Monday) and 6 (Sunday)"})
	}

	for _, f := range []struct {
		name, value string
	}{
		{"weatherConditions", req.WeatherConditions},
		{"festival", req.Festival},
		{"roadTrafficDensity", req.RoadTrafficDensity},
		{"orderMonth", req.OrderMonth},
		{"typeOfOrder", req.TypeOfOrder},
		{"typeOfVehicle", req.TypeOfVehicle},
		{"city", req.City},
		{"restaurantZone", req.RestaurantZone},
		{"customerZone", req.CustomerZone},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, FieldError{Field: f.name, Message: "is required"})
		}
	}

	// Zones are categorical labels "0".."4"
	for _, f := range []struct {
		name, value string
	}{
		{"restaurantZone", req.RestaurantZone},
		{"customerZone", req.CustomerZone},
	} {
		if strings.TrimSpace(f.value) == "" {
			continue // already reported as required
		}
		if !isValidZone(f.value) {
			errs = append(errs, FieldError{Field: f.name, Message: `must be one of "0" through "4"`})
		}
	}

	return errs
}

func isValidZone(value string) bool {
	switch value {
	case "0", "1", "2", "3", "4":
		return true
	}
	return false
}

// ToRawOrderInput converts the request into the derivation engine's input.
func (req *PredictRequest) ToRawOrderInput() features.RawOrderInput {
	return features.RawOrderInput{
		DeliveryPersonAge:     req.DeliveryPersonAge,
		DeliveryPersonRatings: req.DeliveryPersonRatings,
		VehicleCondition:      req.VehicleCondition,
		WeatherConditions:     req.WeatherConditions,
		Festival:              req.Festival,
		DistanceKm:            req.DistanceKm,
		MultipleDeliveries:    req.MultipleDeliveries,
		OrderDayOfWeek:        req.OrderDayOfWeek,
		RoadTrafficDensity:    req.RoadTrafficDensity,
		OrderMonth:            req.OrderMonth,
		TypeOfOrder:           req.TypeOfOrder,
		TypeOfVehicle:         req.TypeOfVehicle,
		City:                  req.City,
		RestaurantZone:        req.RestaurantZone,
		CustomerZone:          req.CustomerZone,
	}
}

// PredictResponse is the response body for a computed prediction.
type PredictResponse struct {
	GeneratedAt      Timestamp               `json:"generatedAt"`
	EtaMinutes       float64                 `json:"etaMinutes"`
	DelayProbability float64                 `json:"delayProbability"`
	DelayLabel       string                  `json:"delayLabel"`
	Features         *features.FeatureRecord `json:"features"`
}
