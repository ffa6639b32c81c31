// Package reference supplies the distinct categorical values observed in the
// delivery history dataset. The models were trained on these categories, so
// the API uses them to populate and validate form choices, and the derivation
// engine uses the age-bin labels for the age-group lookup.
package reference

import "errors"

// Reference errors.
var (
	ErrUnknownColumn = errors.New("unknown reference column")
	ErrUnavailable   = errors.New("reference data unavailable")
)

// Reference column names. These are the only columns the accessor serves.
const (
	ColumnWeatherConditions  = "weather_conditions"
	ColumnRoadTrafficDensity = "road_traffic_density"
	ColumnTypeOfOrder        = "type_of_order"
	ColumnTypeOfVehicle      = "type_of_vehicle"
	ColumnFestival           = "festival"
	ColumnCity               = "city"
	ColumnOrderMonth         = "order_month"
	ColumnAgeBins            = "age_bins"
)

// Columns lists every reference column in a stable order.
func Columns() []string {
	return []string{
		ColumnWeatherConditions,
		ColumnRoadTrafficDensity,
		ColumnTypeOfOrder,
		ColumnTypeOfVehicle,
		ColumnFestival,
		ColumnCity,
		ColumnOrderMonth,
		ColumnAgeBins,
	}
}

// IsKnownColumn reports whether name is a served reference column.
func IsKnownColumn(name string) bool {
	for _, c := range Columns() {
		if c == name {
			return true
		}
	}
	return false
}
