package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Route is one scheduled route from the routes reference endpoint. The
// natural key is (airline_iata, flight_number, departure_iata,
// arrival_iata). PulledAt is fixed once per ingestion batch, so every
// row of one batch carries the same timestamp.
type Route struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	// Route identifiers
	AirlineIata   string `gorm:"size:4;uniqueIndex:uix_route_identity,priority:1"`
	FlightNumber  string `gorm:"size:6;uniqueIndex:uix_route_identity,priority:2"`
	DepartureIata string `gorm:"size:4;uniqueIndex:uix_route_identity,priority:3"`
	ArrivalIata   string `gorm:"size:4;uniqueIndex:uix_route_identity,priority:4"`

	// Departure info
	DepartureAirport  string `gorm:"size:200"`
	DepartureTimezone string `gorm:"size:50"`
	DepartureIcao     string `gorm:"size:8"`
	DepartureTerminal string `gorm:"size:50"`
	DepartureTime     string `gorm:"size:8"`

	// Arrival info
	ArrivalAirport  string `gorm:"size:200"`
	ArrivalTimezone string `gorm:"size:50"`
	ArrivalIcao     string `gorm:"size:8"`
	ArrivalTerminal string `gorm:"size:50"`
	ArrivalTime     string `gorm:"size:8"`

	// Airline info
	AirlineName     string `gorm:"size:200"`
	AirlineCallsign string `gorm:"size:50"`
	AirlineIcao     string `gorm:"size:8"`

	RawPayload datatypes.JSON `gorm:"type:jsonb"`

	PulledAt time.Time `gorm:"not null"`
}

// TableName overrides the default table name
func (Route) TableName() string {
	return "routes"
}
