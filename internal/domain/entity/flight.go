package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Flight is one flight movement on one calendar date. The natural key
// is (flight_date, flight_iata, departure_iata, arrival_iata,
// departure_scheduled); repeated ingestion overwrites all other columns.
type Flight struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	FlightDate   time.Time `gorm:"type:date;not null;uniqueIndex:uix_flight_identity,priority:1"`
	FlightStatus string    `gorm:"size:50"` // scheduled, active, landed, cancelled, incident, diverted

	// Departure info
	DepartureAirport         string     `gorm:"size:255"`
	DepartureTimezone        string     `gorm:"size:50"`
	DepartureIata            string     `gorm:"size:8;uniqueIndex:uix_flight_identity,priority:3"`
	DepartureIcao            string     `gorm:"size:8"`
	DepartureTerminal        string     `gorm:"size:50"`
	DepartureGate            string     `gorm:"size:20"`
	DepartureDelay           *int       ``
	DepartureScheduled       *time.Time `gorm:"uniqueIndex:uix_flight_identity,priority:5"`
	DepartureEstimated       *time.Time ``
	DepartureActual          *time.Time ``
	DepartureEstimatedRunway *time.Time ``
	DepartureActualRunway    *time.Time ``

	// Arrival info
	ArrivalAirport         string     `gorm:"size:255"`
	ArrivalTimezone        string     `gorm:"size:50"`
	ArrivalIata            string     `gorm:"size:8;uniqueIndex:uix_flight_identity,priority:4"`
	ArrivalIcao            string     `gorm:"size:8"`
	ArrivalTerminal        string     `gorm:"size:50"`
	ArrivalGate            string     `gorm:"size:20"`
	ArrivalBaggage         string     `gorm:"size:20"`
	ArrivalDelay           *int       ``
	ArrivalScheduled       *time.Time ``
	ArrivalEstimated       *time.Time ``
	ArrivalActual          *time.Time ``
	ArrivalEstimatedRunway *time.Time ``
	ArrivalActualRunway    *time.Time ``

	// Airline info
	AirlineName string `gorm:"size:255"`
	AirlineIata string `gorm:"size:8"`
	AirlineIcao string `gorm:"size:8"`

	// Flight info
	FlightNumber string         `gorm:"size:10"`
	FlightIata   string         `gorm:"size:10;uniqueIndex:uix_flight_identity,priority:2"`
	FlightIcao   string         `gorm:"size:10"`
	Codeshared   datatypes.JSON `gorm:"type:jsonb"`

	// Aircraft info
	AircraftRegistration string `gorm:"size:20"`
	AircraftIata         string `gorm:"size:10"`
	AircraftIcao         string `gorm:"size:10"`
	AircraftIcao24       string `gorm:"size:10"`

	// Verbatim API record for auditability
	RawPayload datatypes.JSON `gorm:"type:jsonb"`
}

// TableName overrides the default table name
func (Flight) TableName() string {
	return "flights"
}
