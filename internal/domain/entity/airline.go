package entity

import "gorm.io/datatypes"

// Airline is one carrier from the airlines reference endpoint. The
// API's own id field is the primary key; iata_code can be absent.
type Airline struct {
	ID string `gorm:"primaryKey;size:10"`

	IataCode string `gorm:"size:8"`

	// Identifier fields
	AirlineID            string `gorm:"size:10"`
	IcaoCode             string `gorm:"size:8"`
	IataPrefixAccounting string `gorm:"size:10"`

	// Airline details
	AirlineName string `gorm:"size:200"`
	Callsign    string `gorm:"size:50"`
	CountryName string `gorm:"size:100"`
	CountryIso2 string `gorm:"size:10"`
	DateFounded *int   ``
	HubCode     string `gorm:"size:8"`

	// Fleet information
	FleetSize       *int     ``
	FleetAverageAge *float64 ``

	// Status information
	Status string `gorm:"size:50"`
	Type   string `gorm:"size:50"`

	RawPayload datatypes.JSON `gorm:"type:jsonb"`
}

// TableName overrides the default table name
func (Airline) TableName() string {
	return "airlines"
}
