package entity

import "gorm.io/datatypes"

// Airport is one airport from the airports reference endpoint, keyed
// by IATA code.
type Airport struct {
	IataCode string `gorm:"primaryKey;size:8"`

	AirportName string `gorm:"size:200"`
	IcaoCode    string `gorm:"size:8"`

	// Location information
	Latitude  *float64 ``
	Longitude *float64 ``
	GeonameID string   `gorm:"size:10"`

	// Regional information
	CityIataCode string `gorm:"size:8"`
	CountryName  string `gorm:"size:100"`
	CountryIso2  string `gorm:"size:10"`

	// Time information
	Timezone string `gorm:"size:50"`
	Gmt      string `gorm:"size:10"`

	PhoneNumber string `gorm:"size:50"`

	RawPayload datatypes.JSON `gorm:"type:jsonb"`
}

// TableName overrides the default table name
func (Airport) TableName() string {
	return "airports"
}
