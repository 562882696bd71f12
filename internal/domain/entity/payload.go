package entity

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawRecord is one untyped API record exactly as returned by the wire.
// It is stored verbatim in the raw_payload column of every entity.
type RawRecord = json.RawMessage

// The payload types below are the optional-field schemas the mappers
// decode a RawRecord into before building an entity. Every field is a
// pointer (or flexible scalar) because the API omits or nulls fields
// freely.

// FlightPayload mirrors one record of the flights endpoint.
type FlightPayload struct {
	FlightDate   *string          `json:"flight_date"`
	FlightStatus *string          `json:"flight_status"`
	Departure    *FlightStop      `json:"departure"`
	Arrival      *FlightStop      `json:"arrival"`
	Airline      *AirlineRef      `json:"airline"`
	Flight       *FlightRef       `json:"flight"`
	Aircraft     *AircraftRef     `json:"aircraft"`
	Live         *json.RawMessage `json:"live"`
}

// FlightStop is the departure or arrival block of a flight record.
type FlightStop struct {
	Airport         *string  `json:"airport"`
	Timezone        *string  `json:"timezone"`
	Iata            *string  `json:"iata"`
	Icao            *string  `json:"icao"`
	Terminal        *string  `json:"terminal"`
	Gate            *string  `json:"gate"`
	Baggage         *string  `json:"baggage"`
	Delay           *FlexInt `json:"delay"`
	Scheduled       *string  `json:"scheduled"`
	Estimated       *string  `json:"estimated"`
	Actual          *string  `json:"actual"`
	EstimatedRunway *string  `json:"estimated_runway"`
	ActualRunway    *string  `json:"actual_runway"`
	Time            *string  `json:"time"` // routes endpoint uses time instead of scheduled
}

// AirlineRef is the nested airline block of flight and route records.
type AirlineRef struct {
	Name     *string `json:"name"`
	Iata     *string `json:"iata"`
	Icao     *string `json:"icao"`
	Callsign *string `json:"callsign"`
}

// FlightRef is the nested flight block of flight and route records.
type FlightRef struct {
	Number     *string          `json:"number"`
	Iata       *string          `json:"iata"`
	Icao       *string          `json:"icao"`
	Codeshared *json.RawMessage `json:"codeshared"`
}

// AircraftRef is the nested aircraft block of a flight record.
type AircraftRef struct {
	Registration *string `json:"registration"`
	Iata         *string `json:"iata"`
	Icao         *string `json:"icao"`
	Icao24       *string `json:"icao24"`
}

// AirlinePayload mirrors one record of the airlines endpoint.
type AirlinePayload struct {
	ID                   *string    `json:"id"`
	IataCode             *string    `json:"iata_code"`
	AirlineID            *string    `json:"airline_id"`
	IcaoCode             *string    `json:"icao_code"`
	IataPrefixAccounting *string    `json:"iata_prefix_accounting"`
	AirlineName          *string    `json:"airline_name"`
	Callsign             *string    `json:"callsign"`
	CountryName          *string    `json:"country_name"`
	CountryIso2          *string    `json:"country_iso2"`
	DateFounded          *FlexInt   `json:"date_founded"`
	HubCode              *string    `json:"hub_code"`
	FleetSize            *FlexInt   `json:"fleet_size"`
	FleetAverageAge      *FlexFloat `json:"fleet_average_age"`
	Status               *string    `json:"status"`
	Type                 *string    `json:"type"`
}

// AirportPayload mirrors one record of the airports endpoint.
type AirportPayload struct {
	IataCode     *string    `json:"iata_code"`
	AirportName  *string    `json:"airport_name"`
	IcaoCode     *string    `json:"icao_code"`
	Latitude     *FlexFloat `json:"latitude"`
	Longitude    *FlexFloat `json:"longitude"`
	GeonameID    *string    `json:"geoname_id"`
	CityIataCode *string    `json:"city_iata_code"`
	CountryName  *string    `json:"country_name"`
	CountryIso2  *string    `json:"country_iso2"`
	Timezone     *string    `json:"timezone"`
	Gmt          *string    `json:"gmt"`
	PhoneNumber  *string    `json:"phone_number"`
}

// RoutePayload mirrors one record of the routes endpoint.
type RoutePayload struct {
	Airline   *AirlineRef `json:"airline"`
	Flight    *FlightRef  `json:"flight"`
	Departure *FlightStop `json:"departure"`
	Arrival   *FlightStop `json:"arrival"`
}

// FlexInt decodes a JSON number or a numeric string. The API is not
// consistent about which one it sends for counts and years.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some numeric strings arrive as floats ("23.0").
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		v = int(fv)
	}
	*f = FlexInt(v)
	return nil
}

// FlexFloat decodes a JSON number or a numeric string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}
