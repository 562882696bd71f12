package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/pkg/utils"

	"gorm.io/datatypes"
)

// ErrMalformedRecord marks a record whose JSON could not be decoded
// into the endpoint's payload schema.
var ErrMalformedRecord = errors.New("malformed record")

// ErrMissingNaturalKey marks a record lacking a field required for
// conflict resolution. Such records are skipped and counted, never
// persisted.
var ErrMissingNaturalKey = errors.New("missing natural-key field")

// MissingKeyError reports which natural-key fields a record lacked,
// with enough identity to find it in the logs.
type MissingKeyError struct {
	Entity string
	Fields []string
	Ident  string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s record %q missing required fields: %s",
		e.Entity, e.Ident, strings.Join(e.Fields, ", "))
}

func (e *MissingKeyError) Unwrap() error {
	return ErrMissingNaturalKey
}

// MapFlight parses one raw flights record into a Flight entity.
// flight_date, departure.iata and arrival.iata must be present; the
// remaining unique-index columns may be empty, matching the stored
// constraint.
func MapFlight(raw entity.RawRecord) (*entity.Flight, error) {
	var payload entity.FlightPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: flight: %v", ErrMalformedRecord, err)
	}

	var missing []string
	if deref(payload.FlightDate) == "" {
		missing = append(missing, "flight_date")
	}
	if payload.Departure == nil || deref(payload.Departure.Iata) == "" {
		missing = append(missing, "departure_iata")
	}
	if payload.Arrival == nil || deref(payload.Arrival.Iata) == "" {
		missing = append(missing, "arrival_iata")
	}
	if len(missing) > 0 {
		return nil, &MissingKeyError{Entity: "flight", Fields: missing, Ident: flightIdent(&payload)}
	}

	flightDate, err := time.Parse(utils.DateFormat, deref(payload.FlightDate))
	if err != nil {
		return nil, fmt.Errorf("%w: flight %q: bad flight_date: %v",
			ErrMalformedRecord, flightIdent(&payload), err)
	}

	flight := &entity.Flight{
		FlightDate:   flightDate,
		FlightStatus: deref(payload.FlightStatus),
		RawPayload:   datatypes.JSON(raw),
	}

	if dep := payload.Departure; dep != nil {
		flight.DepartureAirport = deref(dep.Airport)
		flight.DepartureTimezone = deref(dep.Timezone)
		flight.DepartureIata = deref(dep.Iata)
		flight.DepartureIcao = deref(dep.Icao)
		flight.DepartureTerminal = deref(dep.Terminal)
		flight.DepartureGate = deref(dep.Gate)
		flight.DepartureDelay = flexIntPtr(dep.Delay)
		flight.DepartureScheduled = parseTimestamp(dep.Scheduled)
		flight.DepartureEstimated = parseTimestamp(dep.Estimated)
		flight.DepartureActual = parseTimestamp(dep.Actual)
		flight.DepartureEstimatedRunway = parseTimestamp(dep.EstimatedRunway)
		flight.DepartureActualRunway = parseTimestamp(dep.ActualRunway)
	}

	if arr := payload.Arrival; arr != nil {
		flight.ArrivalAirport = deref(arr.Airport)
		flight.ArrivalTimezone = deref(arr.Timezone)
		flight.ArrivalIata = deref(arr.Iata)
		flight.ArrivalIcao = deref(arr.Icao)
		flight.ArrivalTerminal = deref(arr.Terminal)
		flight.ArrivalGate = deref(arr.Gate)
		flight.ArrivalBaggage = deref(arr.Baggage)
		flight.ArrivalDelay = flexIntPtr(arr.Delay)
		flight.ArrivalScheduled = parseTimestamp(arr.Scheduled)
		flight.ArrivalEstimated = parseTimestamp(arr.Estimated)
		flight.ArrivalActual = parseTimestamp(arr.Actual)
		flight.ArrivalEstimatedRunway = parseTimestamp(arr.EstimatedRunway)
		flight.ArrivalActualRunway = parseTimestamp(arr.ActualRunway)
	}

	if al := payload.Airline; al != nil {
		flight.AirlineName = deref(al.Name)
		flight.AirlineIata = deref(al.Iata)
		flight.AirlineIcao = deref(al.Icao)
	}

	if fl := payload.Flight; fl != nil {
		flight.FlightNumber = deref(fl.Number)
		flight.FlightIata = deref(fl.Iata)
		flight.FlightIcao = deref(fl.Icao)
		if fl.Codeshared != nil {
			flight.Codeshared = datatypes.JSON(*fl.Codeshared)
		}
	}

	if ac := payload.Aircraft; ac != nil {
		flight.AircraftRegistration = deref(ac.Registration)
		flight.AircraftIata = deref(ac.Iata)
		flight.AircraftIcao = deref(ac.Icao)
		flight.AircraftIcao24 = deref(ac.Icao24)
	}

	return flight, nil
}

// MapAirline parses one raw airlines record. The API's own id field is
// the primary key and must be present.
func MapAirline(raw entity.RawRecord) (*entity.Airline, error) {
	var payload entity.AirlinePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: airline: %v", ErrMalformedRecord, err)
	}

	if deref(payload.ID) == "" {
		return nil, &MissingKeyError{
			Entity: "airline",
			Fields: []string{"id"},
			Ident:  deref(payload.AirlineName),
		}
	}

	return &entity.Airline{
		ID:                   deref(payload.ID),
		IataCode:             deref(payload.IataCode),
		AirlineID:            deref(payload.AirlineID),
		IcaoCode:             deref(payload.IcaoCode),
		IataPrefixAccounting: deref(payload.IataPrefixAccounting),
		AirlineName:          deref(payload.AirlineName),
		Callsign:             deref(payload.Callsign),
		CountryName:          deref(payload.CountryName),
		CountryIso2:          deref(payload.CountryIso2),
		DateFounded:          flexIntPtr(payload.DateFounded),
		HubCode:              deref(payload.HubCode),
		FleetSize:            flexIntPtr(payload.FleetSize),
		FleetAverageAge:      flexFloatPtr(payload.FleetAverageAge),
		Status:               deref(payload.Status),
		Type:                 deref(payload.Type),
		RawPayload:           datatypes.JSON(raw),
	}, nil
}

// MapAirport parses one raw airports record, keyed by IATA code.
func MapAirport(raw entity.RawRecord) (*entity.Airport, error) {
	var payload entity.AirportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: airport: %v", ErrMalformedRecord, err)
	}

	if deref(payload.IataCode) == "" {
		return nil, &MissingKeyError{
			Entity: "airport",
			Fields: []string{"iata_code"},
			Ident:  deref(payload.AirportName),
		}
	}

	return &entity.Airport{
		IataCode:     deref(payload.IataCode),
		AirportName:  deref(payload.AirportName),
		IcaoCode:     deref(payload.IcaoCode),
		Latitude:     flexFloatPtr(payload.Latitude),
		Longitude:    flexFloatPtr(payload.Longitude),
		GeonameID:    deref(payload.GeonameID),
		CityIataCode: deref(payload.CityIataCode),
		CountryName:  deref(payload.CountryName),
		CountryIso2:  deref(payload.CountryIso2),
		Timezone:     deref(payload.Timezone),
		Gmt:          deref(payload.Gmt),
		PhoneNumber:  deref(payload.PhoneNumber),
		RawPayload:   datatypes.JSON(raw),
	}, nil
}

// MapRoute parses one raw routes record. flight number, departure and
// arrival IATA codes are required; a missing airline IATA is tolerated
// (the caller tracks those) because the API leaves it blank for some
// carriers.
func MapRoute(raw entity.RawRecord, pulledAt time.Time) (*entity.Route, error) {
	var payload entity.RoutePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: route: %v", ErrMalformedRecord, err)
	}

	var missing []string
	if payload.Flight == nil || deref(payload.Flight.Number) == "" {
		missing = append(missing, "flight_number")
	}
	if payload.Departure == nil || deref(payload.Departure.Iata) == "" {
		missing = append(missing, "departure_iata")
	}
	if payload.Arrival == nil || deref(payload.Arrival.Iata) == "" {
		missing = append(missing, "arrival_iata")
	}
	if len(missing) > 0 {
		return nil, &MissingKeyError{Entity: "route", Fields: missing, Ident: routeIdent(&payload)}
	}

	route := &entity.Route{
		FlightNumber:  deref(payload.Flight.Number),
		DepartureIata: deref(payload.Departure.Iata),
		ArrivalIata:   deref(payload.Arrival.Iata),
		RawPayload:    datatypes.JSON(raw),
		PulledAt:      pulledAt,
	}

	if al := payload.Airline; al != nil {
		route.AirlineIata = deref(al.Iata)
		route.AirlineName = deref(al.Name)
		route.AirlineCallsign = deref(al.Callsign)
		route.AirlineIcao = deref(al.Icao)
	}

	route.DepartureAirport = deref(payload.Departure.Airport)
	route.DepartureTimezone = deref(payload.Departure.Timezone)
	route.DepartureIcao = deref(payload.Departure.Icao)
	route.DepartureTerminal = deref(payload.Departure.Terminal)
	route.DepartureTime = deref(payload.Departure.Time)

	route.ArrivalAirport = deref(payload.Arrival.Airport)
	route.ArrivalTimezone = deref(payload.Arrival.Timezone)
	route.ArrivalIcao = deref(payload.Arrival.Icao)
	route.ArrivalTerminal = deref(payload.Arrival.Terminal)
	route.ArrivalTime = deref(payload.Arrival.Time)

	return route, nil
}

// timestampLayouts are the formats the API has been seen to use for
// schedule times.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

func flightIdent(p *entity.FlightPayload) string {
	if p.Flight != nil && deref(p.Flight.Iata) != "" {
		return deref(p.Flight.Iata)
	}
	return "N/A"
}

func routeIdent(p *entity.RoutePayload) string {
	var airline, number, dep, arr string
	if p.Airline != nil {
		airline = deref(p.Airline.Iata)
	}
	if p.Flight != nil {
		number = deref(p.Flight.Number)
	}
	if p.Departure != nil {
		dep = deref(p.Departure.Iata)
	}
	if p.Arrival != nil {
		arr = deref(p.Arrival.Iata)
	}
	return fmt.Sprintf("%s%s:%s->%s", orDash(airline), orDash(number), orDash(dep), orDash(arr))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func flexIntPtr(f *entity.FlexInt) *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

func flexFloatPtr(f *entity.FlexFloat) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}
