package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field layout shared by the AITFC and RTTFC traffic dialects. The two
// formats diverge after the 15th field, but the aircraft id and the
// timestamp sit at the same index in both.
const (
	FieldAircraftID  = 1
	FieldTimestamp   = 14
	MinTrafficFields = 15
)

// TrafficRecord is one traffic line split into its CSV fields.
// Invariant: len(Fields) >= MinTrafficFields.
type TrafficRecord struct {
	Fields []string
}

// AircraftID parses the aircraft identifier (transponder code, decimal on
// the wire) from field 1.
func (r *TrafficRecord) AircraftID() (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(r.Fields[FieldAircraftID]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid aircraft id %q: %w", r.Fields[FieldAircraftID], err)
	}
	return id, nil
}

// Timestamp parses field 14 as seconds since epoch, fractional allowed.
func (r *TrafficRecord) Timestamp() (float64, error) {
	ts, err := strconv.ParseFloat(strings.TrimSpace(r.Fields[FieldTimestamp]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", r.Fields[FieldTimestamp], err)
	}
	return ts, nil
}

// SetTimestamp rewrites field 14.
func (r *TrafficRecord) SetTimestamp(ts float64) {
	r.Fields[FieldTimestamp] = strconv.FormatFloat(ts, 'f', -1, 64)
}

// String joins the fields back into the outbound datagram payload.
func (r *TrafficRecord) String() string {
	return strings.Join(r.Fields, ",")
}

// OwnshipPosition is the user aircraft's position as received from a
// ForeFlight-style GPS broadcast. Fields are NaN until the first update.
type OwnshipPosition struct {
	Lat            float64
	Lon            float64
	AltMeters      float64
	Track          float64
	GroundSpeedMPS float64
}

// NewOwnshipPosition returns a position with all fields undefined.
func NewOwnshipPosition() OwnshipPosition {
	nan := math.NaN()
	return OwnshipPosition{Lat: nan, Lon: nan, AltMeters: nan, Track: nan, GroundSpeedMPS: nan}
}

// AltFeet converts the altitude to feet.
func (p OwnshipPosition) AltFeet() float64 {
	return p.AltMeters * 3.28084
}

// GroundSpeedKnots converts the ground speed to knots.
func (p OwnshipPosition) GroundSpeedKnots() float64 {
	return p.GroundSpeedMPS * 1.943844
}

func (p OwnshipPosition) String() string {
	return fmt.Sprintf("User's position: %.6f/%.6f, altitude = %.0f ft, track = %.0f deg, gnd speed = %.1f kn",
		p.Lat, p.Lon, p.AltFeet(), p.Track, p.GroundSpeedKnots())
}

// ReplayedRecord is the envelope published to the feed mirror for every
// datagram that went out.
type ReplayedRecord struct {
	Raw       string    `json:"raw"`
	Kind      string    `json:"kind"` // "traffic" or "weather"
	SessionID string    `json:"session_id"`
	Pass      int       `json:"pass"`
	SentAt    time.Time `json:"sent_at"`
}

// AircraftState is the last known position of one replayed aircraft, kept in
// the live-state cache for external inspection.
type AircraftState struct {
	HexIdent    string    `json:"hex_ident"`
	Callsign    string    `json:"callsign"`
	Altitude    int       `json:"altitude"`
	GroundSpeed float64   `json:"groundspeed"`
	Track       float64   `json:"track"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id"`
}
