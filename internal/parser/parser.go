package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/twinfan/sendtraffic/internal/types"
)

// Recognized line tags. Traffic tags are matched as exact, case-sensitive
// prefixes; any other line is weather data and goes out verbatim.
const (
	TagAITFC   = "AITFC"
	TagRTTFC   = "RTTFC"
	TagOwnship = "XGPS"
)

// Positions of interest within the leading AITFC/RTTFC fields, used only for
// the best-effort state extraction. The send path never depends on them.
const (
	fieldLat      = 2
	fieldLon      = 3
	fieldAlt      = 4
	fieldTrack    = 7
	fieldSpeed    = 8
	fieldCallsign = 9
)

// Kind classifies one input line.
type Kind int

const (
	KindTraffic Kind = iota
	KindWeather
)

// ErrTooFewFields marks a traffic line below the minimum field count. Such
// lines are skipped, they do not abort the stream.
var ErrTooFewFields = errors.New("too few fields")

// Classify decides whether a line is traffic or weather data.
func Classify(line string) Kind {
	if strings.HasPrefix(line, TagAITFC) || strings.HasPrefix(line, TagRTTFC) {
		return KindTraffic
	}
	return KindWeather
}

// ParseTraffic splits a traffic line into its fields and enforces the
// minimum field count shared by the AITFC and RTTFC dialects.
func ParseTraffic(line string) (*types.TrafficRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) < types.MinTrafficFields {
		return nil, fmt.Errorf("found %d fields, expected at least %d, in line %q: %w",
			len(fields), types.MinTrafficFields, line, ErrTooFewFields)
	}
	return &types.TrafficRecord{Fields: fields}, nil
}

// UpdateOwnship applies an XGPS broadcast line to pos. A line with at least
// lat/lon updates those two fields, a 6-field line also updates altitude,
// track and ground speed. Reports whether pos was touched. Lines with an
// unrecognized tag or unparsable coordinates are ignored.
func UpdateOwnship(pos *types.OwnshipPosition, line string) bool {
	if !strings.HasPrefix(line, TagOwnship) {
		return false
	}
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return false
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if errLat != nil || errLon != nil {
		return false
	}
	pos.Lat = lat
	pos.Lon = lon

	if len(fields) >= 6 {
		if alt, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64); err == nil {
			pos.AltMeters = alt
		}
		if track, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64); err == nil {
			pos.Track = track
		}
		if spd, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64); err == nil {
			pos.GroundSpeedMPS = spd
		}
	}
	return true
}

// StateFromTraffic extracts a best-effort aircraft state from the leading
// fields of a traffic record. Individual field decode failures leave the
// corresponding state field at its zero value; only an unparsable aircraft
// id makes the whole extraction fail (there is no key to store it under).
func StateFromTraffic(rec *types.TrafficRecord, sentAt time.Time) (*types.AircraftState, error) {
	id, err := rec.AircraftID()
	if err != nil {
		return nil, err
	}

	state := &types.AircraftState{
		HexIdent:  fmt.Sprintf("%06X", id),
		Timestamp: sentAt,
	}
	if lat, err := strconv.ParseFloat(rec.Fields[fieldLat], 64); err == nil {
		state.Latitude = lat
	}
	if lon, err := strconv.ParseFloat(rec.Fields[fieldLon], 64); err == nil {
		state.Longitude = lon
	}
	if alt, err := strconv.Atoi(rec.Fields[fieldAlt]); err == nil {
		state.Altitude = alt
	}
	if track, err := strconv.ParseFloat(rec.Fields[fieldTrack], 64); err == nil {
		state.Track = track
	}
	if spd, err := strconv.ParseFloat(rec.Fields[fieldSpeed], 64); err == nil {
		state.GroundSpeed = spd
	}
	state.Callsign = strings.TrimSpace(rec.Fields[fieldCallsign])

	return state, nil
}
