package analyzer

import (
	"github.com/ajitpratap0/tripstat/pkg/intern"
)

// dropReason says why a data line contributed nothing.
type dropReason uint8

const (
	accepted dropReason = iota
	dropColumnCount
	dropMissingZone
	dropMissingTime
	dropBadHour
)

// lineScan is what one forward pass over a line records. Offsets are -1 when
// the byte was not found.
type lineScan struct {
	delims   int
	zoneFrom int // first byte of the zone field
	zoneTo   int // second delimiter
	zoneHash uint64

	space int // first space after the second delimiter
	colon int // first colon after space

	// First colon after the second delimiter that precedes any space: a
	// bare "HH:MM" field, hour running from its field start to the colon.
	// Used when space and colon do not both exist.
	bareFrom  int
	bareColon int
}

// scanLine walks line once, counting delimiters, hashing the zone field and
// locating the hour field.
func scanLine(line []byte, delim byte) lineScan {
	s := lineScan{
		zoneFrom:  -1,
		zoneTo:    -1,
		zoneHash:  intern.Offset64,
		space:     -1,
		colon:     -1,
		bareFrom:  -1,
		bareColon: -1,
	}
	fieldStart := 0

	for i, c := range line {
		switch {
		case c == delim:
			s.delims++
			fieldStart = i + 1
			if s.delims == 1 {
				s.zoneFrom = i + 1
			} else if s.delims == 2 {
				s.zoneTo = i
			}
		case s.delims == 1:
			s.zoneHash ^= uint64(c)
			s.zoneHash *= intern.Prime64
		case c == ' ':
			if s.delims >= 2 && s.space < 0 {
				s.space = i
			}
		case c == ':':
			if s.space >= 0 {
				if s.colon < 0 {
					s.colon = i
				}
			} else if s.delims >= 2 && s.bareColon < 0 {
				s.bareColon = i
				s.bareFrom = fieldStart
			}
		}
	}
	return s
}

// fields validates a data line scan against the header's delimiter count and
// extracts the zone bytes and hour.
func (s *lineScan) fields(line []byte, expectedDelims int) (zone []byte, hour int, reason dropReason) {
	if s.delims != expectedDelims {
		return nil, 0, dropColumnCount
	}
	if s.zoneFrom < 0 || s.zoneTo < 0 || s.zoneTo == s.zoneFrom {
		return nil, 0, dropMissingZone
	}

	var from, to int
	switch {
	case s.space >= 0 && s.colon >= 0:
		from, to = s.space+1, s.colon
	case s.bareColon >= 0:
		from, to = s.bareFrom, s.bareColon
	default:
		return nil, 0, dropMissingTime
	}

	hour, ok := parseHour(line[from:to])
	if !ok {
		return nil, 0, dropBadHour
	}
	return line[s.zoneFrom:s.zoneTo], hour, accepted
}

// parseHour converts a one or two digit hour in [0, 23].
func parseHour(b []byte) (int, bool) {
	var h int
	switch len(b) {
	case 1:
		d := b[0] - '0'
		if d > 9 {
			return 0, false
		}
		h = int(d)
	case 2:
		d1, d2 := b[0]-'0', b[1]-'0'
		if d1 > 9 || d2 > 9 {
			return 0, false
		}
		h = int(d1)*10 + int(d2)
	default:
		return 0, false
	}
	if h > 23 {
		return 0, false
	}
	return h, true
}
