package tidetable

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	hoursPerDay   = 24
	eventSlots    = 8
	highSlots     = 4 // slots 0..3 are high tides, 4..7 low tides
	emptyHour     = 99
	eventBase     = 80
	eventStride   = 7
	yearAnchor    = 2000
	levelWidth    = 3
	dateFieldSize = 2
)

type fieldKind int

const (
	kindLevel fieldKind = iota
	kindYear
	kindMonth
	kindDay
	kindEventHour
	kindMinute
	kindText
)

// field describes one fixed-width column of a record
type field struct {
	name   string
	offset int
	width  int
	kind   fieldKind
}

var (
	yearField    = field{name: "year", offset: 72, width: dateFieldSize, kind: kindYear}
	monthField   = field{name: "month", offset: 74, width: dateFieldSize, kind: kindMonth}
	dayField     = field{name: "day", offset: 76, width: dateFieldSize, kind: kindDay}
	stationField = field{name: "station", offset: 78, width: 2, kind: kindText}

	hourlyFields = func() [hoursPerDay]field {
		var fs [hoursPerDay]field
		for h := range fs {
			fs[h] = field{
				name:   fmt.Sprintf("level[%02d]", h),
				offset: h * levelWidth,
				width:  levelWidth,
				kind:   kindLevel,
			}
		}
		return fs
	}()

	eventFields = func() [eventSlots]eventBlock {
		var bs [eventSlots]eventBlock
		for j := range bs {
			base := eventBase + eventStride*j
			name := fmt.Sprintf("event[%d]", j)
			bs[j] = eventBlock{
				hour:   field{name: name + ".hour", offset: base, width: 2, kind: kindEventHour},
				minute: field{name: name + ".minute", offset: base + 2, width: 2, kind: kindMinute},
				level:  field{name: name + ".level", offset: base + 4, width: levelWidth, kind: kindLevel},
				high:   j < highSlots,
			}
		}
		return bs
	}()
)

// eventBlock is the HH MI LLL layout of one extremum slot
type eventBlock struct {
	hour   field
	minute field
	level  field
	high   bool
}

// text returns the raw characters of the field, or false when the line is too short
func (f field) text(line string) (string, bool) {
	end := f.offset + f.width
	if f.offset < 0 || end > len(line) {
		return "", false
	}
	return line[f.offset:end], true
}

// extract reads the field as an integer and checks it against the field's
// range. The second result is false when the value is absent.
func (f field) extract(line string) (int, string, bool) {
	raw, ok := f.text(line)
	if !ok {
		return 0, raw, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, raw, false
	}
	return v, raw, f.inRange(v)
}

func (f field) inRange(v int) bool {
	switch f.kind {
	case kindYear:
		return v >= 0 && v <= 99
	case kindMonth:
		return v >= 1 && v <= 12
	case kindDay:
		return v >= 1 && v <= 31
	case kindEventHour:
		return (v >= 0 && v < hoursPerDay) || v == emptyHour
	case kindMinute:
		return v >= 0 && v <= 59
	}
	return true
}
