// Package tidetable decodes fixed-width daily tide-table records.
//
// # Record Layout
//
// One line per calendar day. Offsets are 0-based byte positions:
//
//	0–71    24 × 3 chars  hourly water level for hours 00..23
//	72–73   2 chars       year, two digits (2000 + yy)
//	74–75   2 chars       month
//	76–77   2 chars       day of month
//	78–79   2 chars       station code
//	80–107  4 × 7 chars   high tide events
//	108–135 4 × 7 chars   low tide events
//
// Each 7-char event block is HH MI LLL: hour, minute and level. An hour of
// 99 marks an empty slot. Levels are right-aligned and may be negative.
//
// # Extremum Placement
//
// An event on the hour (minute 00) tags the hourly sample for that hour.
// Any other event becomes its own sample at HH:MI, in addition to the 24
// hourly samples.
//
// # Absent Values
//
// A field that does not parse, or is out of range for its kind, is absent.
// The decoder never fails: an absent date skips the day, an absent event
// hour or minute skips the event, and an absent level yields a sample with
// Missing set. Each absent field is listed in the [Report].
package tidetable
