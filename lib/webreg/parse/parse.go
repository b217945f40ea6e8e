// Package parse turns the permissive wire shapes in raw into the strict
// domain model in types. Every function here is pure and total: malformed
// rows demote to diagnostics instead of failing the batch, and the same
// input always yields the same output.
package parse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/raw"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"
)

// instructorNames splits the service's instructor field, which packs
// people as "name1    ;pid1:name2    ;pid2", into clean names.
func instructorNames(field string) []string {
	var names []string
	for _, part := range strings.Split(field, ":") {
		if i := strings.IndexByte(part, ';'); i >= 0 {
			part = part[:i]
		}
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// mergeInstructors combines per-meeting instructor lists into one sorted,
// deduplicated roster.
func mergeInstructors(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}

// parseDayCode reads a digit string such as "135" into weekdays,
// where '1' is Monday through '6' Saturday and '0' is Sunday.
func parseDayCode(code string) []types.Weekday {
	var days []types.Weekday
	for _, c := range code {
		switch c {
		case '0':
			days = append(days, types.Sunday)
		case '1':
			days = append(days, types.Monday)
		case '2':
			days = append(days, types.Tuesday)
		case '3':
			days = append(days, types.Wednesday)
		case '4':
			days = append(days, types.Thursday)
		case '5':
			days = append(days, types.Friday)
		case '6':
			days = append(days, types.Saturday)
		}
	}
	return days
}

// parseBinaryDays reads a 7-character bit string where the first bit is
// Monday. Anything that is not exactly 7 characters yields nil.
func parseBinaryDays(bits string) []types.Weekday {
	if len(bits) != 7 {
		return nil
	}
	var days []types.Weekday
	for i := 0; i < 7; i++ {
		if bits[i] == '1' {
			days = append(days, types.Weekday(i))
		}
	}
	return days
}

// clockTime validates an hour/minute pair from the wire.
func clockTime(h, m raw.Int) (int, int, error) {
	if h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("hour %d out of range", h)
	}
	if m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("minute %d out of range", m)
	}
	return int(h), int(m), nil
}

// meetingKindDays resolves the meeting's type code and day structure. A
// non-TBA special-meeting code wins over the instruction type and pins
// the meeting to its start date.
func meetingKindDays(special, instrType, dayCode, startDate string) (string, types.MeetingDays) {
	special = strings.TrimSpace(special)
	if special != "" && special != "TBA" {
		return special, types.OneTimeDay(startDate)
	}
	instrType = strings.TrimSpace(instrType)
	dayCode = strings.TrimSpace(dayCode)
	if dayCode == "" {
		return instrType, types.MeetingDays{Kind: types.DaysNone}
	}
	return instrType, types.RepeatedDays(parseDayCode(dayCode))
}

// placeholder reports whether a meeting carries no usable information:
// no day, no time, and no room. The service emits such rows for sections
// whose logistics are still TBA; they are dropped rather than surfaced
// as empty meetings.
func placeholder(m types.Meeting) bool {
	if m.Days.Kind != types.DaysNone {
		return false
	}
	if m.StartHour != 0 || m.StartMinute != 0 || m.EndHour != 0 || m.EndMinute != 0 {
		return false
	}
	b := strings.TrimSpace(m.Building)
	return b == "" || b == "TBA"
}

func gradeOptions(field, stage, key string, diags *[]types.Diagnostic) []types.GradeOption {
	field = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(field), "+"))
	if field == "" {
		return nil
	}
	g, ok := types.GradeOptionOf(field)
	if !ok {
		*diags = append(*diags, types.Diagnostic{
			Stage:  stage,
			Key:    key,
			Field:  "GRADE_OPTION",
			Reason: fmt.Sprintf("unknown grading basis %q", field),
		})
		return nil
	}
	return []types.GradeOption{g}
}

func clampSeats(n int64) int64 {
	// the service reports negative availability for over-enrolled
	// sections
	if n < 0 {
		return 0
	}
	return n
}
