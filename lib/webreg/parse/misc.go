package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/raw"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"
)

// hhmm reads a 4-digit wall-clock string such as "1430".
func hhmm(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, 0, fmt.Errorf("time %q is not HHMM", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(s[2:])
	if err != nil || m > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return h, m, nil
}

// Events normalizes custom calendar events. An event with unreadable
// times is dropped with a diagnostic.
func Events(rows []raw.Event) ([]types.Event, []types.Diagnostic) {
	var out []types.Event
	var diags []types.Diagnostic
	for _, row := range rows {
		sh, sm, err := hhmm(row.StartTime)
		if err == nil {
			var eh, em int
			eh, em, err = hhmm(row.EndTime)
			if err == nil {
				out = append(out, types.Event{
					Name:        row.Name,
					Location:    row.Location,
					Days:        parseBinaryDays(strings.TrimSpace(row.Days)),
					StartHour:   sh,
					StartMinute: sm,
					EndHour:     eh,
					EndMinute:   em,
					Timestamp:   row.Timestamp,
				})
				continue
			}
		}
		diags = append(diags, types.Diagnostic{
			Stage:  "events",
			Key:    row.Name,
			Field:  "START_TIME",
			Reason: err.Error(),
		})
	}
	return out, diags
}

// Prerequisites groups prerequisite rows the way the service states
// them: course rows sharing a sequence id are alternatives for one
// requirement, exam rows stand alone. Requirement groups keep the order
// their sequence ids first appeared.
func Prerequisites(rows []raw.Prerequisite) types.PrerequisiteInfo {
	var info types.PrerequisiteInfo

	var order []string
	groups := map[string][]types.CoursePrerequisite{}

	for _, row := range rows {
		if row.IsTest() {
			info.ExamPrerequisites = append(info.ExamPrerequisites, strings.TrimSpace(row.TestTitle))
			continue
		}
		if row.SeqID == "" {
			continue
		}
		if _, ok := groups[row.SeqID]; !ok {
			order = append(order, row.SeqID)
		}
		groups[row.SeqID] = append(groups[row.SeqID], types.CoursePrerequisite{
			Subject: strings.TrimSpace(row.Subject),
			Code:    strings.TrimSpace(row.CourseCode),
			Title:   strings.TrimSpace(row.CourseTitle),
		})
	}

	for _, seq := range order {
		info.CoursePrerequisites = append(info.CoursePrerequisites, groups[seq])
	}
	return info
}
