package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/raw"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"
)

func scheduleMeeting(row raw.ScheduledMeeting, days types.MeetingDays, diags *[]types.Diagnostic) (types.Meeting, bool) {
	sh, sm, err := clockTime(row.BeginHour, row.BeginMinute)
	if err == nil {
		var eh, em int
		eh, em, err = clockTime(row.EndHour, row.EndMinute)
		if err == nil {
			code := strings.TrimSpace(row.MeetingType)
			if days.Kind == types.DaysOneTime {
				if sp := strings.TrimSpace(row.SpecialMeeting); sp != "" && sp != "TBA" {
					code = sp
				}
			}
			kind, _ := types.MeetingKindOf(code)
			return types.Meeting{
				Kind:        kind,
				Code:        code,
				Days:        days,
				StartHour:   sh,
				StartMinute: sm,
				EndHour:     eh,
				EndMinute:   em,
				Building:    strings.TrimSpace(row.Building),
				Room:        strings.TrimSpace(row.Room),
				Instructors: instructorNames(row.Instructors),
			}, true
		}
	}
	*diags = append(*diags, types.Diagnostic{
		Stage:  "schedule",
		Key:    strings.TrimSpace(row.SectCode),
		Field:  "BEGIN_HH_TIME",
		Reason: err.Error(),
	})
	return types.Meeting{}, false
}

func enrollmentStatus(row raw.ScheduledMeeting, diags *[]types.Diagnostic) types.EnrollmentStatus {
	kind, ok := types.StatusKindOf(strings.TrimSpace(row.EnrollStatus))
	if !ok {
		*diags = append(*diags, types.Diagnostic{
			Stage:  "schedule",
			Key:    strings.TrimSpace(row.SectCode),
			Field:  "ENROLL_STATUS",
			Reason: fmt.Sprintf("unknown enrollment status %q", row.EnrollStatus),
		})
		return types.EnrollmentStatus{Kind: types.StatusUnknown}
	}

	status := types.EnrollmentStatus{Kind: kind}
	if kind == types.StatusWaitlisted {
		pos, err := strconv.ParseInt(strings.TrimSpace(row.WaitlistPos), 10, 64)
		if err != nil {
			*diags = append(*diags, types.Diagnostic{
				Stage:  "schedule",
				Key:    strings.TrimSpace(row.SectCode),
				Field:  "WT_POS",
				Reason: fmt.Sprintf("unreadable waitlist position %q", row.WaitlistPos),
			})
		} else {
			status.WaitlistPosition = pos
		}
	}
	return status
}

func scheduleGradeOption(row raw.ScheduledMeeting, diags *[]types.Diagnostic) types.GradeOption {
	field := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(row.GradeOption), "+"))
	g, ok := types.GradeOptionOf(field)
	if !ok && field != "" {
		*diags = append(*diags, types.Diagnostic{
			Stage:  "schedule",
			Key:    strings.TrimSpace(row.SectCode),
			Field:  "GRADE_OPTION",
			Reason: fmt.Sprintf("unknown grading basis %q", field),
		})
	}
	return g
}

// mainMeetingRow reports whether the row is the section's shared weekly
// meeting: an X00 code with no real special-meeting marker.
func mainMeetingRow(row raw.ScheduledMeeting) bool {
	return strings.HasSuffix(strings.TrimSpace(row.SectCode), "00") &&
		strings.TrimSpace(strings.ReplaceAll(row.SpecialMeeting, "TBA", "")) == ""
}

// Schedule normalizes a student's personal class schedule. Rows group
// into sections by course; a section whose rows never include seat
// counts is demoted to a diagnostic instead of failing the batch.
func Schedule(rows []raw.ScheduledMeeting) ([]types.ScheduledSection, []types.Diagnostic) {
	var diags []types.Diagnostic

	type group struct {
		special bool
		rows    []raw.ScheduledMeeting
	}
	var order []string
	groups := map[string]*group{}

	for _, row := range rows {
		// phantom rows: the service keeps dropped sections around
		// with zeroed counts
		if row.EnrolledCount != nil && *row.EnrolledCount == 0 &&
			row.TotalSeats != nil && *row.TotalSeats == 0 {
			continue
		}
		sectCode := strings.TrimSpace(row.SectCode)
		if sectCode == "" {
			continue
		}

		special := sectCode[0] >= '0' && sectCode[0] <= '9'
		key := strings.TrimSpace(row.CourseTitle)
		if special {
			key = "special:" + key
		}

		g, ok := groups[key]
		if !ok {
			g = &group{special: special}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}

	var out []types.ScheduledSection
	for _, key := range order {
		g := groups[key]
		var sect *types.ScheduledSection
		if g.special {
			sect = specialScheduled(g.rows, &diags)
		} else {
			sect = regularScheduled(g.rows, &diags)
		}
		if sect != nil {
			out = append(out, *sect)
		}
	}
	return out, diags
}

func regularScheduled(rows []raw.ScheduledMeeting, diags *[]types.Diagnostic) *types.ScheduledSection {
	// the row carrying seat counts is the authoritative one
	var main *raw.ScheduledMeeting
	for i := range rows {
		if rows[i].EnrolledCount != nil && rows[i].TotalSeats != nil {
			main = &rows[i]
			break
		}
	}
	if main == nil {
		*diags = append(*diags, types.Diagnostic{
			Stage:  "schedule",
			Key:    strings.TrimSpace(rows[0].SectCode),
			Reason: "no row carries seat counts",
		})
		return nil
	}

	var meetings []types.Meeting
	var instructorLists [][]string
	for _, row := range rows {
		instructorLists = append(instructorLists, instructorNames(row.Instructors))

		sectCode := strings.TrimSpace(row.SectCode)
		var days types.MeetingDays
		switch {
		case mainMeetingRow(row):
			dayCode := strings.TrimSpace(row.DayCode)
			if dayCode == "" {
				days = types.MeetingDays{Kind: types.DaysNone}
			} else {
				days = types.RepeatedDays(parseDayCode(dayCode))
			}
		case strings.HasSuffix(sectCode, "00"):
			// X00 with a special-meeting marker: final or midterm
			// on a fixed date
			days = types.OneTimeDay(strings.TrimSpace(row.StartDate))
		default:
			days = types.RepeatedDays(parseDayCode(strings.TrimSpace(row.DayCode)))
		}

		if m, ok := scheduleMeeting(row, days, diags); ok {
			meetings = append(meetings, m)
		}
	}

	// prefer the enrollable child code over the shared X00 code
	sectCode := strings.TrimSpace(main.SectCode)
	for _, row := range rows {
		if c := strings.TrimSpace(row.SectCode); !strings.HasSuffix(c, "00") {
			sectCode = c
			break
		}
	}

	enrolled := *main.EnrolledCount
	capacity := *main.TotalSeats
	sect := scheduledFromRow(*main, diags)
	sect.Code = sectCode
	sect.EnrolledCount = enrolled
	sect.TotalSeats = capacity
	sect.AvailableSeats = clampSeats(capacity - enrolled)
	sect.Instructors = mergeInstructors(instructorLists...)
	sect.Meetings = meetings
	return sect
}

// specialScheduled handles numeric-coded sections, which have exactly
// one logical meeting whose day codes may be spread over several rows.
func specialScheduled(rows []raw.ScheduledMeeting, diags *[]types.Diagnostic) *types.ScheduledSection {
	first := rows[0]

	var dayCode strings.Builder
	var instructorLists [][]string
	for _, row := range rows {
		dayCode.WriteString(strings.TrimSpace(row.DayCode))
		instructorLists = append(instructorLists, instructorNames(row.Instructors))
	}

	days := types.MeetingDays{Kind: types.DaysNone}
	if dayCode.Len() > 0 {
		days = types.RepeatedDays(parseDayCode(dayCode.String()))
	}

	var meetings []types.Meeting
	if m, ok := scheduleMeeting(first, days, diags); ok {
		meetings = append(meetings, m)
	}

	enrolled := int64(-1)
	if first.EnrolledCount != nil {
		enrolled = *first.EnrolledCount
	}
	capacity := int64(-1)
	if first.TotalSeats != nil {
		capacity = *first.TotalSeats
	}

	sect := scheduledFromRow(first, diags)
	sect.EnrolledCount = enrolled
	sect.TotalSeats = capacity
	sect.AvailableSeats = clampSeats(capacity - enrolled)
	sect.Instructors = mergeInstructors(instructorLists...)
	sect.Meetings = meetings
	return sect
}

func scheduledFromRow(row raw.ScheduledMeeting, diags *[]types.Diagnostic) *types.ScheduledSection {
	waitlist := int64(0)
	if row.WaitlistCount != nil {
		waitlist = *row.WaitlistCount
	}
	return &types.ScheduledSection{
		ID:            row.SectionID.Trimmed(),
		Subject:       strings.TrimSpace(row.Subject),
		CourseCode:    strings.TrimSpace(row.CourseCode),
		Code:          strings.TrimSpace(row.SectCode),
		Title:         strings.TrimSpace(row.CourseTitle),
		Units:         int64(row.Units),
		GradeOption:   scheduleGradeOption(row, diags),
		Status:        enrollmentStatus(row, diags),
		WaitlistCount: waitlist,
	}
}
