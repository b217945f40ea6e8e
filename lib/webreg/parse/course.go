package parse

import (
	"strings"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/raw"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"
)

// courseMeeting converts one wire row into a domain meeting. ok is false
// when the row's time fields are out of range; the caller records the
// diagnostic and drops just this meeting.
func courseMeeting(row raw.CourseMeeting, diags *[]types.Diagnostic) (types.Meeting, bool) {
	code, days := meetingKindDays(row.SpecialMeeting, row.MeetingType, row.DayCode, row.StartDate)
	sh, sm, err := clockTime(row.BeginHour, row.BeginMinute)
	if err == nil {
		var eh, em int
		eh, em, err = clockTime(row.EndHour, row.EndMinute)
		if err == nil {
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
		Stage:  "course",
		Key:    strings.TrimSpace(row.SectCode),
		Field:  "BEGIN_HH_TIME",
		Reason: err.Error(),
	})
	return types.Meeting{}, false
}

func visible(printFlag string) bool {
	return strings.TrimSpace(printFlag) != "N"
}

// courseGroup accumulates the rows of one course while preserving the
// order in which its section families first appeared.
type courseGroup struct {
	subject string
	code    string
	title   string

	order []string
	fams  map[string]*sectionFamily
}

// sectionFamily is either a standalone numeric section (one row) or a
// lettered family: shared meetings (lecture, final) plus the per-section
// child meetings students actually enroll in.
type sectionFamily struct {
	standalone *raw.CourseMeeting
	general    []raw.CourseMeeting
	children   []raw.CourseMeeting
}

// Courses groups schedule-of-classes rows into courses and sections.
// Grouping is stable: courses, families, and sections come out in the
// order the service first mentioned them. fallbackSubject and
// fallbackCode fill in for responses that omit the course identity on
// each row.
func Courses(rows []raw.CourseMeeting, fallbackSubject, fallbackCode string) ([]types.Course, []types.Diagnostic) {
	var diags []types.Diagnostic

	var courseOrder []string
	courses := map[string]*courseGroup{}

	for _, row := range rows {
		sectCode := strings.TrimSpace(row.SectCode)
		// canceled sections and codeless rows carry nothing usable
		if row.DisplayType == "CA" || sectCode == "" {
			continue
		}

		subject := strings.TrimSpace(row.Subject)
		if subject == "" {
			subject = fallbackSubject
		}
		code := strings.TrimSpace(row.CourseCode)
		if code == "" {
			code = fallbackCode
		}
		courseKey := subject + " " + code

		grp, ok := courses[courseKey]
		if !ok {
			grp = &courseGroup{
				subject: subject,
				code:    code,
				fams:    map[string]*sectionFamily{},
			}
			courses[courseKey] = grp
			courseOrder = append(courseOrder, courseKey)
		}
		if grp.title == "" {
			grp.title = strings.TrimSpace(row.CourseTitle)
		}

		// numeric-leading codes ("001") are standalone special
		// sections with exactly one meeting
		if sectCode[0] >= '0' && sectCode[0] <= '9' {
			r := row
			grp.order = append(grp.order, sectCode)
			grp.fams[sectCode] = &sectionFamily{standalone: &r}
			continue
		}

		famKey := sectCode[:1]
		fam, ok := grp.fams[famKey]
		if !ok {
			fam = &sectionFamily{}
			grp.fams[famKey] = fam
			grp.order = append(grp.order, famKey)
		}

		switch {
		case strings.HasSuffix(sectCode, "00"):
			// X00 rows are shared across the family: lectures,
			// finals, and similar
			fam.general = append(fam.general, row)
		case row.DisplayType == "AC":
			fam.children = append(fam.children, row)
		case row.DisplayType == "NC":
			// non-enrollable numbered meetings (e.g. mandatory
			// discussions alongside enrollable labs) still apply
			// to every section in the family
			fam.general = append(fam.general, row)
		}
	}

	var out []types.Course
	for _, courseKey := range courseOrder {
		grp := courses[courseKey]
		course := types.Course{
			Subject: grp.subject,
			Code:    grp.code,
			Title:   grp.title,
		}

		for _, famKey := range grp.order {
			fam := grp.fams[famKey]
			course.Sections = append(course.Sections, buildSections(courseKey, fam, &diags)...)
		}

		out = append(out, course)
	}

	return out, diags
}

func buildSections(courseKey string, fam *sectionFamily, diags *[]types.Diagnostic) []types.Section {
	if fam.standalone != nil {
		row := *fam.standalone
		sect := sectionFromRow(row, diags)
		if m, ok := courseMeeting(row, diags); ok && !placeholder(m) {
			sect.Meetings = append(sect.Meetings, m)
		}
		return []types.Section{sect}
	}

	if len(fam.general) == 0 {
		key := courseKey
		if len(fam.children) > 0 {
			key = strings.TrimSpace(fam.children[0].SectCode)
		}
		*diags = append(*diags, types.Diagnostic{
			Stage:  "course",
			Key:    key,
			Reason: "section family has no shared meeting row",
		})
		return nil
	}

	generalMeetings := func() []types.Meeting {
		var ms []types.Meeting
		for _, g := range fam.general {
			if m, ok := courseMeeting(g, diags); ok && !placeholder(m) {
				ms = append(ms, m)
			}
		}
		return ms
	}

	// lecture-only family: the X00 row is itself the enrollable section
	if len(fam.children) == 0 {
		sect := sectionFromRow(fam.general[0], diags)
		sect.Meetings = generalMeetings()
		return []types.Section{sect}
	}

	var baseInstructors [][]string
	for _, g := range fam.general {
		baseInstructors = append(baseInstructors, instructorNames(g.Instructors))
	}

	var out []types.Section
	for _, child := range fam.children {
		sect := sectionFromRow(child, diags)
		sect.Instructors = mergeInstructors(append(baseInstructors, instructorNames(child.Instructors))...)
		sect.Meetings = generalMeetings()
		if m, ok := courseMeeting(child, diags); ok && !placeholder(m) {
			sect.Meetings = append(sect.Meetings, m)
		}
		out = append(out, sect)
	}
	return out
}

// sectionFromRow fills the seat-count and identity fields from the row
// that owns them.
func sectionFromRow(row raw.CourseMeeting, diags *[]types.Diagnostic) types.Section {
	sectCode := strings.TrimSpace(row.SectCode)
	return types.Section{
		ID:             strings.TrimSpace(row.SectionID.String()),
		Code:           sectCode,
		Instructors:    mergeInstructors(instructorNames(row.Instructors)),
		EnrolledCount:  row.EnrolledCount,
		AvailableSeats: clampSeats(row.AvailableSeats),
		TotalSeats:     row.TotalSeats,
		WaitlistCount:  row.WaitlistCount,
		Units:          int64(row.Units),
		GradeOptions:   gradeOptions(row.GradeOption, "course", sectCode, diags),
		Visible:        visible(row.PrintFlag),
	}
}

// EnrollmentCounts extracts just the seat counts from schedule-of-classes
// rows. Sections carry no meetings; duplicate rows for the same section
// code (a lecture and its final both marked enrollable) collapse into
// one.
func EnrollmentCounts(rows []raw.CourseMeeting, fallbackSubject, fallbackCode string) ([]types.Course, []types.Diagnostic) {
	var diags []types.Diagnostic

	var courseOrder []string
	courses := map[string]*types.Course{}
	seen := map[string]bool{}

	for _, row := range rows {
		if row.DisplayType != "AC" {
			continue
		}
		sectCode := strings.TrimSpace(row.SectCode)
		if sectCode == "" {
			continue
		}

		subject := strings.TrimSpace(row.Subject)
		if subject == "" {
			subject = fallbackSubject
		}
		code := strings.TrimSpace(row.CourseCode)
		if code == "" {
			code = fallbackCode
		}
		courseKey := subject + " " + code
		if seen[courseKey+"/"+sectCode] {
			continue
		}
		seen[courseKey+"/"+sectCode] = true

		grp, ok := courses[courseKey]
		if !ok {
			grp = &types.Course{
				Subject: subject,
				Code:    code,
				Title:   strings.TrimSpace(row.CourseTitle),
			}
			courses[courseKey] = grp
			courseOrder = append(courseOrder, courseKey)
		}

		grp.Sections = append(grp.Sections, sectionFromRow(row, &diags))
	}

	out := make([]types.Course, 0, len(courseOrder))
	for _, k := range courseOrder {
		out = append(out, *courses[k])
	}
	return out, diags
}

// SearchResults converts search hits, dropping rows with no course
// identity.
func SearchResults(rows []raw.SearchResultItem) []types.SearchResultItem {
	out := make([]types.SearchResultItem, 0, len(rows))
	for _, r := range rows {
		subject := strings.TrimSpace(r.Subject)
		code := strings.TrimSpace(r.Code)
		if subject == "" && code == "" {
			continue
		}
		out = append(out, types.SearchResultItem{
			Subject: subject,
			Code:    code,
			Title:   strings.TrimSpace(r.Title),
		})
	}
	return out
}

// Terms converts the term list, dropping rows without a code.
func Terms(rows []raw.TermListItem) []types.Term {
	out := make([]types.Term, 0, len(rows))
	for _, r := range rows {
		code := strings.TrimSpace(r.Code)
		if code == "" {
			continue
		}
		out = append(out, types.Term{SeqID: r.SeqID, Code: code})
	}
	return out
}
