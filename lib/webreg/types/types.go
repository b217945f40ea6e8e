// Package types holds the strict domain model produced by normalization.
// Values here are fully validated: closed enums instead of wire strings,
// structured meeting times instead of "HH:MM" fragments.
package types

// Course is one course offering within a term, with its sections in the
// order the service first mentioned them.
type Course struct {
	Subject  string
	Code     string
	Title    string
	Sections []Section
}

// Section is one enrollable unit of a course.
type Section struct {
	// ID is the term-unique section number, e.g. "260739".
	ID string
	// Code is the human section code, e.g. "A01" or "001".
	Code           string
	Instructors    []string
	EnrolledCount  int64
	AvailableSeats int64
	TotalSeats     int64
	WaitlistCount  int64
	Units          int64
	GradeOptions   []GradeOption
	// Visible reports whether the section is shown in the public
	// schedule of classes.
	Visible  bool
	Meetings []Meeting
}

// HasSeats reports whether an enroll request for this section could
// plausibly succeed right now. A free seat behind a non-empty waitlist
// is not enrollable; the service hands it to the waitlist first.
func (s Section) HasSeats() bool {
	return s.AvailableSeats > 0 && s.WaitlistCount == 0
}

// Meeting is a single scheduled obligation of a section.
type Meeting struct {
	Kind MeetingKind
	// Code is the raw instruction-type or special-meeting code from the
	// wire ("LE", "FI", ...). Kept so callers can distinguish codes that
	// all map to KindOther.
	Code        string
	Days        MeetingDays
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	Building    string
	Room        string
	Instructors []string
}

type MeetingKind int

const (
	KindOther MeetingKind = iota
	KindLecture
	KindDiscussion
	KindLab
	KindSeminar
	KindFinal
	KindMidterm
)

func (k MeetingKind) String() string {
	switch k {
	case KindLecture:
		return "lecture"
	case KindDiscussion:
		return "discussion"
	case KindLab:
		return "lab"
	case KindSeminar:
		return "seminar"
	case KindFinal:
		return "final"
	case KindMidterm:
		return "midterm"
	default:
		return "other"
	}
}

// meetingKinds maps WebReg instruction-type codes to kinds. Codes not
// listed here normalize to KindOther with the code preserved.
var meetingKinds = map[string]MeetingKind{
	"LE": KindLecture,
	"DI": KindDiscussion,
	"LA": KindLab,
	"SE": KindSeminar,
	"FI": KindFinal,
	"MI": KindMidterm,
}

// MeetingKindOf resolves a wire instruction-type code. ok is false for
// codes outside the known set.
func MeetingKindOf(code string) (MeetingKind, bool) {
	k, ok := meetingKinds[code]
	if !ok {
		return KindOther, false
	}
	return k, true
}

// DaysKind discriminates the MeetingDays union.
type DaysKind int

const (
	// DaysNone is a meeting with no day information at all (TBA).
	DaysNone DaysKind = iota
	// DaysRepeated recurs weekly on Weekdays.
	DaysRepeated
	// DaysOneTime happens once, on Date.
	DaysOneTime
)

// MeetingDays is a tagged union: a weekly repetition, a single dated
// occurrence, or nothing known.
type MeetingDays struct {
	Kind     DaysKind
	Weekdays []Weekday
	// Date is the service's date string (e.g. "2022-02-02") when Kind
	// is DaysOneTime.
	Date string
}

func RepeatedDays(days []Weekday) MeetingDays {
	return MeetingDays{Kind: DaysRepeated, Weekdays: days}
}

func OneTimeDay(date string) MeetingDays {
	return MeetingDays{Kind: DaysOneTime, Date: date}
}

type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

func (d Weekday) String() string {
	switch d {
	case Monday:
		return "M"
	case Tuesday:
		return "Tu"
	case Wednesday:
		return "W"
	case Thursday:
		return "Th"
	case Friday:
		return "F"
	case Saturday:
		return "Sa"
	case Sunday:
		return "Su"
	}
	return "?"
}

// GradeOption is a grading basis a student can elect.
type GradeOption int

const (
	GradeLetter GradeOption = iota
	GradePassNoPass
	GradeSatUnsat
)

func (g GradeOption) String() string {
	switch g {
	case GradePassNoPass:
		return "P"
	case GradeSatUnsat:
		return "S"
	default:
		return "L"
	}
}

var gradeOptions = map[string]GradeOption{
	"L": GradeLetter,
	"P": GradePassNoPass,
	"S": GradeSatUnsat,
}

// GradeOptionOf resolves a wire grading-basis string. ok is false for
// strings outside the known set.
func GradeOptionOf(s string) (GradeOption, bool) {
	g, ok := gradeOptions[s]
	return g, ok
}

// StatusKind is the student's relationship to a scheduled section.
type StatusKind int

const (
	StatusUnknown StatusKind = iota
	StatusEnrolled
	StatusWaitlisted
	StatusPlanned
)

func (k StatusKind) String() string {
	switch k {
	case StatusEnrolled:
		return "enrolled"
	case StatusWaitlisted:
		return "waitlisted"
	case StatusPlanned:
		return "planned"
	default:
		return "unknown"
	}
}

var statusKinds = map[string]StatusKind{
	"EN": StatusEnrolled,
	"WT": StatusWaitlisted,
	"PL": StatusPlanned,
}

func StatusKindOf(s string) (StatusKind, bool) {
	k, ok := statusKinds[s]
	return k, ok
}

// EnrollmentStatus carries the status kind plus the waitlist position
// when waitlisted.
type EnrollmentStatus struct {
	Kind StatusKind
	// WaitlistPosition is 1-based and only meaningful when Kind is
	// StatusWaitlisted.
	WaitlistPosition int64
}

// ScheduledSection is one row of a student's personal schedule.
type ScheduledSection struct {
	ID          string
	Subject     string
	CourseCode  string
	Code        string
	Title       string
	Units       int64
	GradeOption GradeOption
	Status      EnrollmentStatus

	EnrolledCount  int64
	AvailableSeats int64
	TotalSeats     int64
	WaitlistCount  int64

	Instructors []string
	Meetings    []Meeting
}

// SearchResultItem is one hit of a catalog search; a pointer into the
// catalog, not a full course.
type SearchResultItem struct {
	Subject string
	Code    string
	Title   string
}

// Term is one registration term known to the service.
type Term struct {
	SeqID int64
	Code  string
}

// Event is a custom calendar block on the student's schedule.
type Event struct {
	Name        string
	Location    string
	Days        []Weekday
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	// Timestamp is the service's opaque key for the event, used to edit
	// or remove it.
	Timestamp string
}

// CoursePrerequisite is one course that can satisfy a prerequisite slot.
type CoursePrerequisite struct {
	Subject string
	Code    string
	Title   string
}

// PrerequisiteInfo groups prerequisites the way the service states them:
// each inner slice is a set of alternatives, all outer slices must be
// satisfied, and exams can substitute independently.
type PrerequisiteInfo struct {
	CoursePrerequisites [][]CoursePrerequisite
	ExamPrerequisites   []string
}
