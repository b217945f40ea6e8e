// Package raw mirrors the JSON the registration service actually sends.
// Shapes here are deliberately permissive: every field is optional, names
// are the service's own SCREAMING_SNAKE keys, and values that arrive as
// either a string or a number decode through flexible types. Validation
// happens later, in parse.
package raw

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SectionID decodes a section number that the service sends as a string
// on some endpoints and a bare integer on others.
type SectionID string

func (s *SectionID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = SectionID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = SectionID(n.String())
	return nil
}

func (s SectionID) String() string { return string(s) }

// Trimmed returns the id without leading zeros, the form the schedule
// endpoint uses.
func (s SectionID) Trimmed() string {
	t := string(s)
	for len(t) > 1 && t[0] == '0' {
		t = t[1:]
	}
	return t
}

// Int decodes an integer field that may arrive as a number, a numeric
// string, or be absent. Negative values pass through; range validation
// is parse's job.
type Int int64

func (i *Int) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*i = 0
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			*i = 0
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*i = Int(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		// some endpoints send times as floats
		var f float64
		if ferr := json.Unmarshal(b, &f); ferr != nil {
			return err
		}
		n = int64(f)
	}
	*i = Int(n)
	return nil
}

// Float decodes a numeric field that may arrive as a number, a numeric
// string, or be absent.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if v == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*f = Float(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = Float(n)
	return nil
}

// CourseMeeting is one row of the public schedule-of-classes group data.
// Each row is a single meeting; rows sharing a SECT_CODE describe one
// section.
type CourseMeeting struct {
	SectionID      SectionID `json:"SECTION_NUMBER"`
	SectCode       string    `json:"SECT_CODE"`
	Subject        string    `json:"SUBJ_CODE"`
	CourseCode     string    `json:"CRSE_CODE"`
	CourseTitle    string    `json:"CRSE_TITLE"`
	DayCode        string    `json:"DAY_CODE"`
	BeginHour      Int       `json:"BEGIN_HH_TIME"`
	BeginMinute    Int       `json:"BEGIN_MM_TIME"`
	EndHour        Int       `json:"END_HH_TIME"`
	EndMinute      Int       `json:"END_MM_TIME"`
	Building       string    `json:"BLDG_CODE"`
	Room           string    `json:"ROOM_CODE"`
	Instructors    string    `json:"PERSON_FULL_NAME"`
	MeetingType    string    `json:"FK_CDI_INSTR_TYPE"`
	SpecialMeeting string    `json:"FK_SPM_SPCL_MTG_CD"`
	DisplayType    string    `json:"DISPLAY_TYPE"`
	PrintFlag      string    `json:"PRINT_FLAG"`
	AvailableSeats int64     `json:"AVAIL_SEAT"`
	EnrolledCount  int64     `json:"SCTN_ENRLT_QTY"`
	TotalSeats     int64     `json:"SCTN_CPCTY_QTY"`
	WaitlistCount  int64     `json:"COUNT_ON_WAITLIST"`
	StopEnrollFlag string    `json:"STP_ENRLT_FLAG"`
	GradeOption    string    `json:"GRADE_OPTION"`
	Units          Float     `json:"SECT_CREDIT_HRS"`
	SectionStart   string    `json:"SECTION_START_DATE"`
	StartDate      string    `json:"START_DATE"`
}

// ScheduledMeeting is one row of a student's personal schedule. Seat
// counts are pointers: the service puts them on exactly one row per
// section and omits them elsewhere.
type ScheduledMeeting struct {
	SectionID      SectionID `json:"SECTION_NUMBER"`
	SectCode       string    `json:"SECT_CODE"`
	Subject        string    `json:"SUBJ_CODE"`
	CourseCode     string    `json:"CRSE_CODE"`
	CourseTitle    string    `json:"CRSE_TITLE"`
	GradeOption    string    `json:"GRADE_OPTION"`
	Units          Float     `json:"SECT_CREDIT_HRS"`
	EnrollStatus   string    `json:"ENROLL_STATUS"`
	WaitlistPos    string    `json:"WT_POS"`
	DayCode        string    `json:"DAY_CODE"`
	BeginHour      Int       `json:"BEGIN_HH_TIME"`
	BeginMinute    Int       `json:"BEGIN_MM_TIME"`
	EndHour        Int       `json:"END_HH_TIME"`
	EndMinute      Int       `json:"END_MM_TIME"`
	Building       string    `json:"BLDG_CODE"`
	Room           string    `json:"ROOM_CODE"`
	Instructors    string    `json:"PERSON_FULL_NAME"`
	MeetingType    string    `json:"FK_CDI_INSTR_TYPE"`
	SpecialMeeting string    `json:"FK_SPM_SPCL_MTG_CD"`
	EnrolledCount  *int64    `json:"SCTN_ENRLT_QTY"`
	TotalSeats     *int64    `json:"SCTN_CPCTY_QTY"`
	AvailableSeats *int64    `json:"AVAIL_SEAT"`
	WaitlistCount  *int64    `json:"COUNT_ON_WAITLIST"`
	SectionStart   string    `json:"SECTION_START_DATE"`
	StartDate      string    `json:"START_DATE"`
}

// SearchResultItem is one hit of search-by-all.
type SearchResultItem struct {
	Subject string `json:"SUBJ_CODE"`
	Code    string `json:"CRSE_CODE"`
	Title   string `json:"CRSE_TITLE"`
}

// TermListItem is one row of get-term.
type TermListItem struct {
	SeqID int64  `json:"SEQ_ID"`
	Code  string `json:"TERM_CODE"`
}

type DepartmentElement struct {
	Code string `json:"DEP_CODE"`
}

type SubjectElement struct {
	Code string `json:"SUBJECT_CODE"`
}

// Event is one row of event-get.
type Event struct {
	Name      string `json:"DESCRIPTION"`
	Location  string `json:"LOCATION"`
	Days      string `json:"DAYS"`
	StartTime string `json:"START_TIME"`
	EndTime   string `json:"END_TIME"`
	Timestamp string `json:"TIME_STAMP"`
}

// Prerequisite is one row of get-prerequisites. The service mixes two
// row shapes in one array: course rows carry a PREREQ_SEQ_ID, exam rows
// carry a TEST_TITLE. Discrimination happens by field presence.
type Prerequisite struct {
	Subject     string `json:"SUBJECT_CODE"`
	CourseCode  string `json:"COURSE_CODE"`
	CourseTitle string `json:"CRSE_TITLE"`
	SeqID       string `json:"PREREQ_SEQ_ID"`
	TestTitle   string `json:"TEST_TITLE"`
	Type        string `json:"TYPE"`
}

// IsTest reports whether the row describes an exam prerequisite rather
// than a course.
func (p Prerequisite) IsTest() bool {
	return p.TestTitle != "" && p.SeqID == ""
}
