// Package search builds catalog search queries. A Criteria value is
// immutable: every With method returns an updated copy, so a base query
// can be shared and specialized across goroutines without coordination.
//
// A query is either a filter search (subjects, departments, instructor,
// and so on) or an explicit section-id lookup. The two are mutually
// exclusive; mixing them is reported when the query is built, before any
// request goes out.
package search

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrConflictingModes is returned by Query when explicit section ids are
// combined with catalog filters.
var ErrConflictingModes = errors.New("search: explicit section ids cannot be combined with filters")

// Level is a course-level filter bit. Levels combine with bitwise or.
type Level uint16

const (
	Lvl500 Level = 1 << iota
	Lvl400
	Lvl300
	GraduateResearch
	GraduateIndependentStudy
	Graduate
	UpperDivisionIndependentStudy
	Apprenticeship
	UpperDivision
	LowerDivisionIndependentStudy
	FreshmenSeminar
	LowerDivision
)

// Criteria describes one catalog search. The zero value matches
// everything.
type Criteria struct {
	sections []string

	subjects    []string
	courses     []string
	departments []string
	instructor  string
	title       string
	levels      Level
	days        uint8
	startHour   int
	startMinute int
	endHour     int
	endMinute   int
	hasStart    bool
	hasEnd      bool
	onlyOpen    bool
}

// WithSections switches the criteria to explicit section-id lookup.
func (c Criteria) WithSections(ids ...string) Criteria {
	c.sections = append(append([]string(nil), c.sections...), ids...)
	return c
}

// WithSubjects restricts results to subject codes, e.g. "CSE". Codes
// longer than four characters are rejected at build time.
func (c Criteria) WithSubjects(subjects ...string) Criteria {
	c.subjects = append(append([]string(nil), c.subjects...), subjects...)
	return c
}

// WithCourses restricts results to course identifiers such as "CSE 100",
// "MATH20D", or a bare number.
func (c Criteria) WithCourses(courses ...string) Criteria {
	c.courses = append(append([]string(nil), c.courses...), courses...)
	return c
}

func (c Criteria) WithDepartments(departments ...string) Criteria {
	c.departments = append(append([]string(nil), c.departments...), departments...)
	return c
}

// WithInstructor restricts results to instructors whose name contains
// the given text.
func (c Criteria) WithInstructor(name string) Criteria {
	c.instructor = name
	return c
}

// WithTitle restricts results to courses whose title contains the given
// text.
func (c Criteria) WithTitle(title string) Criteria {
	c.title = title
	return c
}

// WithLevels restricts results to the given course levels.
func (c Criteria) WithLevels(levels Level) Criteria {
	c.levels |= levels
	return c
}

// Weekday is a day a section meets, used for day filters.
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

// WithDays restricts results to sections meeting on the given days.
func (c Criteria) WithDays(days ...Weekday) Criteria {
	for _, d := range days {
		if d >= Monday && d <= Sunday {
			c.days |= 1 << (6 - int(d))
		}
	}
	return c
}

// StartingAfter keeps only sections beginning at or after the given
// wall-clock time.
func (c Criteria) StartingAfter(hour, minute int) Criteria {
	c.startHour, c.startMinute, c.hasStart = hour, minute, true
	return c
}

// EndingBefore keeps only sections ending at or before the given
// wall-clock time.
func (c Criteria) EndingBefore(hour, minute int) Criteria {
	c.endHour, c.endMinute, c.hasEnd = hour, minute, true
	return c
}

// OnlyOpen keeps only sections with open seats.
func (c Criteria) OnlyOpen() Criteria {
	c.onlyOpen = true
	return c
}

// SectionMode reports whether the criteria is an explicit section-id
// lookup.
func (c Criteria) SectionMode() bool {
	return len(c.sections) > 0
}

func (c Criteria) filtered() bool {
	return len(c.subjects) > 0 || len(c.courses) > 0 || len(c.departments) > 0 ||
		c.instructor != "" || c.title != "" || c.levels != 0 || c.days != 0 ||
		c.hasStart || c.hasEnd || c.onlyOpen
}

// Query serializes the criteria into the service's query parameters for
// the given term. It fails, without touching the network, when section
// ids are mixed with filters or a field is malformed.
func (c Criteria) Query(term string) (url.Values, error) {
	if c.SectionMode() {
		if c.filtered() {
			return nil, ErrConflictingModes
		}
		q := url.Values{}
		q.Set("sectionid", strings.Join(c.sections, ":"))
		q.Set("termcode", term)
		return q, nil
	}

	for _, s := range c.subjects {
		if len(s) == 0 || len(s) > 4 {
			return nil, fmt.Errorf("search: invalid subject code %q", s)
		}
	}
	if c.hasStart && !validClock(c.startHour, c.startMinute) {
		return nil, fmt.Errorf("search: invalid start time %02d:%02d", c.startHour, c.startMinute)
	}
	if c.hasEnd && !validClock(c.endHour, c.endMinute) {
		return nil, fmt.Errorf("search: invalid end time %02d:%02d", c.endHour, c.endMinute)
	}

	subjects := make([]string, len(c.subjects))
	for i, s := range c.subjects {
		subjects[i] = strings.ToUpper(s)
	}

	levels := ""
	if c.levels != 0 {
		levels = fmt.Sprintf("%012b", c.levels)
	}
	days := ""
	if c.days != 0 {
		days = fmt.Sprintf("%07b", c.days)
	}

	timeStr := ""
	if c.hasStart || c.hasEnd {
		start, end := "", ""
		if c.hasStart {
			start = fmt.Sprintf("%02d%02d", c.startHour, c.startMinute)
		}
		if c.hasEnd {
			end = fmt.Sprintf("%02d%02d", c.endHour, c.endMinute)
		}
		timeStr = start + ":" + end
	}

	q := url.Values{}
	q.Set("subjcode", strings.Join(subjects, ":"))
	q.Set("crsecode", FormatCourses(c.courses))
	q.Set("department", strings.Join(c.departments, ":"))
	q.Set("professor", strings.ToUpper(c.instructor))
	q.Set("title", strings.ToUpper(c.title))
	q.Set("levels", levels)
	q.Set("days", days)
	q.Set("timestr", timeStr)
	q.Set("opensection", fmt.Sprintf("%t", c.onlyOpen))
	q.Set("isbasic", "true")
	q.Set("basicsearchvalue", "")
	q.Set("termcode", term)
	return q, nil
}

func validClock(h, m int) bool {
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

// FormatCourseNumber pads a course number the way the service expects:
// the numeric prefix is right-aligned to three characters, any letter
// suffix follows, e.g. "8B" becomes "  8B". Non-numeric input passes
// through untouched.
func FormatCourseNumber(num string) string {
	num = strings.TrimSpace(num)
	digits := 0
	for digits < len(num) && num[digits] >= '0' && num[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return num
	}
	return fmt.Sprintf("%3s", num[:digits]) + num[digits:]
}

// FormatCourses serializes course identifiers for the crsecode query
// parameter. "CSE 8B" and "cse8b" both become "CSE:  8B"; entries are
// joined by ";".
func FormatCourses(courses []string) string {
	parts := make([]string, 0, len(courses))
	for _, course := range courses {
		course = strings.TrimSpace(course)
		if course == "" {
			continue
		}

		subject, number := splitCourse(course)
		switch {
		case subject != "" && number != "":
			parts = append(parts, strings.ToUpper(subject)+":"+FormatCourseNumber(number))
		case subject != "":
			parts = append(parts, strings.ToUpper(subject))
		default:
			parts = append(parts, FormatCourseNumber(number))
		}
	}
	return strings.Join(parts, ";")
}

// splitCourse separates "CSE 8B", "CSE8B", "CSE", or "8B" into subject
// and number.
func splitCourse(course string) (string, string) {
	if i := strings.IndexByte(course, ' '); i >= 0 {
		return strings.TrimSpace(course[:i]), strings.TrimSpace(course[i+1:])
	}
	for i := 0; i < len(course); i++ {
		if course[i] >= '0' && course[i] <= '9' {
			return course[:i], course[i:]
		}
	}
	return course, ""
}
