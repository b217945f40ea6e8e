package webreg

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/parse"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/raw"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/search"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"

	"go.opentelemetry.io/otel/codes"
)


// logDiagnostics surfaces normalization warnings without failing the
// read that produced them.
func logDiagnostics(ctx context.Context, op string, diags []types.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	slog.WarnContext(ctx, "some rows were not fully normalized", "op", op, "count", len(diags))
}

// CheckSession reports whether the service still accepts the session's
// credential. The service treats this as a keepalive: sessions that
// never ping eventually expire.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "CheckSession")
	defer span.End()

	body, err := c.getText(ctx, epPingServer, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ping failed")
		return false, err
	}

	var res struct {
		SessionOK bool `json:"SESSION_OK"`
	}
	if err := json.Unmarshal([]byte(unwrapJSON(body)), &res); err != nil {
		return false, wrapError(KindMalformedResponse, "unexpected ping response", err)
	}

	c.session.setValid(res.SessionOK)
	return res.SessionOK, nil
}

// AccountName returns the name the service has on file for the session's
// owner.
func (c *Client) AccountName(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "AccountName")
	defer span.End()

	body, err := c.getText(ctx, epAccountName, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "account name fetch failed")
		return "", err
	}
	return strings.TrimSpace(unwrapJSON(body)), nil
}

// Terms lists every term the service currently knows about.
func (c *Client) Terms(ctx context.Context) ([]types.Term, error) {
	ctx, span := tracer.Start(ctx, "Terms")
	defer span.End()

	rows, err := getJSON[[]raw.TermListItem](ctx, c, epTermList, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "term list fetch failed")
		return nil, err
	}
	return parse.Terms(rows), nil
}

// AssociateTerm binds the session's credential to a term. Endpoints
// under /secure reject a session until its term is associated; the
// binding is the two-step status/eligibility dance the web client does
// on login.
func (c *Client) AssociateTerm(ctx context.Context, term string) error {
	ctx, span := tracer.Start(ctx, "AssociateTerm")
	defer span.End()

	term = strings.ToUpper(strings.TrimSpace(term))
	seqID := TermSeqID(term)
	if seqID == 0 {
		return newError(KindInvalidRequest, "unrecognized term code "+term)
	}

	q := url.Values{}
	q.Set("termcode", term)
	q.Set("seqid", seqID.String())
	if _, err := c.getText(ctx, epStatusStart, q); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "status-start failed")
		return err
	}

	q = url.Values{}
	q.Set("termcode", term)
	q.Set("seqid", seqID.String())
	q.Set("logged", "true")
	if _, err := c.getText(ctx, epEligibility, q); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "eligibility check failed")
		return err
	}
	return nil
}

// AssociateAllTerms binds the session to every term the service lists.
func (c *Client) AssociateAllTerms(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "AssociateAllTerms")
	defer span.End()

	terms, err := c.Terms(ctx)
	if err != nil {
		return err
	}
	for _, t := range terms {
		if err := c.AssociateTerm(ctx, t.Code); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) courseQuery(subject, number string) url.Values {
	q := url.Values{}
	q.Set("subjcode", strings.ToUpper(strings.TrimSpace(subject)))
	q.Set("crsecode", search.FormatCourseNumber(number))
	q.Set("termcode", c.session.Term())
	return q
}

// Courses fetches and normalizes the schedule-of-classes data for one
// course, e.g. Courses(ctx, "CSE", "100"). Sections come back grouped in
// the order the service first mentioned them; rows that could not be
// fully represented surface as diagnostics, never as a failed batch.
func (c *Client) Courses(ctx context.Context, subject, number string) ([]types.Course, []types.Diagnostic, error) {
	ctx, span := tracer.Start(ctx, "Courses")
	defer span.End()

	rows, err := getJSON[[]raw.CourseMeeting](ctx, c, epCourseData, c.courseQuery(subject, number))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "course data fetch failed")
		return nil, nil, err
	}

	courses, diags := parse.Courses(rows, strings.ToUpper(strings.TrimSpace(subject)), strings.TrimSpace(number))
	logDiagnostics(ctx, "Courses", diags)
	return courses, diags, nil
}

// EnrollmentCounts fetches just the seat counts for one course. Cheaper
// to poll than Courses; the resulting sections carry no meetings.
func (c *Client) EnrollmentCounts(ctx context.Context, subject, number string) ([]types.Course, []types.Diagnostic, error) {
	ctx, span := tracer.Start(ctx, "EnrollmentCounts")
	defer span.End()

	rows, err := getJSON[[]raw.CourseMeeting](ctx, c, epCourseData, c.courseQuery(subject, number))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "course data fetch failed")
		return nil, nil, err
	}

	courses, diags := parse.EnrollmentCounts(rows, strings.ToUpper(strings.TrimSpace(subject)), strings.TrimSpace(number))
	logDiagnostics(ctx, "EnrollmentCounts", diags)
	return courses, diags, nil
}

// RawCourses returns the untouched JSON for one course's
// schedule-of-classes data.
func (c *Client) RawCourses(ctx context.Context, subject, number string) (string, error) {
	ctx, span := tracer.Start(ctx, "RawCourses")
	defer span.End()

	return c.getText(ctx, epCourseData, c.courseQuery(subject, number))
}

// Schedule fetches a personal schedule. An empty name means the default
// schedule.
func (c *Client) Schedule(ctx context.Context, scheduleName string) ([]types.ScheduledSection, []types.Diagnostic, error) {
	ctx, span := tracer.Start(ctx, "Schedule")
	defer span.End()

	rows, err := getJSON[[]raw.ScheduledMeeting](ctx, c, epSchedule, c.scheduleQuery(scheduleName))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schedule fetch failed")
		return nil, nil, err
	}

	sections, diags := parse.Schedule(rows)
	logDiagnostics(ctx, "Schedule", diags)
	return sections, diags, nil
}

// RawSchedule returns the untouched JSON for a personal schedule.
func (c *Client) RawSchedule(ctx context.Context, scheduleName string) (string, error) {
	ctx, span := tracer.Start(ctx, "RawSchedule")
	defer span.End()

	return c.getText(ctx, epSchedule, c.scheduleQuery(scheduleName))
}

func (c *Client) scheduleQuery(scheduleName string) url.Values {
	if scheduleName == "" {
		scheduleName = DefaultScheduleName
	}
	q := url.Values{}
	q.Set("schedname", scheduleName)
	q.Set("final", "")
	q.Set("sectnum", "")
	q.Set("termcode", c.session.Term())
	return q
}

// ScheduleNames lists the names of every schedule on the account.
func (c *Client) ScheduleNames(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "ScheduleNames")
	defer span.End()

	q := url.Values{}
	q.Set("termcode", c.session.Term())
	names, err := getJSON[[]string](ctx, c, epScheduleNames, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schedule name fetch failed")
		return nil, err
	}
	return names, nil
}

// Search runs a catalog search. The criteria's mode picks the endpoint:
// explicit section ids hit the section lookup, anything else the filter
// search. A criteria mixing both fails here, before any request is made.
func (c *Client) Search(ctx context.Context, criteria search.Criteria) ([]types.SearchResultItem, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()

	q, err := criteria.Query(c.session.Term())
	if err != nil {
		return nil, wrapError(KindInvalidRequest, "unusable search criteria", err)
	}

	path := epSearch
	if criteria.SectionMode() {
		path = epSearchSection
	}

	rows, err := getJSON[[]raw.SearchResultItem](ctx, c, path, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	return parse.SearchResults(rows), nil
}

// RawSearch returns the untouched JSON for a catalog search.
func (c *Client) RawSearch(ctx context.Context, criteria search.Criteria) (string, error) {
	ctx, span := tracer.Start(ctx, "RawSearch")
	defer span.End()

	q, err := criteria.Query(c.session.Term())
	if err != nil {
		return "", wrapError(KindInvalidRequest, "unusable search criteria", err)
	}
	path := epSearch
	if criteria.SectionMode() {
		path = epSearchSection
	}
	return c.getText(ctx, path, q)
}

// SubjectCodes lists every subject code the catalog knows.
func (c *Client) SubjectCodes(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "SubjectCodes")
	defer span.End()

	q := url.Values{}
	q.Set("termcode", c.session.Term())
	rows, err := getJSON[[]raw.SubjectElement](ctx, c, epSubjectList, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "subject list fetch failed")
		return nil, err
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if code := strings.TrimSpace(r.Code); code != "" {
			out = append(out, code)
		}
	}
	return out, nil
}

// DepartmentCodes lists every department code the catalog knows.
func (c *Client) DepartmentCodes(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "DepartmentCodes")
	defer span.End()

	q := url.Values{}
	q.Set("termcode", c.session.Term())
	rows, err := getJSON[[]raw.DepartmentElement](ctx, c, epDepartmentList, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "department list fetch failed")
		return nil, err
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if code := strings.TrimSpace(r.Code); code != "" {
			out = append(out, code)
		}
	}
	return out, nil
}

// Prerequisites fetches the prerequisite structure for one course.
func (c *Client) Prerequisites(ctx context.Context, subject, number string) (types.PrerequisiteInfo, error) {
	ctx, span := tracer.Start(ctx, "Prerequisites")
	defer span.End()

	rows, err := getJSON[[]raw.Prerequisite](ctx, c, epPrerequisites, c.courseQuery(subject, number))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prerequisite fetch failed")
		return types.PrerequisiteInfo{}, err
	}
	return parse.Prerequisites(rows), nil
}

// Events lists the custom calendar events on the account.
func (c *Client) Events(ctx context.Context) ([]types.Event, []types.Diagnostic, error) {
	ctx, span := tracer.Start(ctx, "Events")
	defer span.End()

	q := url.Values{}
	q.Set("termcode", c.session.Term())
	rows, err := getJSON[[]raw.Event](ctx, c, epEventGet, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event fetch failed")
		return nil, nil, err
	}

	events, diags := parse.Events(rows)
	logDiagnostics(ctx, "Events", diags)
	return events, diags, nil
}
