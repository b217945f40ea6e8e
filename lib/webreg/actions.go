package webreg

import (
	"context"
	"strconv"
	"strings"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/search"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"

	"go.opentelemetry.io/otel/codes"
)

// AddOptions describes an enroll or waitlist attempt for one section.
type AddOptions struct {
	// SectionID is the term-unique section number, e.g. "260737".
	SectionID string
	// SeatsAvailable steers the attempt: true targets enrollment,
	// false the waitlist. Callers supply it from a recent read
	// (Section.HasSeats); the client never re-queries on their behalf,
	// so the decision stays in the caller's hands during a race.
	SeatsAvailable bool
	// Units overrides the section's default unit count when positive.
	Units int64
	// Grade is the grading basis. The zero value is letter grading.
	Grade types.GradeOption
	// SkipValidate commits without the validation round trip. Only
	// safe right after a successful ValidateAdd for the same section.
	SkipValidate bool
}

func (o AddOptions) editPath() string {
	if o.SeatsAvailable {
		return epEnrollEdit
	}
	return epWaitlistEdit
}

func (o AddOptions) addPath() string {
	if o.SeatsAvailable {
		return epEnrollAdd
	}
	return epWaitlistAdd
}

// ValidateAdd asks the service whether an add attempt for the section
// would be accepted, committing nothing.
func (c *Client) ValidateAdd(ctx context.Context, opts AddOptions) error {
	ctx, span := tracer.Start(ctx, "ValidateAdd")
	defer span.End()

	if opts.SectionID == "" {
		return newError(KindInvalidRequest, "a section id is required")
	}

	err := c.postForm(ctx, opts.editPath(), map[string]string{
		"section":  opts.SectionID,
		"termcode": c.session.Term(),
		"subjcode": "",
		"crsecode": "",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation rejected")
	}
	return err
}

// AddSection enrolls in or waitlists a section: validate, commit, then
// clear the section from the planning area. The validate and commit
// steps are distinct requests, so a seat taken between them surfaces as
// a KindServiceRejected error from the commit.
func (c *Client) AddSection(ctx context.Context, opts AddOptions) error {
	ctx, span := tracer.Start(ctx, "AddSection")
	defer span.End()

	if opts.SectionID == "" {
		return newError(KindInvalidRequest, "a section id is required")
	}

	if !opts.SkipValidate {
		if err := c.ValidateAdd(ctx, opts); err != nil {
			return err
		}
	}

	units := ""
	if opts.Units > 0 {
		units = strconv.FormatInt(opts.Units, 10)
	}
	err := c.postForm(ctx, opts.addPath(), map[string]string{
		"section":  opts.SectionID,
		"termcode": c.session.Term(),
		"unit":     units,
		"grade":    opts.Grade.String(),
		"crsecode": "",
		"subjcode": "",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "add rejected")
		return err
	}

	// the service leaves the planned copy behind after a successful
	// add; clear it the way the web client does
	return c.postForm(ctx, epPlanRemoveAll, map[string]string{
		"sectnum":  opts.SectionID,
		"termcode": c.session.Term(),
	})
}

// DropSection drops an enrolled or waitlisted section. status must say
// which of the two the caller currently is, since the service uses
// different endpoints for each.
func (c *Client) DropSection(ctx context.Context, status types.StatusKind, sectionID string) error {
	ctx, span := tracer.Start(ctx, "DropSection")
	defer span.End()

	var path string
	switch status {
	case types.StatusEnrolled:
		path = epEnrollDrop
	case types.StatusWaitlisted:
		path = epWaitlistDrop
	default:
		return newError(KindInvalidRequest, "drop requires an enrolled or waitlisted status")
	}

	err := c.postForm(ctx, path, map[string]string{
		"subjcode": "",
		"crsecode": "",
		"section":  sectionID,
		"termcode": c.session.Term(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "drop rejected")
	}
	return err
}

// PlanOptions describes a section to put in the planning area.
type PlanOptions struct {
	Subject string
	// Number is the course number, e.g. "100".
	Number string
	// SectionID is the term-unique section number.
	SectionID string
	// SectionCode is the human code, e.g. "A01".
	SectionCode string
	Units       int64
	Grade       types.GradeOption
	// ScheduleName targets a named schedule; empty means the default.
	ScheduleName string
	SkipValidate bool
}

// ValidatePlan asks the service whether planning the section would be
// accepted, committing nothing.
func (c *Client) ValidatePlan(ctx context.Context, opts PlanOptions) error {
	ctx, span := tracer.Start(ctx, "ValidatePlan")
	defer span.End()

	if opts.SectionID == "" {
		return newError(KindInvalidRequest, "a section id is required")
	}

	err := c.postForm(ctx, epPlanEdit, map[string]string{
		"section":  opts.SectionID,
		"subjcode": strings.ToUpper(strings.TrimSpace(opts.Subject)),
		"crsecode": search.FormatCourseNumber(opts.Number),
		"termcode": c.session.Term(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan validation rejected")
	}
	return err
}

// Plan puts a section in the planning area of a schedule.
func (c *Client) Plan(ctx context.Context, opts PlanOptions) error {
	ctx, span := tracer.Start(ctx, "Plan")
	defer span.End()

	if opts.SectionID == "" || opts.SectionCode == "" {
		return newError(KindInvalidRequest, "a section id and section code are required")
	}

	if !opts.SkipValidate {
		if err := c.ValidatePlan(ctx, opts); err != nil {
			return err
		}
	}

	scheduleName := opts.ScheduleName
	if scheduleName == "" {
		scheduleName = DefaultScheduleName
	}
	err := c.postForm(ctx, epPlanAdd, map[string]string{
		"subjcode":  strings.ToUpper(strings.TrimSpace(opts.Subject)),
		"crsecode":  search.FormatCourseNumber(opts.Number),
		"sectnum":   opts.SectionID,
		"sectcode":  opts.SectionCode,
		"unit":      strconv.FormatInt(opts.Units, 10),
		"grade":     opts.Grade.String(),
		"termcode":  c.session.Term(),
		"schedname": scheduleName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan rejected")
	}
	return err
}

// Unplan removes a section from the planning area of a schedule. An
// empty schedule name means the default schedule.
func (c *Client) Unplan(ctx context.Context, sectionID, scheduleName string) error {
	ctx, span := tracer.Start(ctx, "Unplan")
	defer span.End()

	if scheduleName == "" {
		scheduleName = DefaultScheduleName
	}
	err := c.postForm(ctx, epPlanRemove, map[string]string{
		"sectnum":   sectionID,
		"termcode":  c.session.Term(),
		"schedname": scheduleName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unplan rejected")
	}
	return err
}

// ChangeGradeOption switches the grading basis of an enrolled section.
// The section is looked up in the default schedule first, both to
// confirm it exists and to learn its unit count, which the service
// demands on the change request.
func (c *Client) ChangeGradeOption(ctx context.Context, sectionID string, grade types.GradeOption) error {
	ctx, span := tracer.Start(ctx, "ChangeGradeOption")
	defer span.End()

	// the schedule endpoint reports ids as integers, so compare
	// without leading zeros
	wanted := strings.TrimLeft(sectionID, "0")
	if wanted == "" {
		return newError(KindInvalidRequest, "a section id is required")
	}

	sections, _, err := c.Schedule(ctx, "")
	if err != nil {
		return err
	}

	var current *types.ScheduledSection
	for i := range sections {
		if sections[i].ID == wanted {
			current = &sections[i]
			break
		}
	}
	if current == nil {
		return wrapError(KindInvalidRequest, "section "+sectionID+" is not on the schedule", ErrSectionNotFound)
	}

	err = c.postForm(ctx, epChangeEnroll, map[string]string{
		"section":  current.ID,
		"subjCode": "",
		"crseCode": "",
		"unit":     strconv.FormatInt(current.Units, 10),
		"grade":    grade.String(),
		"oldGrade": "",
		"oldUnit":  "",
		"termcode": c.session.Term(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade change rejected")
	}
	return err
}

// RenameSchedule renames a named schedule. The default schedule cannot
// be renamed.
func (c *Client) RenameSchedule(ctx context.Context, oldName, newName string) error {
	ctx, span := tracer.Start(ctx, "RenameSchedule")
	defer span.End()

	if oldName == DefaultScheduleName {
		return newError(KindInvalidRequest, "the default schedule cannot be renamed")
	}

	err := c.postForm(ctx, epRenameSchedule, map[string]string{
		"termcode":     c.session.Term(),
		"oldschedname": oldName,
		"newschedname": newName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rename rejected")
	}
	return err
}

// RemoveSchedule deletes a named schedule. The default schedule cannot
// be removed.
func (c *Client) RemoveSchedule(ctx context.Context, scheduleName string) error {
	ctx, span := tracer.Start(ctx, "RemoveSchedule")
	defer span.End()

	if scheduleName == DefaultScheduleName {
		return newError(KindInvalidRequest, "the default schedule cannot be removed")
	}

	err := c.postForm(ctx, epRemoveSchedule, map[string]string{
		"termcode":  c.session.Term(),
		"schedname": scheduleName,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "remove rejected")
	}
	return err
}

// SendConfirmationEmail sends an email with the given content to the
// account's address.
func (c *Client) SendConfirmationEmail(ctx context.Context, content string) error {
	ctx, span := tracer.Start(ctx, "SendConfirmationEmail")
	defer span.End()

	if err := c.throttle(ctx); err != nil {
		return err
	}

	res, err := c.req(ctx).
		SetFormData(map[string]string{
			"actionevent": content,
			"termcode":    c.session.Term(),
		}).
		Post(epSendEmail)
	if err != nil {
		return wrapError(KindTransport, "request failed", err)
	}
	if !res.IsSuccess() {
		return newError(KindServiceRejected, "status "+res.Status())
	}
	if !strings.Contains(string(res.Body()), `"YES"`) {
		span.SetStatus(codes.Error, "email was not accepted")
		return newError(KindServiceRejected, strings.TrimSpace(string(res.Body())))
	}
	return nil
}
