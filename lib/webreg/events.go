package webreg

import (
	"context"
	"fmt"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"

	"go.opentelemetry.io/otel/codes"
)

// EventOptions describes a custom calendar event to create or replace.
type EventOptions struct {
	Name     string
	Location string
	Days     []types.Weekday
	// Times are wall clock. The service only accepts events between
	// 7:00 and 22:00.
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

func (o EventOptions) validate() error {
	start := o.StartHour*100 + o.StartMinute
	end := o.EndHour*100 + o.EndMinute
	if start >= end {
		return newError(KindInvalidRequest, "event start must be before its end")
	}
	if o.StartHour < 7 || o.EndHour > 22 || (o.EndHour == 22 && o.EndMinute != 0) {
		return newError(KindInvalidRequest, "events must fall between 7:00 and 22:00")
	}
	if len(o.Days) == 0 {
		return newError(KindInvalidRequest, "an event needs at least one day")
	}
	return nil
}

func (o EventOptions) form(term string) map[string]string {
	var days [7]byte
	for i := range days {
		days[i] = '0'
	}
	for _, d := range o.Days {
		if d >= types.Monday && d <= types.Sunday {
			days[int(d)] = '1'
		}
	}

	return map[string]string{
		"termcode":    term,
		"aename":      o.Name,
		"aestarttime": fmt.Sprintf("%02d%02d", o.StartHour, o.StartMinute),
		"aeendtime":   fmt.Sprintf("%02d%02d", o.EndHour, o.EndMinute),
		"aelocation":  o.Location,
		"aedays":      string(days[:]),
	}
}

// AddEvent creates a custom calendar event.
func (c *Client) AddEvent(ctx context.Context, opts EventOptions) error {
	ctx, span := tracer.Start(ctx, "AddEvent")
	defer span.End()

	if err := opts.validate(); err != nil {
		return err
	}

	err := c.postForm(ctx, epEventAdd, opts.form(c.session.Term()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event add rejected")
	}
	return err
}

// EditEvent replaces the event with the given timestamp. The service
// implements edits as remove-then-add, so the event comes back with a
// new timestamp.
func (c *Client) EditEvent(ctx context.Context, timestamp string, opts EventOptions) error {
	ctx, span := tracer.Start(ctx, "EditEvent")
	defer span.End()

	if timestamp == "" {
		return newError(KindInvalidRequest, "an event timestamp is required")
	}
	if err := opts.validate(); err != nil {
		return err
	}

	form := opts.form(c.session.Term())
	form["aetimestamp"] = timestamp
	err := c.postForm(ctx, epEventEdit, form)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event edit rejected")
	}
	return err
}

// RemoveEvent deletes the event with the given timestamp.
func (c *Client) RemoveEvent(ctx context.Context, timestamp string) error {
	ctx, span := tracer.Start(ctx, "RemoveEvent")
	defer span.End()

	if timestamp == "" {
		return newError(KindInvalidRequest, "an event timestamp is required")
	}

	err := c.postForm(ctx, epEventRemove, map[string]string{
		"aetimestamp": timestamp,
		"termcode":    c.session.Term(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event remove rejected")
	}
	return err
}
