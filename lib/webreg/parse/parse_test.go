package parse

import (
	"testing"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestInstructorNames(t *testing.T) {
	testCases := []struct {
		field    string
		expected []string
	}{
		{
			field:    "Smith, Jane    ;A12345678",
			expected: []string{"Smith, Jane"},
		},
		{
			field:    "Smith, Jane    ;A12345678:Doe, John    ;A87654321",
			expected: []string{"Smith, Jane", "Doe, John"},
		},
		{
			field:    "Staff",
			expected: []string{"Staff"},
		},
		{
			field:    "",
			expected: nil,
		},
		{
			field:    "   ",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		got := instructorNames(tc.field)
		if diff := cmp.Diff(tc.expected, got); diff != "" {
			t.Fatalf("instructorNames(%q) mismatch (-want +got):\n%s", tc.field, diff)
		}
	}
}

func TestMergeInstructors(t *testing.T) {
	got := mergeInstructors(
		[]string{"Smith, Jane"},
		[]string{"Doe, John", "Smith, Jane"},
		nil,
	)
	require.Equal(t, []string{"Doe, John", "Smith, Jane"}, got)
}

func TestParseDayCode(t *testing.T) {
	testCases := []struct {
		code     string
		expected []types.Weekday
	}{
		{
			code:     "135",
			expected: []types.Weekday{types.Monday, types.Wednesday, types.Friday},
		},
		{
			code:     "0",
			expected: []types.Weekday{types.Sunday},
		},
		{
			code:     "6",
			expected: []types.Weekday{types.Saturday},
		},
		{
			code:     "",
			expected: nil,
		},
		{
			// unknown characters are ignored
			code:     "1x5",
			expected: []types.Weekday{types.Monday, types.Friday},
		},
	}

	for _, tc := range testCases {
		got := parseDayCode(tc.code)
		if diff := cmp.Diff(tc.expected, got); diff != "" {
			t.Fatalf("parseDayCode(%q) mismatch (-want +got):\n%s", tc.code, diff)
		}
	}
}

func TestParseBinaryDays(t *testing.T) {
	testCases := []struct {
		bits     string
		expected []types.Weekday
	}{
		{
			bits:     "1010100",
			expected: []types.Weekday{types.Monday, types.Wednesday, types.Friday},
		},
		{
			bits:     "0000001",
			expected: []types.Weekday{types.Sunday},
		},
		{
			bits:     "0000000",
			expected: nil,
		},
		{
			bits:     "101",
			expected: nil,
		},
		{
			bits:     "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		got := parseBinaryDays(tc.bits)
		if diff := cmp.Diff(tc.expected, got); diff != "" {
			t.Fatalf("parseBinaryDays(%q) mismatch (-want +got):\n%s", tc.bits, diff)
		}
	}
}

func TestMeetingKindDays(t *testing.T) {
	code, days := meetingKindDays("FI", "LE", "1", "2023-12-15")
	require.Equal(t, "FI", code)
	require.Equal(t, types.OneTimeDay("2023-12-15"), days)

	code, days = meetingKindDays("TBA", "LE", "135", "")
	require.Equal(t, "LE", code)
	require.Equal(t, types.DaysRepeated, days.Kind)
	require.Equal(t, []types.Weekday{types.Monday, types.Wednesday, types.Friday}, days.Weekdays)

	code, days = meetingKindDays("", "LE", "", "")
	require.Equal(t, "LE", code)
	require.Equal(t, types.DaysNone, days.Kind)
}

func TestPlaceholder(t *testing.T) {
	require.True(t, placeholder(types.Meeting{Building: "TBA"}))
	require.True(t, placeholder(types.Meeting{}))
	require.False(t, placeholder(types.Meeting{StartHour: 10}))
	require.False(t, placeholder(types.Meeting{Building: "CENTR"}))
	require.False(t, placeholder(types.Meeting{
		Days: types.RepeatedDays([]types.Weekday{types.Monday}),
	}))
}
