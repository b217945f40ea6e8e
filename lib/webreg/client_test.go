package webreg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/telemetry"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/search"
	"github.com/UCSD-Historical-Enrollment-Data/webweg/lib/webreg/types"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	cleanup := telemetry.SetupForTesting(t, "test:lib/webreg")
	t.Cleanup(cleanup)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Options{
		Credential: "jlinksessionidx=abc123",
		Term:       "FA23",
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewRequiresCredential(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	require.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestCheckSession(t *testing.T) {
	var gotCookie, gotBuster string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, epPingServer, r.URL.Path)
		gotCookie = r.Header.Get("cookie")
		gotBuster = r.URL.Query().Get("_")
		w.Write([]byte(`{"SESSION_OK": true}`))
	}))

	ok, err := client.CheckSession(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, client.Session().Valid())
	require.Equal(t, "jlinksessionidx=abc123", gotCookie)
	require.NotEmpty(t, gotBuster, "every read carries a cache buster")
}

func TestRejectedCredentialMarksSessionInvalid(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.AccountName(context.Background())
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.Equal(t, KindSessionInvalid, KindOf(err))
	require.False(t, client.Session().Valid())
}

func TestUnassociatedTermBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"VERIFY":"FAIL"}]`))
	}))

	_, _, err := client.Schedule(context.Background(), "")
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestDoubleEncodedResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// some endpoints return a JSON string containing the document
		w.Write([]byte(`"[{\"SEQ_ID\":5270,\"TERM_CODE\":\"SP23\"}]"`))
	}))

	terms, err := client.Terms(context.Background())
	require.NoError(t, err)
	require.Equal(t, []types.Term{{SeqID: 5270, Code: "SP23"}}, terms)
}

func TestMalformedResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))

	_, err := client.Terms(context.Background())
	require.Equal(t, KindMalformedResponse, KindOf(err))
}

func TestCoursesQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, epCourseData, r.URL.Path)
		require.Equal(t, "CSE", r.URL.Query().Get("subjcode"))
		require.Equal(t, "  8B", r.URL.Query().Get("crsecode"))
		require.Equal(t, "FA23", r.URL.Query().Get("termcode"))
		w.Write([]byte(`[
			{"SECT_CODE":"A00","FK_CDI_INSTR_TYPE":"LE","DAY_CODE":"135",
			 "BEGIN_HH_TIME":10,"END_HH_TIME":10,"END_MM_TIME":50,
			 "BLDG_CODE":"WLH","ROOM_CODE":"2001","DISPLAY_TYPE":"AC",
			 "SECTION_NUMBER":79914,"SCTN_CPCTY_QTY":100,"AVAIL_SEAT":40,
			 "SECT_CREDIT_HRS":4,"GRADE_OPTION":"L",
			 "PERSON_FULL_NAME":"Smith, Jane    ;A12345678"}
		]`))
	}))

	courses, diags, err := client.Courses(context.Background(), "cse", "8B")
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, courses, 1)
	require.Len(t, courses[0].Sections, 1)
	require.Equal(t, "79914", courses[0].Sections[0].ID)
	require.True(t, courses[0].Sections[0].HasSeats())
}

func TestAssociateTerm(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		require.Equal(t, "FA23", r.URL.Query().Get("termcode"))
		require.Equal(t, "5320", r.URL.Query().Get("seqid"))
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.AssociateTerm(context.Background(), "fa23"))
	require.Equal(t, []string{epStatusStart, epEligibility}, paths)
}

func TestAssociateTermUnknownCode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("nothing should be sent for an unreadable term code")
	}))

	err := client.AssociateTerm(context.Background(), "XX99")
	require.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestAddSectionEnrollFlow(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case epEnrollAdd:
			require.Equal(t, "079914", r.PostFormValue("section"))
			require.Equal(t, "FA23", r.PostFormValue("termcode"))
			require.Equal(t, "", r.PostFormValue("unit"))
			require.Equal(t, "L", r.PostFormValue("grade"))
		case epPlanRemoveAll:
			require.Equal(t, "079914", r.PostFormValue("sectnum"))
		}
		w.Write([]byte(`{"OPS":"SUCCESS"}`))
	}))

	err := client.AddSection(context.Background(), AddOptions{
		SectionID:      "079914",
		SeatsAvailable: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{epEnrollEdit, epEnrollAdd, epPlanRemoveAll}, paths)
}

func TestAddSectionWaitlistFlow(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"OPS":"SUCCESS"}`))
	}))

	err := client.AddSection(context.Background(), AddOptions{
		SectionID:      "079914",
		SeatsAvailable: false,
	})
	require.NoError(t, err)
	require.Equal(t, []string{epWaitlistEdit, epWaitlistAdd, epPlanRemoveAll}, paths)
}

func TestAddSectionRejection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"OPS":"FAIL","REASON":"<p>No seats are available.</p>"}`))
	}))

	err := client.AddSection(context.Background(), AddOptions{
		SectionID:      "079914",
		SeatsAvailable: true,
		SkipValidate:   true,
	})
	require.Equal(t, KindServiceRejected, KindOf(err))
	require.Contains(t, err.Error(), "No seats are available.")
	require.NotContains(t, err.Error(), "<p>", "markup is stripped from rejection reasons")
}

func TestDropSection(t *testing.T) {
	var path string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"OPS":"SUCCESS"}`))
	}))

	ctx := context.Background()
	require.NoError(t, client.DropSection(ctx, types.StatusEnrolled, "079914"))
	require.Equal(t, epEnrollDrop, path)

	require.NoError(t, client.DropSection(ctx, types.StatusWaitlisted, "079914"))
	require.Equal(t, epWaitlistDrop, path)

	err := client.DropSection(ctx, types.StatusPlanned, "079914")
	require.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestSearchModeConflict(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("a conflicted criteria should never reach the network")
	}))

	criteria := search.Criteria{}.WithSections("079914").WithSubjects("CSE")
	_, err := client.Search(context.Background(), criteria)
	require.ErrorIs(t, err, search.ErrConflictingModes)
	require.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestSearchPicksEndpointByMode(t *testing.T) {
	var path string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`[{"SUBJ_CODE":"CSE","CRSE_CODE":"100","CRSE_TITLE":"Advanced Data Structures"}]`))
	}))

	ctx := context.Background()
	_, err := client.Search(ctx, search.Criteria{}.WithSubjects("CSE"))
	require.NoError(t, err)
	require.Equal(t, epSearch, path)

	results, err := client.Search(ctx, search.Criteria{}.WithSections("079914"))
	require.NoError(t, err)
	require.Equal(t, epSearchSection, path)
	require.Len(t, results, 1)
}

func TestChangeGradeOption(t *testing.T) {
	var form map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case epSchedule:
			w.Write([]byte(`[
				{"SECTION_NUMBER":"079914","SECT_CODE":"A01","SUBJ_CODE":"CSE",
				 "CRSE_CODE":"100","CRSE_TITLE":"Advanced Data Structures",
				 "GRADE_OPTION":"L","SECT_CREDIT_HRS":4,"ENROLL_STATUS":"EN",
				 "DAY_CODE":"2","BEGIN_HH_TIME":15,"END_HH_TIME":15,"END_MM_TIME":50,
				 "SCTN_ENRLT_QTY":30,"SCTN_CPCTY_QTY":30}
			]`))
		case epChangeEnroll:
			form = map[string]string{
				"section": r.PostFormValue("section"),
				"unit":    r.PostFormValue("unit"),
				"grade":   r.PostFormValue("grade"),
			}
			w.Write([]byte(`{"OPS":"SUCCESS"}`))
		}
	}))

	err := client.ChangeGradeOption(context.Background(), "079914", types.GradePassNoPass)
	require.NoError(t, err)
	require.Equal(t, "79914", form["section"])
	require.Equal(t, "4", form["unit"])
	require.Equal(t, "P", form["grade"])
}

func TestChangeGradeOptionMissingSection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))

	err := client.ChangeGradeOption(context.Background(), "079914", types.GradePassNoPass)
	require.ErrorIs(t, err, ErrSectionNotFound)
}

func TestDefaultScheduleIsProtected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("the default schedule must never be touched")
	}))

	ctx := context.Background()
	err := client.RenameSchedule(ctx, DefaultScheduleName, "Backup")
	require.Equal(t, KindInvalidRequest, KindOf(err))

	err = client.RemoveSchedule(ctx, DefaultScheduleName)
	require.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestAddEventForm(t *testing.T) {
	var form map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, epEventAdd, r.URL.Path)
		form = map[string]string{
			"aename":      r.PostFormValue("aename"),
			"aestarttime": r.PostFormValue("aestarttime"),
			"aeendtime":   r.PostFormValue("aeendtime"),
			"aedays":      r.PostFormValue("aedays"),
		}
		w.Write([]byte(`{"OPS":"SUCCESS"}`))
	}))

	err := client.AddEvent(context.Background(), EventOptions{
		Name:      "Office hours",
		Days:      []types.Weekday{types.Monday, types.Wednesday},
		StartHour: 8, StartMinute: 0,
		EndHour: 9, EndMinute: 30,
	})
	require.NoError(t, err)
	require.Equal(t, "Office hours", form["aename"])
	require.Equal(t, "0800", form["aestarttime"])
	require.Equal(t, "0930", form["aeendtime"])
	require.Equal(t, "1010000", form["aedays"])
}

func TestEventValidation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid events should never reach the network")
	}))
	ctx := context.Background()

	// start after end
	err := client.AddEvent(ctx, EventOptions{
		Days:      []types.Weekday{types.Monday},
		StartHour: 10, EndHour: 9,
	})
	require.Equal(t, KindInvalidRequest, KindOf(err))

	// before the 7:00 floor
	err = client.AddEvent(ctx, EventOptions{
		Days:      []types.Weekday{types.Monday},
		StartHour: 6, EndHour: 8,
	})
	require.Equal(t, KindInvalidRequest, KindOf(err))

	// past the 22:00 ceiling
	err = client.AddEvent(ctx, EventOptions{
		Days:      []types.Weekday{types.Monday},
		StartHour: 21, EndHour: 22, EndMinute: 30,
	})
	require.Equal(t, KindInvalidRequest, KindOf(err))

	// no days
	err = client.AddEvent(ctx, EventOptions{
		StartHour: 8, EndHour: 9,
	})
	require.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestSendConfirmationEmail(t *testing.T) {
	accept := true
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, epSendEmail, r.URL.Path)
		require.Equal(t, "enrollment confirmed", r.PostFormValue("actionevent"))
		if accept {
			w.Write([]byte(`"YES"`))
		} else {
			w.Write([]byte(`"NO"`))
		}
	}))

	ctx := context.Background()
	require.NoError(t, client.SendConfirmationEmail(ctx, "enrollment confirmed"))

	accept = false
	err := client.SendConfirmationEmail(ctx, "enrollment confirmed")
	require.Equal(t, KindServiceRejected, KindOf(err))
}

func TestThrottleHonorsCancellation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"SESSION_OK": true}`))
	}))
	client.throttleEvery = 1
	client.throttleDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CheckSession(ctx)
	require.Equal(t, KindTransport, KindOf(err))
}
