package webreg

import (
	"strconv"
	"time"
)

// DefaultBaseURL is the production registration adapter.
const DefaultBaseURL = "https://act.ucsd.edu/webreg2/svc/wradapter"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/97.0.4692.71 Safari/537.36"

// DefaultScheduleName is the schedule every account starts with. It can
// be read but never renamed or removed.
const DefaultScheduleName = "My Schedule"

// Endpoint paths, relative to the base URL. Paths under /secure require
// an associated term.
const (
	epAccountName    = "/get-current-name"
	epTermList       = "/get-term"
	epStatusStart    = "/get-status-start"
	epEligibility    = "/check-eligibility"
	epSearch         = "/secure/search-by-all"
	epSearchSection  = "/secure/search-by-sectionid"
	epCourseData     = "/secure/search-load-group-data"
	epSubjectList    = "/secure/search-load-subject"
	epDepartmentList = "/secure/search-load-department"
	epSchedule       = "/secure/get-class"
	epScheduleNames  = "/secure/sched-get-schednames"
	epPrerequisites  = "/secure/get-prerequisites"
	epPingServer     = "/secure/ping-server"
	epSendEmail      = "/secure/send-email"

	epPlanAdd       = "/secure/plan-add"
	epPlanEdit      = "/secure/edit-plan"
	epPlanRemove    = "/secure/plan-remove"
	epPlanRemoveAll = "/secure/plan-remove-all"

	epEnrollAdd  = "/secure/add-enroll"
	epEnrollEdit = "/secure/edit-enroll"
	epEnrollDrop = "/secure/drop-enroll"

	epWaitlistAdd  = "/secure/add-wait"
	epWaitlistEdit = "/secure/edit-wait"
	epWaitlistDrop = "/secure/drop-wait"

	epChangeEnroll = "/secure/change-enroll"

	epRenameSchedule = "/secure/plan-rename"
	epRemoveSchedule = "/secure/sched-remove"

	epEventAdd    = "/secure/event-add"
	epEventEdit   = "/secure/event-edit"
	epEventRemove = "/secure/event-remove"
	epEventGet    = "/secure/event-get"
)

// verifyFailBody is what /secure endpoints return when the session has
// no association with the requested term.
const verifyFailBody = `[{"VERIFY":"FAIL"}]`

// epochMillis is the cache-busting "_" parameter the service expects on
// every GET.
func epochMillis() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
