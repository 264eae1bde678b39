package routes

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/render"
	"github.com/mbolis/survey-admin/app"
	"github.com/mbolis/survey-admin/csvx"
	"github.com/mbolis/survey-admin/httpx"
	"github.com/mbolis/survey-admin/listview"
	"github.com/mbolis/survey-admin/log"
	"github.com/mbolis/survey-admin/tz"
)

// ListPage describes one tabular screen backed by a backend list endpoint.
type ListPage struct {
	Name     string
	Endpoint string
	Options  listview.Options
	Columns  []csvx.Column
}

func displayDate(v any) string {
	return tz.ToDisplay(v, tz.DefaultDisplayFormat)
}

var listPages = []ListPage{
	{
		Name:     "users",
		Endpoint: "/api/admin/users",
		Options: listview.Options{
			SearchKeys:  []string{"sysId", "qrId", "name", "email", "phone"},
			DateKeys:    []string{"createdAt", "lastSeenAt"},
			DefaultSort: &listview.Sort{Key: "createdAt", Dir: listview.Desc},
		},
		Columns: []csvx.Column{
			{Key: "sysId", Label: "System ID"},
			{Key: "qrId", Label: "QR ID"},
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "phone", Label: "Phone"},
			{Key: "createdAt", Label: "Created At", Format: displayDate},
			{Key: "lastSeenAt", Label: "Last Seen At", Format: displayDate},
		},
	},
	{
		Name:     "surveys",
		Endpoint: "/api/admin/surveys",
		Options: listview.Options{
			SearchKeys:  []string{"surveyId", "sysId", "qrId", "user.name"},
			DateKeys:    []string{"submittedAt"},
			DefaultSort: &listview.Sort{Key: "submittedAt", Dir: listview.Desc},
		},
		Columns: []csvx.Column{
			{Key: "surveyId", Label: "Survey ID"},
			{Key: "sysId", Label: "System ID"},
			{Key: "qrId", Label: "QR ID"},
			{Key: "user.name", Label: "Name"},
			{Key: "rating", Label: "Rating"},
			{Key: "submittedAt", Label: "Submitted At", Format: displayDate},
		},
	},
	{
		Name:     "quiz",
		Endpoint: "/api/admin/quiz",
		Options: listview.Options{
			SearchKeys:  []string{"qrId", "name", "sysId"},
			DateKeys:    []string{"submittedAt"},
			DefaultSort: &listview.Sort{Key: "submittedAt", Dir: listview.Desc},
		},
		Columns: []csvx.Column{
			{Key: "qrId", Label: "QR ID"},
			{Key: "name", Label: "Name"},
			{Key: "correctAnswers", Label: "Correct Answers"},
			{Key: "totalQuestions", Label: "Total Questions"},
			{Key: "submittedAt", Label: "Submitted At", Format: displayDate},
		},
	},
	{
		Name:     "motion",
		Endpoint: "/api/admin/motion",
		Options: listview.Options{
			SearchKeys:  []string{"sysId", "qrId", "zone"},
			DateKeys:    []string{"recordedAt"},
			DefaultSort: &listview.Sort{Key: "recordedAt", Dir: listview.Desc},
		},
		Columns: []csvx.Column{
			{Key: "sysId", Label: "System ID"},
			{Key: "qrId", Label: "QR ID"},
			{Key: "zone", Label: "Zone"},
			{Key: "count", Label: "Count"},
			{Key: "recordedAt", Label: "Recorded At", Format: displayDate},
		},
	},
	{
		Name:     "raffle",
		Endpoint: "/api/admin/raffle",
		Options: listview.Options{
			SearchKeys: []string{"sysId", "qrId", "name"},
			DateKeys:   []string{"enteredAt"},
		},
		Columns: []csvx.Column{
			{Key: "sysId", Label: "System ID"},
			{Key: "qrId", Label: "QR ID"},
			{Key: "name", Label: "Name"},
			{Key: "tickets", Label: "Tickets"},
			{Key: "enteredAt", Label: "Entered At", Format: displayDate},
		},
	},
}

// List fetches the page's rows, primes the selection cache, and renders one
// page of the searched and sorted rows. With format=csv the whole sorted set
// is downloaded instead.
func List(app app.App, page ListPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		payload, err := app.Client.Get(r.Context(), page.Endpoint, httpx.RequestOptions{
			Params: map[string]any{
				"from": tz.DateForAPI(q.Get("from")),
				"to":   tz.DateForAPI(q.Get("to")),
			},
		})
		if err != nil {
			httpx.LogUpstreamError(w, r, page.Name+".fetch", err)
			return
		}

		rows := payload.Rows()
		app.Selection.PrimeFromArray(rows)

		opts := page.Options
		if opts.InitialPageSize == 0 {
			opts.InitialPageSize = app.PageSize
		}
		table := listview.New(rows, opts)
		if err := applyQuery(table, q); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, page.Name+".query", "%s", err)
			return
		}

		if q.Get("format") == "csv" {
			filename := fmt.Sprintf("%s-%s.csv", page.Name, tz.CurrentDateInDisplayZone(tz.DefaultDateFormat))
			err = csvx.WriteDownload(w, filename, csvx.Serialize(table.Sorted(), page.Columns))
			if err != nil {
				log.Debugf("%s.csv.write: %s", page.Name, err)
			}
			return
		}

		render.JSON(w, r, table.View())
	}
}

// applyQuery sets the page last, since every other input resets it.
func applyQuery(t *listview.Table, q url.Values) error {
	t.SetSearchTerm(q.Get("q"))

	if key := q.Get("sort"); key != "" {
		t.SetSortKey(key)
	}
	if s := q.Get("dir"); s != "" {
		dir, ok := listview.ParseDirection(s)
		if !ok {
			return fmt.Errorf("invalid dir %q", s)
		}
		t.SetSortDir(dir)
	}
	// toggle is a column-header click: flip the direction on the current
	// key, or sort ascending by a new one
	if key := q.Get("toggle"); key != "" {
		t.SetSort(key)
	}
	if s := q.Get("pageSize"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid pageSize %q", s)
		}
		if err := t.SetPageSize(n); err != nil {
			return err
		}
	}
	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid page %q", s)
		}
		t.SetPage(n)
	}
	return nil
}

// Analytics forwards the selected day range; both ends default to today in
// the display zone.
func Analytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		today := tz.CurrentDateInDisplayZone(tz.DefaultDateFormat)
		from, to := q.Get("from"), q.Get("to")
		if from == "" {
			from = today
		}
		if to == "" {
			to = today
		}

		payload, err := app.Client.Get(r.Context(), "/api/admin/analytics", httpx.RequestOptions{
			Params: map[string]any{
				"from": tz.DateForAPI(from),
				"to":   tz.DateForAPI(to),
			},
		})
		if err != nil {
			httpx.LogUpstreamError(w, r, "analytics.fetch", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"from": from,
			"to":   to,
			"data": payload.Data(),
		})
	}
}
