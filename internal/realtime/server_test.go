package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"calendar-booking-api/internal/auth"
	"calendar-booking-api/internal/fanout"
	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/memstore"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/realtime"
	"calendar-booking-api/internal/schedule"
)

const secret = "realtime-secret"

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type env struct {
	srv *httptest.Server
	svc *schedule.Service
	hub *fanout.Hub
}

func init() { gin.SetMode(gin.TestMode) }

func setup(t *testing.T) *env {
	t.Helper()
	l, _ := logtest.NewNullLogger()
	log := logrus.NewEntry(l)

	st := memstore.New()
	for _, u := range []string{"alice", "bob"} {
		if err := st.CreateUser(context.Background(), &model.User{ID: u, Username: u}); err != nil {
			t.Fatal(err)
		}
	}
	hub := fanout.NewHub(16)
	disp := fanout.NewDispatcher(64, log, hub)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { disp.Run(ctx); close(done) }()

	svc := schedule.New(st, disp, log, schedule.WithClock(func() time.Time { return day }))
	bridge := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bridge", "1")
		w.WriteHeader(http.StatusTeapot)
	})
	srv := httptest.NewServer(realtime.New(svc, hub, secret, bridge, log).Router())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return &env{srv: srv, svc: svc, hub: hub}
}

func token(t *testing.T, uid string) string {
	t.Helper()
	tok, err := auth.MakeToken(uid, uid, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func get(t *testing.T, e *env, path, uid string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, uid))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const window = "?start=2025-03-10T00:00:00Z&end=2025-03-12T00:00:00Z"

func TestHealthAndAuth(t *testing.T) {
	e := setup(t)

	tests := []struct {
		name string
		path string
		uid  string
		want int
	}{
		{"health", "/healthz", "", http.StatusOK},
		{"days without token", "/calendar/alice/days", "", http.StatusUnauthorized},
		{"ics without token", "/calendar/alice/ics", "", http.StatusUnauthorized},
		{"ws without token", "/ws", "", http.StatusUnauthorized},
		{"half window", "/calendar/alice/days?start=2025-03-10T00:00:00Z", "alice", http.StatusBadRequest},
		{"bad time", "/calendar/alice/days?start=yesterday&end=2025-03-12T00:00:00Z", "alice", http.StatusBadRequest},
		{"unknown route goes to bridge", "/calendar.v1.CalendarService/ListTasks", "", http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := get(t, e, tt.path, tt.uid).StatusCode; got != tt.want {
				t.Fatalf("status %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysSplitsAcrossMidnight(t *testing.T) {
	e := setup(t)
	late := interval.Interval{Start: day.Add(23 * time.Hour), End: day.Add(25 * time.Hour)}
	if _, err := e.svc.CreateTask(context.Background(), "alice", "late shift", late); err != nil {
		t.Fatal(err)
	}

	resp := get(t, e, "/calendar/me/days"+window, "alice")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var days []struct {
		Day   string `json:"day"`
		Items []struct {
			Title     string    `json:"title"`
			Start     time.Time `json:"startTime"`
			End       time.Time `json:"endTime"`
			Continued bool      `json:"continued"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&days); err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 || days[0].Day != "2025-03-10" || days[1].Day != "2025-03-11" {
		t.Fatalf("days %+v", days)
	}
	if len(days[0].Items) != 1 || days[0].Items[0].Continued {
		t.Fatalf("first day %+v", days[0].Items)
	}
	second := days[1].Items
	if len(second) != 1 || !second[0].Continued || !second[0].End.Equal(day.Add(25*time.Hour)) {
		t.Fatalf("second day %+v", second)
	}
}

func TestICSExportHidesPrivateDetail(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	meeting := interval.Interval{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}
	v, err := e.svc.CreateBooking(ctx, "alice", "bob", "salary review", "Room 4", meeting)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.RespondToBooking(ctx, v.ID, "bob", true); err != nil {
		t.Fatal(err)
	}

	resp := get(t, e, "/calendar/alice/ics"+window, "bob")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Fatalf("content type %q", ct)
	}
	cal, err := ical.NewDecoder(resp.Body).Decode()
	if err != nil {
		t.Fatal(err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events: %d", len(events))
	}
	summary, _ := events[0].Props.Text(ical.PropSummary)
	if summary != "Busy" {
		t.Fatalf("summary %q", summary)
	}
	if events[0].Props.Get(ical.PropLocation) != nil {
		t.Fatal("location leaked to an external viewer")
	}
	start, err := events[0].DateTimeStart(time.UTC)
	if err != nil || !start.Equal(meeting.Start) {
		t.Fatalf("start %v (%v)", start, err)
	}
}

func waitForGroup(t *testing.T, hub *fanout.Hub, group string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Groups()[group] == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no subscriber joined %s", group)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebsocketFeed(t *testing.T) {
	e := setup(t)
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?access_token=" + token(t, "bob")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"action": "subscribe", "calendarOwnerId": "alice"}); err != nil {
		t.Fatal(err)
	}
	waitForGroup(t, e.hub, fanout.CalendarGroup("alice"))

	ctx := context.Background()
	if _, err := e.svc.CreateTask(ctx, "alice", "gym", interval.Interval{Start: day.Add(7 * time.Hour), End: day.Add(8 * time.Hour)}); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev fanout.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Group != fanout.CalendarGroup("alice") || ev.Name != schedule.EventCalendarUpdated {
		t.Fatalf("event %s on %s", ev.Name, ev.Group)
	}
	var upd schedule.CalendarUpdate
	if err := json.Unmarshal(ev.Payload, &upd); err != nil || upd.Type != schedule.UpdateTaskAdded {
		t.Fatalf("payload %s (%v)", ev.Payload, err)
	}

	// bob's own group is joined on connect
	if _, err := e.svc.CreateBooking(ctx, "alice", "bob", "1:1", "", interval.Interval{Start: day.Add(11 * time.Hour), End: day.Add(12 * time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Group != fanout.UserGroup("bob") || ev.Name != schedule.EventNewBookingRequest {
		t.Fatalf("event %s on %s", ev.Name, ev.Group)
	}

	if err := conn.WriteJSON(map[string]string{"action": "unsubscribe", "calendarOwnerId": "alice"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for e.hub.Groups()[fanout.CalendarGroup("alice")] != 0 {
		if time.Now().After(deadline) {
			t.Fatal("still subscribed to alice's calendar")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
