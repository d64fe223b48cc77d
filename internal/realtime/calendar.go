package realtime

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/gin-gonic/gin"

	"calendar-booking-api/internal/interval"
	"calendar-booking-api/internal/model"
	"calendar-booking-api/internal/schedule"
)

const prodID = "-//calendar-booking-api//schedule export//EN"

type segmentJSON struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	MadeBy    string    `json:"madeBy,omitempty"`
	Status    string    `json:"status,omitempty"`
	Start     time.Time `json:"startTime"`
	End       time.Time `json:"endTime"`
	Continued bool      `json:"continued"`
}

type dayJSON struct {
	Day   string        `json:"day"`
	Items []segmentJSON `json:"items"`
}

// window reads optional RFC 3339 start and end query parameters. Both or
// neither must be given; neither means the default window.
func window(c *gin.Context) (interval.Interval, error) {
	qs, qe := c.Query("start"), c.Query("end")
	if qs == "" && qe == "" {
		return interval.Interval{}, nil
	}
	if qs == "" || qe == "" {
		return interval.Interval{}, fmt.Errorf("%w: start and end go together", schedule.ErrInvalidRange)
	}
	start, err := time.Parse(time.RFC3339, qs)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("%w: bad start", schedule.ErrInvalidRange)
	}
	end, err := time.Parse(time.RFC3339, qe)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("%w: bad end", schedule.ErrInvalidRange)
	}
	return interval.Interval{Start: start, End: end}, nil
}

// target resolves the :userId path parameter; "me" is the caller.
func target(c *gin.Context) (target, viewer string) {
	viewer = c.GetString(ctxUserID)
	target = c.Param("userId")
	if target == "me" {
		target = viewer
	}
	return target, viewer
}

func (s *Server) days(c *gin.Context) {
	iv, err := window(c)
	if err != nil {
		s.writeError(c, "days", err)
		return
	}
	tgt, viewer := target(c)
	buckets, err := s.svc.GetScheduleByDay(c.Request.Context(), tgt, viewer, iv)
	if err != nil {
		s.writeError(c, "days", err)
		return
	}

	out := make([]dayJSON, 0, len(buckets))
	for _, b := range buckets {
		d := dayJSON{Day: b.Day.Format(time.DateOnly), Items: make([]segmentJSON, 0, len(b.Segments))}
		for _, seg := range b.Segments {
			d.Items = append(d.Items, segmentJSON{
				Kind:      string(seg.Item.Kind),
				ID:        seg.Item.ID,
				Title:     seg.Item.Title,
				Location:  seg.Item.Location,
				MadeBy:    seg.Item.MadeBy,
				Status:    string(seg.Item.Status),
				Start:     seg.Interval.Start,
				End:       seg.Interval.End,
				Continued: seg.Continued,
			})
		}
		out = append(out, d)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) ics(c *gin.Context) {
	iv, err := window(c)
	if err != nil {
		s.writeError(c, "ics", err)
		return
	}
	tgt, viewer := target(c)
	items, err := s.svc.GetScheduleForInterval(c.Request.Context(), tgt, viewer, iv)
	if err != nil {
		s.writeError(c, "ics", err)
		return
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(toCalendar(items, time.Now())); err != nil {
		s.writeError(c, "ics", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tgt+".ics"))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func toCalendar(items []schedule.Item, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	for _, it := range items {
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, string(it.Kind)+"-"+it.ID)
		ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeStart, it.Interval.Start.UTC())
		ev.Props.SetDateTime(ical.PropDateTimeEnd, it.Interval.End.UTC())
		ev.Props.SetText(ical.PropSummary, it.Title)
		if it.Location != "" {
			ev.Props.SetText(ical.PropLocation, it.Location)
		}
		if it.MadeBy != "" {
			ev.Props.SetText(ical.PropDescription, it.MadeBy)
		}
		switch it.Status {
		case model.StatusPending:
			ev.Props.SetText(ical.PropStatus, "TENTATIVE")
		default:
			ev.Props.SetText(ical.PropStatus, "CONFIRMED")
		}
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal
}
