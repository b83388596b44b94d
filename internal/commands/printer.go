package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/klokku/agenda/pkg/agenda"
	"github.com/klokku/agenda/pkg/event"
	"github.com/klokku/agenda/pkg/timing"
)

var (
	bold     = color.New(color.Bold).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
	ongoing  = color.New(color.FgHiGreen, color.Bold).SprintFunc()
	critical = color.New(color.FgHiRed, color.Bold).SprintFunc()
	shifted  = color.New(color.FgHiYellow).SprintFunc()
)

// printAgenda writes the countdown line followed by a table of the snapshot's events.
func printAgenda(w io.Writer, snapshot agenda.Snapshot) error {
	now := snapshot.ClassifiedAt

	if active, ok := timing.FindActive(snapshot.Events, now); ok {
		remaining := active.EndTime.Sub(now)
		countdown := timing.FormatRemaining(remaining)
		if timing.IsCritical(remaining) {
			countdown = critical(countdown)
		} else {
			countdown = ongoing(countdown)
		}
		_, _ = fmt.Fprintf(w, "%s %s  %s\n\n", bold("Now:"), active.Title, countdown)
	} else {
		_, _ = fmt.Fprintf(w, "%s %s\n\n", bold("Now:"), faint("nothing scheduled"))
	}

	if len(snapshot.Events) == 0 {
		_, _ = fmt.Fprintln(w, faint("You have no events for today."))
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold("Time"), bold("Title"), bold("Status"), bold("Calendar"))
	for _, e := range snapshot.Events {
		title := e.Title
		if _, ok := snapshot.Overrides.Get(e.Id); ok {
			title = shifted(title + " *")
		}
		tbl.AddRow(timeRange(e), title, statusLabel(e.Status), faint(e.CalendarId))
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}

func timeRange(e event.Event) string {
	if e.AllDay {
		return "all day"
	}
	if e.Malformed {
		return "??:?? - ??:??"
	}
	return e.StartTime.Format("15:04") + " - " + e.EndTime.Format("15:04")
}

func statusLabel(status event.Status) string {
	switch status {
	case event.StatusOngoing:
		return ongoing("ongoing")
	case event.StatusExpired:
		return faint("expired")
	case event.StatusUpcoming:
		return "upcoming"
	default:
		return faint("-")
	}
}
