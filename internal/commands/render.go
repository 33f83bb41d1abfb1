package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/core/styles"
)

const (
	shortIDLen   = 8
	timeLayout   = "2006-01-02 15:04"
	maxTitleCols = 60
)

// shortID returns the tail of id. Time-ordered ids share their leading
// characters, so the random tail is what tells them apart.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}

func marks(e entity.Entity) string {
	var b strings.Builder
	if e.Completed() {
		b.WriteString(styles.IconCompleted)
	} else {
		b.WriteString(styles.IconOpen)
	}
	if e.Favorite {
		b.WriteString(styles.IconFavorite)
	} else {
		b.WriteString(" ")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// writeEntityTable prints entities as an aligned table with times shown in
// loc.
func writeEntityTable(w io.Writer, entities []entity.Entity, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCREATED\t\tCATEGORY\tTITLE")

	for _, e := range entities {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(e.ID),
			e.CreatedAt.In(loc).Format(timeLayout),
			marks(e),
			e.Category,
			truncate(e.Title, maxTitleCols),
		)
	}

	return tw.Flush()
}

// writeEntityDetail prints every field of e.
func writeEntityDetail(w io.Writer, e entity.Entity, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	row := func(label, value string) {
		if value != "" {
			_, _ = fmt.Fprintf(tw, "%s\t%s\n", label, value)
		}
	}

	row("Title", e.Title)
	row("ID", e.ID)
	if e.Category != "" {
		row("Category", lipgloss.NewStyle().Foreground(styles.ColorForString(e.Category)).Render(e.Category))
	}
	row("Location", e.Location)
	row("Created", e.CreatedAt.In(loc).Format(timeLayout))
	if e.UpdatedAt != nil {
		row("Updated", e.UpdatedAt.In(loc).Format(timeLayout))
	}
	if e.CompletedAt != nil {
		row("Completed", e.CompletedAt.In(loc).Format(timeLayout))
	}
	if e.Favorite {
		row("Favorite", "yes")
	}
	if e.IsEdited {
		row("Edited", "yes")
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if e.Notes != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", e.Notes)
	}
	return nil
}

// writeGroupedTables prints one table per calendar bucket under a heading
// naming the period start.
func writeGroupedTables(w io.Writer, buckets []calendar.Bucket, g calendar.Granularity, loc *time.Location) error {
	for i, b := range buckets {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render(bucketTitle(b.Start, g)))
		if err := writeEntityTable(w, b.Entities, loc); err != nil {
			return err
		}
	}
	return nil
}

func bucketTitle(start calendar.Date, g calendar.Granularity) string {
	switch g {
	case calendar.ByWeek:
		return "Week of " + start.String()
	case calendar.ByMonth:
		return fmt.Sprintf("%s %d", start.Month, start.Year)
	default:
		return start.String()
	}
}

func parseGranularity(s string) (calendar.Granularity, error) {
	switch strings.ToLower(s) {
	case "day":
		return calendar.ByDay, nil
	case "week":
		return calendar.ByWeek, nil
	case "month":
		return calendar.ByMonth, nil
	default:
		return 0, fmt.Errorf("unknown grouping %q (want day, week or month)", s)
	}
}
