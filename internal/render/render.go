package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vumc-media/atrium-calendar-feed/internal/model"
	"github.com/vumc-media/atrium-calendar-feed/internal/weather"
)

//go:embed board.html.tmpl
var templates embed.FS

var boardTmpl = template.Must(template.ParseFS(templates, "board.html.tmpl"))

// Item is one event row on the board.
type Item struct {
	TimeLabel string
	Title     string
	Location  string
	AllDay    bool
}

// Day groups the items sharing a civil date in the display timezone.
type Day struct {
	Label string
	Items []Item
}

// Page is the full data set handed to the board template.
type Page struct {
	BoardTitle  string
	Days        []Day
	Weather     *weather.Status
	GeneratedAt string
	// ScrollSeconds controls how long one full scroll of the agenda takes.
	ScrollSeconds int
}

// BuildPage groups an already-selected, already-sorted event list by
// display day. Events without a start instant never reach this layer.
func BuildPage(title string, events []model.Event, loc *time.Location, wx *weather.Status, now time.Time) Page {
	page := Page{
		BoardTitle:    title,
		Weather:       wx,
		GeneratedAt:   now.In(loc).Format("Mon Jan 2 15:04"),
		ScrollSeconds: scrollSeconds(len(events)),
	}

	var current *Day
	var currentDate string
	for _, ev := range events {
		if ev.Start == nil {
			continue
		}
		local := ev.Start.In(loc)
		date := local.Format("20060102")
		if current == nil || date != currentDate {
			page.Days = append(page.Days, Day{
				Label: local.Format("Monday, January 2"),
			})
			current = &page.Days[len(page.Days)-1]
			currentDate = date
		}

		item := Item{
			Title:    ev.Title,
			Location: ev.Location,
			AllDay:   ev.AllDay,
		}
		if ev.AllDay {
			item.TimeLabel = "All day"
		} else {
			item.TimeLabel = local.Format("3:04 PM")
		}
		current.Items = append(current.Items, item)
	}

	return page
}

// scrollSeconds picks a scroll duration proportional to the list length so
// short agendas do not race past the viewer.
func scrollSeconds(n int) int {
	const perItem = 4
	s := n * perItem
	if s < 30 {
		s = 30
	}
	return s
}

// Render writes the board document for page to w.
func Render(w io.Writer, page Page) error {
	return boardTmpl.Execute(w, page)
}

// WriteFile renders the board and writes it to path atomically, so a
// static host never serves a half-written document.
func WriteFile(path string, page Page) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".board-*.html.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Render(tmp, page); err != nil {
		tmp.Close()
		return fmt.Errorf("render board: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
