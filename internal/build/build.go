package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vumc-media/atrium-calendar-feed/internal/config"
	"github.com/vumc-media/atrium-calendar-feed/internal/feed"
	"github.com/vumc-media/atrium-calendar-feed/internal/ics"
	appLog "github.com/vumc-media/atrium-calendar-feed/internal/log"
	"github.com/vumc-media/atrium-calendar-feed/internal/model"
	"github.com/vumc-media/atrium-calendar-feed/internal/render"
	"github.com/vumc-media/atrium-calendar-feed/internal/weather"
)

// Pipeline runs the fetch -> split -> normalize -> select -> render chain.
// Apart from the HTTP fetch and the final file writes it is a pure
// transformation; "now" is injected so tests can pin the window.
type Pipeline struct {
	cfg     *config.Config
	fetcher *ics.Fetcher
	weather weather.Reader
}

// New wires a Pipeline from config. The weather reader is only constructed
// when the badge is enabled.
func New(cfg *config.Config) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		fetcher: ics.NewFetcher(cfg.CacheDir),
	}
	if cfg.Weather.Enabled {
		p.weather = weather.NewOpenMeteoReader(cfg.Weather.Latitude, cfg.Weather.Longitude)
	}
	return p
}

// SelectEvents fetches the feed and returns the selected agenda window.
// The fetch error is the only fatal condition; individual broken events
// degrade inside the normalizer.
func (p *Pipeline) SelectEvents(ctx context.Context, now time.Time) ([]model.Event, error) {
	text, err := p.fetcher.Fetch(ctx, p.cfg.FeedURL)
	if err != nil {
		return nil, err
	}

	blocks := ics.SplitEventBlocks(text)
	norm := ics.Normalizer{DisplayZone: p.cfg.Timezone}

	events := make([]model.Event, 0, len(blocks))
	for _, block := range blocks {
		events = append(events, norm.Normalize(block))
	}

	selected := ics.SelectWindow(events, now, p.cfg.HorizonDays, p.cfg.MaxItems)
	appLog.Info("events selected",
		"parsed", len(events),
		"selected", len(selected),
		"horizon_days", p.cfg.HorizonDays,
		"max_items", p.cfg.MaxItems,
	)
	return selected, nil
}

// Run executes one complete build: the rendered board is written to the
// configured output path and the agenda ICS export next to it.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	selected, err := p.SelectEvents(ctx, now)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	var wx *weather.Status
	if p.weather != nil {
		st, err := p.weather.Read(ctx)
		if err != nil {
			// The badge is decoration; a failed reading only costs us the badge.
			appLog.Warn("weather read failed, omitting badge", "err", err)
		} else {
			wx = &st
		}
	}

	loc := p.displayLocation()
	page := render.BuildPage(p.cfg.BoardTitle, selected, loc, wx, now)
	if err := render.WriteFile(p.cfg.OutputPath, page); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	exportPath := filepath.Join(filepath.Dir(p.cfg.OutputPath), "agenda.ics")
	if err := os.WriteFile(exportPath, []byte(feed.Export(selected, now)), 0o644); err != nil {
		return fmt.Errorf("build: write agenda export: %w", err)
	}

	appLog.Info("build complete", "output", p.cfg.OutputPath, "events", len(selected))
	return nil
}

func (p *Pipeline) displayLocation() *time.Location {
	loc, err := time.LoadLocation(p.cfg.Timezone)
	if err != nil {
		appLog.Warn("unknown display timezone, using UTC", "zone", p.cfg.Timezone)
		return time.UTC
	}
	return loc
}
