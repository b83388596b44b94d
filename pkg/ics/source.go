package ics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/pkg/event"
	log "github.com/sirupsen/logrus"
)

const maxFeedSize = 10 << 20

// Source reads one subscribed ICS feed.
type Source struct {
	id             string
	url            string
	client         *http.Client
	location       *time.Location
	maxOccurrences int
}

func NewSource(feed config.ICSSource, cfg config.ICS, loc *time.Location) *Source {
	return &Source{
		id:             feed.Id,
		url:            feed.URL,
		client:         &http.Client{Timeout: 15 * time.Second},
		location:       loc,
		maxOccurrences: cfg.MaxOccurrences,
	}
}

// NewSources builds a source per configured feed.
func NewSources(cfg config.ICS, loc *time.Location) []*Source {
	sources := make([]*Source, 0, len(cfg.Sources))
	for _, feed := range cfg.Sources {
		sources = append(sources, NewSource(feed, cfg, loc))
	}
	return sources
}

func (s *Source) Name() string {
	return "ics:" + s.id
}

func (s *Source) GetEvents(ctx context.Context, from, to time.Time) ([]event.RawEvent, error) {
	body, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	parsed, err := Parse(body, s.location)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ICS feed %s: %w", s.id, err)
	}
	events := Expand(s.id, parsed, from, to, s.maxOccurrences)
	log.Debugf("ICS feed %s: %d events, %d occurrences in window", s.id, len(parsed), len(events))
	return events, nil
}

func (s *Source) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download ICS feed %s: %w", s.id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download ICS feed %s: unexpected status %s", s.id, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
}
