package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/studyplanner-backend/internal/domain"
	"github.com/heartmarshall/studyplanner-backend/internal/service/srs/fsrs"
)

func parseID(name, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s: %w", name, err)
	}
	return id, nil
}

// resolveDay parses YYYY-MM-DD or returns the local calendar day of now.
func resolveDay(raw string, now time.Time, tz *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.LocalDay(now, tz), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: want YYYY-MM-DD: %w", err)
	}
	return d, nil
}

// parseRating accepts 1-4 or again/hard/good/easy.
func parseRating(raw string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "again":
		return int(fsrs.Again), nil
	case "hard":
		return int(fsrs.Hard), nil
	case "good":
		return int(fsrs.Good), nil
	case "easy":
		return int(fsrs.Easy), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !fsrs.Rating(n).IsValid() {
		return 0, fmt.Errorf("--rating: want 1-4 or again/hard/good/easy, got %q", raw)
	}
	return n, nil
}

// optionalHours returns nil when the flag was not set.
func optionalHours(set bool, v float64) (*float64, error) {
	if !set {
		return nil, nil
	}
	if v < 0 {
		return nil, fmt.Errorf("--hours must not be negative")
	}
	return &v, nil
}
