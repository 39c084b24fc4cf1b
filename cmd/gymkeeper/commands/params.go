package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gymkeeper-backend/lib/scrapers/gymsite"
	"gymkeeper-backend/lib/textutil"
	"gymkeeper-backend/lib/timezone"
	"gymkeeper-backend/services/scheduler"
)

// the classes the gym actually runs; anything else is a typo
var activityCatalogue = []string{
	"Crossfit",
	"Trx",
	"Freestyle",
	"Metabolic",
	"Pilates",
	"Yoga",
	"Xtreme",
	"Insanity",
}

// canonicalActivity resolves a user-typed activity name against the
// catalogue, case-insensitively.
func canonicalActivity(name string) (string, error) {
	for _, known := range activityCatalogue {
		if textutil.EqualActivity(known, name) {
			return known, nil
		}
	}
	return "", fmt.Errorf(
		"unknown activity %q, expected one of: %s",
		name, strings.Join(activityCatalogue, ", "),
	)
}

// parseClassTime parses the CLI's DD-MM-YYYY-HH:MM form. The field
// bounds follow the site's own tolerance (minutes and hours up to 60
// are let through and left for the matcher to miss on).
func parseClassTime(value string) (time.Time, gymsite.Clock, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 4 {
		return time.Time{}, gymsite.Clock{}, fmt.Errorf(
			"bad date %q, expected DD-MM-YYYY-HH:MM", value)
	}

	day, err := boundedInt(parts[0], 1, 31)
	if err != nil {
		return time.Time{}, gymsite.Clock{}, fmt.Errorf("bad day in %q: %w", value, err)
	}
	month, err := boundedInt(parts[1], 1, 12)
	if err != nil {
		return time.Time{}, gymsite.Clock{}, fmt.Errorf("bad month in %q: %w", value, err)
	}
	year, err := boundedInt(parts[2], 1, 9999)
	if err != nil {
		return time.Time{}, gymsite.Clock{}, fmt.Errorf("bad year in %q: %w", value, err)
	}

	clockParts := strings.Split(parts[3], ":")
	if len(clockParts) != 2 {
		return time.Time{}, gymsite.Clock{}, fmt.Errorf(
			"bad time in %q, expected HH:MM", value)
	}
	hour, err := boundedInt(clockParts[0], 0, 60)
	if err != nil {
		return time.Time{}, gymsite.Clock{}, fmt.Errorf("bad hour in %q: %w", value, err)
	}
	minute, err := boundedInt(clockParts[1], 0, 60)
	if err != nil {
		return time.Time{}, gymsite.Clock{}, fmt.Errorf("bad minute in %q: %w", value, err)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, timezone.Location)
	return date, gymsite.Clock{Hour: hour, Minute: minute}, nil
}

func boundedInt(value string, min, max int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%d is out of range %d..%d", n, min, max)
	}
	return n, nil
}

// parseRequests turns an activity and one or more DD-MM-YYYY-HH:MM
// values into engine requests.
func parseRequests(email, activity string, dates []string) ([]scheduler.Request, error) {
	name, err := canonicalActivity(activity)
	if err != nil {
		return nil, err
	}

	var requests []scheduler.Request
	for _, value := range dates {
		date, start, err := parseClassTime(value)
		if err != nil {
			return nil, err
		}
		requests = append(requests, scheduler.Request{
			Email:    email,
			Activity: name,
			Date:     date,
			Start:    start,
		})
	}
	return requests, nil
}
