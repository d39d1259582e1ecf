// Package model defines the domain types used across the application.
package model

import "time"

// Feed describes one news source. Priority orders feeds in the daily digest;
// lower values win.
type Feed struct {
	Name     string
	URL      string
	Priority int
}

// Article is a single feed entry, typed at the ingestion boundary.
// Priority is copied from the owning feed so selection never has to
// dereference it.
type Article struct {
	Feed      Feed
	Title     string
	Link      string
	GUID      string
	Published time.Time
	Tags      []string // lowercase
	Priority  int
}

// Event is one calendar entry falling inside the run's day.
type Event struct {
	Calendar string
	Title    string
	Start    time.Time
	End      time.Time
}
