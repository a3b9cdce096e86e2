package event_bus

import "time"

const (
	EntryCreated        EventType = "entry.created"
	EntryUpdated        EventType = "entry.updated"
	EntryDeleted        EventType = "entry.deleted"
	ProjectionComputed  EventType = "projection.computed"
	OccurrencesExpanded EventType = "occurrences.expanded"
)

// EntryMutation describes a create/update/delete of an entry series for the
// analytics side channel.
type EntryMutation struct {
	SeriesId       int64
	EntryType      string
	RecurrenceType string
	Scope          string
	SplitSeriesId  int64 // successor series id when a future-scope edit split the series
}

type ProjectionRequest struct {
	TargetDate time.Time
}

type OccurrenceQuery struct {
	From    time.Time
	To      time.Time
	Results int
}
