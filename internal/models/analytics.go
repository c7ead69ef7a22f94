package models

// StatusCount is the number of owned tasks in one status.
type StatusCount struct {
	Status TaskStatus
	Count  int64
}

// DailyCount is the number of tasks created on one UTC calendar day.
type DailyCount struct {
	// Day formatted as time.DateOnly.
	Day   string
	Count int64
}
