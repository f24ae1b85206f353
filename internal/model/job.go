package model

import "time"

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ImportJob is the progress side-channel document polled by clients while an
// import runs. It is mutated throughout the run and becomes immutable once
// the status reaches a terminal value.
type ImportJob struct {
	ID         string     `bson:"id" json:"id"`
	Type       string     `bson:"type" json:"type"`
	Status     JobStatus  `bson:"status" json:"status"`
	Year       int        `bson:"year" json:"year"`
	TotalRows  int        `bson:"totalRows" json:"totalRows"`
	Processed  int        `bson:"processed" json:"processed"`
	Saved      int        `bson:"saved" json:"saved"`
	Activities int        `bson:"activities" json:"activities"`
	Errors     int        `bson:"errors" json:"errors"`
	Percent    int        `bson:"percent" json:"percent"`
	Message    string     `bson:"message" json:"message"`
	StartedAt  time.Time  `bson:"startedAt" json:"startedAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
	FinishedAt *time.Time `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
}

func (j *ImportJob) DocumentID() string { return j.ID }
