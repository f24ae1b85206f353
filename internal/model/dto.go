package model

// CatalogCourse and CatalogSection mirror the JSON catalogs the caller may
// attach to the upload form; they feed the course/section mapping.
type CatalogCourse struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

type CatalogSection struct {
	ID       any    `json:"id"`
	CourseID any    `json:"courseId"`
	Name     string `json:"name"`
}

// QueuedImport is the payload enqueued for the async import path. The raw
// file lives in object storage; catalogs ride along in the message.
type QueuedImport struct {
	JobID     string `json:"job_id"`
	ObjectKey string `json:"object_key"`
	Filename  string `json:"filename"`
	Year      int    `json:"year"`
	Courses   string `json:"courses,omitempty"`
	Sections  string `json:"sections,omitempty"`
}

// ImportSummary is the terminal result of one import run.
type ImportSummary struct {
	Processed      int      `json:"processed"`
	Saved          int      `json:"saved"`
	Activities     int      `json:"activities"`
	Errors         []string `json:"errors"`
	TotalErrors    int      `json:"totalErrors"`
	Year           int      `json:"year"`
	YearCountAfter *int64   `json:"yearCountAfter"`
	Message        string   `json:"message"`
}
