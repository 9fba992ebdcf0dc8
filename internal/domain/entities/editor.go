package entities

import "time"

// Editor is the author of revisions. Commits trust the editor id supplied by
// the caller: an unknown id gets a bare row holding only counters, which
// RegisterEditor can later fill in.
type Editor struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name" validate:"required,max=64"`
	Email            string    `json:"email,omitempty" validate:"required,email"`
	EditorTypeID     int64     `json:"editor_type_id" validate:"required,gt=0"`
	TotalRevisions   int       `json:"total_revisions"`
	RevisionsApplied int       `json:"revisions_applied"`
	CreatedAt        time.Time `json:"created_at"`
}
