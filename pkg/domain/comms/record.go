// Package comms models stakeholder communication records and the
// detection of tags and tracker references inside their text.
package comms

import (
	"time"

	"github.com/google/uuid"
)

// Origin says how a record entered the store.
type Origin string

const (
	OriginComposed Origin = "composed"
	OriginImported Origin = "imported"
)

// RefKind is the kind of tracker entity a reference points at.
type RefKind string

const (
	RefIssue     RefKind = "issue"
	RefEpic      RefKind = "epic"
	RefMilestone RefKind = "milestone"
)

// Ref is an extracted tracker reference.
type Ref struct {
	Kind RefKind `json:"kind" yaml:"kind"`
	ID   int     `json:"id" yaml:"id"`
}

// Record is one communication (a sent update or an imported email).
type Record struct {
	ID           string    `json:"id" yaml:"id"`
	Origin       Origin    `json:"origin" yaml:"origin"`
	Subject      string    `json:"subject" yaml:"subject"`
	Body         string    `json:"body" yaml:"body"`
	SentAt       time.Time `json:"sent_at" yaml:"sent_at"`
	Stakeholders []string  `json:"stakeholders,omitempty" yaml:"stakeholders,omitempty"`
	Tags         []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Refs         []Ref     `json:"refs,omitempty" yaml:"refs,omitempty"`
}

// NewRecord builds a record with a fresh id and detected tags and refs.
func NewRecord(origin Origin, subject, body string, sentAt time.Time, stakeholders []string) Record {
	text := subject + "\n" + body
	return Record{
		ID:           uuid.NewString(),
		Origin:       origin,
		Subject:      subject,
		Body:         body,
		SentAt:       sentAt,
		Stakeholders: stakeholders,
		Tags:         DetectTags(text),
		Refs:         ExtractRefs(text, DefaultRefRules()),
	}
}

// Stakeholder is a person communications are addressed to.
type Stakeholder struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Decision is a recorded decision tied to communications.
type Decision struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Details  string    `json:"details" yaml:"details"`
	MadeAt   time.Time `json:"made_at" yaml:"made_at"`
	RecordID string    `json:"record_id,omitempty" yaml:"record_id,omitempty"`
}

// Document is an opaque user artifact referenced from the store.
type Document struct {
	ID      string    `json:"id" yaml:"id"`
	Title   string    `json:"title" yaml:"title"`
	URL     string    `json:"url" yaml:"url"`
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}
