// Package model holds the domain entities shared by the store, the services
// and the HTTP API.
package model

import "time"

// SourceType identifies the kind of input material a requirement was
// captured or generated from.
type SourceType string

const (
	SourceDocument SourceType = "document"
	SourceAudio    SourceType = "audio"
	SourceVideo    SourceType = "video"
	SourceManual   SourceType = "manual"
)

// IsValid returns whether the source type is one of the known kinds.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceDocument, SourceAudio, SourceVideo, SourceManual:
		return true
	default:
		return false
	}
}

// Priority is the business priority of a requirement.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Category classifies a requirement.
type Category string

const (
	CategoryFunctional    Category = "functional"
	CategoryNonFunctional Category = "non-functional"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryFunctional, CategoryNonFunctional, CategorySecurity, CategoryPerformance:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Customer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Project struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InputSource is the stored metadata of an uploaded document, audio or video
// file that requirements are generated from. The file contents themselves
// live with the collaborator that processes them.
type InputSource struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Type        SourceType `json:"type"`
	Name        string     `json:"name"`
	ContentType string     `json:"contentType,omitempty"`
	SizeBytes   int64      `json:"sizeBytes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Requirement struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	SourceID    string    `json:"sourceId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Session is a server-side login session. Token is the opaque value handed
// to the browser in a cookie.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
