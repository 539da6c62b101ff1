package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/college-counselor/internal/profile"
	"github.com/spigell/college-counselor/internal/ranking"
)

// Session statuses.
const (
	StatusInProgress = "In Progress"
	StatusComplete   = "Complete"
)

// ErrNotFound is returned when no document is stored for a session.
var ErrNotFound = errors.New("session document not found")

// SessionInfo is the header of a session document.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
	Counselor string    `json:"counselor"`
	Status    string    `json:"status"`
}

// Document is the persisted form of a counseling session.
type Document struct {
	SessionInfo       SessionInfo              `json:"session_info"`
	StudentProfile    *profile.Profile         `json:"student_profile"`
	ExtractionHistory []profile.HistoryEntry   `json:"extraction_history"`
	Recommendations   []ranking.Recommendation `json:"recommendations"`
}

// Encode renders the document as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session document: %w", err)
	}
	return data, nil
}

// Decode parses a document produced by Encode.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode session document: %w", err)
	}
	if doc.SessionInfo.SessionID == "" {
		return nil, errors.New("decode session document: session_id is missing")
	}
	return &doc, nil
}

// Store persists session documents.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Load(ctx context.Context, sessionID string) (*Document, error)
	// Delete removes the document of a session. Deleting a missing document is not an error.
	Delete(ctx context.Context, sessionID string) error
	Close() error
}
