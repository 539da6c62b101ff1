package conversation

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/ai"
	"github.com/spigell/college-counselor/internal/profile"
	"github.com/spigell/college-counselor/internal/ranking"
	"github.com/spigell/college-counselor/internal/readiness"
	"github.com/spigell/college-counselor/internal/session"
	"github.com/spigell/college-counselor/internal/storage"
)

// maxTranscript bounds the transcript kept per session.
const maxTranscript = 40

// Session is the state of one counseling conversation. Turns on a session are serialized by its mutex.
type Session struct {
	mu sync.Mutex

	// stats is republished at the end of every turn and read without mu.
	stats atomic.Pointer[sessionStats]

	// hydrated is set once the persisted document, if any, has been loaded. closed marks a reset session.
	hydrated bool
	closed   bool

	id              string
	created         time.Time
	updated         time.Time
	profile         *profile.Profile
	history         []profile.HistoryEntry
	transcript      []ai.Message
	ready           bool
	assessment      *readiness.Assessment
	recommendations []ranking.Recommendation
	merges          int
	turns           int
}

// NewSession returns an empty session.
func NewSession(id string, now time.Time) *Session {
	s := &Session{
		id:              id,
		created:         now,
		updated:         now,
		profile:         profile.New(),
		history:         make([]profile.HistoryEntry, 0),
		recommendations: make([]ranking.Recommendation, 0),
	}
	s.publishLocked()
	return s
}

// NewSessionStore creates a session store whose sessions start empty.
func NewSessionStore(cfg session.Config, logger *zap.Logger) *session.Store[*Session] {
	return session.NewStore(cfg, func(id string) *Session {
		return NewSession(id, time.Now())
	}, logger)
}

// restoreLocked replaces the session state with a persisted document.
func (s *Session) restoreLocked(doc *storage.Document) {
	s.profile = doc.StudentProfile.Clone()
	s.history = slices.Clone(doc.ExtractionHistory)
	if s.history == nil {
		s.history = make([]profile.HistoryEntry, 0)
	}
	s.recommendations = slices.Clone(doc.Recommendations)
	if s.recommendations == nil {
		s.recommendations = make([]ranking.Recommendation, 0)
	}
	s.ready = doc.SessionInfo.Status == storage.StatusComplete
	if !doc.SessionInfo.Created.IsZero() {
		s.created = doc.SessionInfo.Created
	}
	if !doc.SessionInfo.Updated.IsZero() {
		s.updated = doc.SessionInfo.Updated
	}
	s.merges = len(s.history)
	s.publishLocked()
}

func (s *Session) appendTranscript(msgs ...ai.Message) {
	s.transcript = append(s.transcript, msgs...)
	if len(s.transcript) > maxTranscript {
		s.transcript = slices.Clone(s.transcript[len(s.transcript)-maxTranscript:])
	}
}

// Snapshot is a consistent copy of a session.
type Snapshot struct {
	SessionID       string                   `json:"session_id"`
	Created         time.Time                `json:"created"`
	Updated         time.Time                `json:"updated"`
	Profile         *profile.Profile         `json:"profile"`
	History         []profile.HistoryEntry   `json:"extraction_history"`
	Transcript      []ai.Message             `json:"transcript,omitempty"`
	Ready           bool                     `json:"sufficient_info"`
	Assessment      *readiness.Assessment    `json:"assessment,omitempty"`
	Recommendations []ranking.Recommendation `json:"recommendations"`
	Merges          int                      `json:"merges"`
	Turns           int                      `json:"turns"`
}

func (s *Session) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		SessionID:       s.id,
		Created:         s.created,
		Updated:         s.updated,
		Profile:         s.profile.Clone(),
		History:         slices.Clone(s.history),
		Transcript:      slices.Clone(s.transcript),
		Ready:           s.ready,
		Recommendations: slices.Clone(s.recommendations),
		Merges:          s.merges,
		Turns:           s.turns,
	}
	if s.assessment != nil {
		a := *s.assessment
		a.Missing = slices.Clone(a.Missing)
		snap.Assessment = &a
	}
	return snap
}

func (s *Session) documentLocked(counselor string) *storage.Document {
	status := storage.StatusInProgress
	if s.ready {
		status = storage.StatusComplete
	}
	return &storage.Document{
		SessionInfo: storage.SessionInfo{
			SessionID: s.id,
			Created:   s.created,
			Updated:   s.updated,
			Counselor: counselor,
			Status:    status,
		},
		StudentProfile:    s.profile.Clone(),
		ExtractionHistory: slices.Clone(s.history),
		Recommendations:   slices.Clone(s.recommendations),
	}
}

// Summary describes a session in listings.
type Summary struct {
	SessionID    string    `json:"session_id"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
	FieldsFilled int       `json:"fields_filled"`
	Ready        bool      `json:"sufficient_info"`
	Turns        int       `json:"turns"`
}

type sessionStats struct {
	summary Summary
	filled  []string
	merges  int
}

func (s *Session) publishLocked() {
	filled := make([]string, 0, len(profile.Fields))
	for _, f := range profile.Fields {
		if s.profile.Has(f.Name) {
			filled = append(filled, f.Name)
		}
	}
	s.stats.Store(&sessionStats{
		summary: Summary{
			SessionID:    s.id,
			Created:      s.created,
			Updated:      s.updated,
			FieldsFilled: len(filled),
			Ready:        s.ready,
			Turns:        s.turns,
		},
		filled: filled,
		merges: s.merges,
	})
}

// summary reads the stats of the last finished turn, so it never waits for a turn in progress.
func (s *Session) summary() Summary {
	return s.stats.Load().summary
}
