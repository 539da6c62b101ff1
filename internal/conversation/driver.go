package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/ai"
	"github.com/spigell/college-counselor/internal/catalog"
	"github.com/spigell/college-counselor/internal/logger"
	"github.com/spigell/college-counselor/internal/profile"
	"github.com/spigell/college-counselor/internal/ranking"
	"github.com/spigell/college-counselor/internal/readiness"
	"github.com/spigell/college-counselor/internal/session"
	"github.com/spigell/college-counselor/internal/storage"
)

const (
	// DefaultCounselor is the persona name used in replies and documents.
	DefaultCounselor = "Lauren"

	defaultOracleTimeout  = 30 * time.Second
	defaultStorageTimeout = 5 * time.Second
)

var (
	// ErrEmptyMessage is returned for blank chat messages.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrSessionNotFound is returned for unknown sessions.
	ErrSessionNotFound = errors.New("session not found")
)

// Config tunes the driver.
type Config struct {
	Counselor      string        `mapstructure:"counselor"`
	OracleTimeout  time.Duration `mapstructure:"oracle-timeout"`
	StorageTimeout time.Duration `mapstructure:"storage-timeout"`
}

// Deps are the collaborators of the driver. Extractor, Responder and Evaluator are optional: without
// them no facts are extracted, replies are built locally and readiness uses the fallback heuristic.
type Deps struct {
	Extractor ai.Extractor
	Responder ai.Responder
	Evaluator *readiness.Evaluator
	Ranker    *ranking.Ranker
	Catalog   *catalog.Catalog
	Sessions  *session.Store[*Session]
	Storage   storage.Store
	Logger    *zap.Logger
	Now       func() time.Time
}

// Driver runs counseling turns: extract, merge, assess, rank, reply and persist.
type Driver struct {
	cfg       Config
	extractor ai.Extractor
	responder ai.Responder
	evaluator *readiness.Evaluator
	ranker    *ranking.Ranker
	catalog   *catalog.Catalog
	sessions  *session.Store[*Session]
	storage   storage.Store
	logger    *zap.Logger
	now       func() time.Time
}

// TurnResult is the outcome of one message.
type TurnResult struct {
	SessionID       string                   `json:"session_id"`
	Reply           string                   `json:"response"`
	Profile         *profile.Profile         `json:"profile"`
	Ready           bool                     `json:"sufficient_info"`
	JustReady       bool                     `json:"just_ready"`
	Extracted       []string                 `json:"extracted_fields"`
	Assessment      *readiness.Assessment    `json:"assessment,omitempty"`
	Recommendations []ranking.Recommendation `json:"recommendations,omitempty"`
}

// New validates deps and creates a driver.
func New(cfg Config, deps Deps) (*Driver, error) {
	if deps.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}

	if cfg.Counselor = strings.TrimSpace(cfg.Counselor); cfg.Counselor == "" {
		cfg.Counselor = DefaultCounselor
	}
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = defaultOracleTimeout
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = defaultStorageTimeout
	}

	d := &Driver{
		cfg:       cfg,
		extractor: deps.Extractor,
		responder: deps.Responder,
		evaluator: deps.Evaluator,
		ranker:    deps.Ranker,
		catalog:   deps.Catalog,
		sessions:  deps.Sessions,
		storage:   deps.Storage,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.evaluator == nil {
		d.evaluator = readiness.NewEvaluator(nil, cfg.OracleTimeout, d.logger)
	}
	if d.ranker == nil {
		d.ranker = ranking.New()
	}
	if d.storage == nil {
		d.storage = storage.Nop{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// Counselor returns the persona name.
func (d *Driver) Counselor() string {
	return d.cfg.Counselor
}

// Catalog returns the active catalog.
func (d *Driver) Catalog() *catalog.Catalog {
	return d.catalog
}

// Ranker returns the ranker in use.
func (d *Driver) Ranker() *ranking.Ranker {
	return d.ranker
}

// Handle processes one message for sessionID. An empty id starts a new session.
func (d *Driver) Handle(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	sessionID = strings.TrimSpace(sessionID)
	id, sess, created, err := d.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	log := logger.WithSession(d.logger, id, d.cfg.Counselor)
	if created {
		log.Info("session started")
	}
	if !sess.hydrated {
		sess.hydrated = true
		// A generated id cannot have a stored document.
		if sessionID != "" {
			d.restore(ctx, log, sess)
		}
	}

	now := d.now()
	sess.turns++

	accepted, extracted := d.mergeFacts(ctx, log, sess, message, now)

	justReady := false
	if !sess.ready {
		sess.assessment = d.evaluator.Assess(ctx, sess.profile)
		if sess.assessment.Ready {
			sess.ready = true
			justReady = true
			log.Info("profile ready for recommendations",
				zap.String("source", sess.assessment.Source),
				zap.Float64("confidence", sess.assessment.Confidence),
				zap.Int("fields_filled", sess.profile.FilledCount()),
			)
		}
	}

	if sess.ready {
		sess.recommendations = d.ranker.Rank(sess.profile, d.catalog)
	}

	reply := d.compose(ctx, log, sess, message, justReady)
	sess.appendTranscript(
		ai.Message{Role: ai.RoleUser, Content: message},
		ai.Message{Role: ai.RoleAssistant, Content: reply},
	)
	sess.updated = now

	if accepted || justReady {
		d.persist(ctx, log, sess)
	}

	sess.publishLocked()

	snap := sess.snapshotLocked()
	result := &TurnResult{
		SessionID:  id,
		Reply:      reply,
		Profile:    snap.Profile,
		Ready:      snap.Ready,
		JustReady:  justReady,
		Extracted:  extracted,
		Assessment: snap.Assessment,
	}
	if snap.Ready {
		result.Recommendations = snap.Recommendations
	}
	return result, nil
}

// acquire returns the session for id with its mutex held. A session closed by Reset while the caller waited
// for the lock is skipped in favour of a fresh one.
func (d *Driver) acquire(id string) (string, *Session, bool, error) {
	for {
		sid, sess, created, err := d.sessions.GetOrCreate(id)
		if err != nil {
			return "", nil, false, err
		}
		sess.mu.Lock()
		if !sess.closed {
			return sid, sess, created, nil
		}
		sess.mu.Unlock()
		id = sid
	}
}

// restore loads the persisted document of a session that is not in memory, for example after eviction.
func (d *Driver) restore(ctx context.Context, log *zap.Logger, sess *Session) {
	loadCtx, cancel := context.WithTimeout(ctx, d.cfg.StorageTimeout)
	defer cancel()

	doc, err := d.storage.Load(loadCtx, sess.id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return
	case err != nil:
		log.Warn("loading session document failed, starting empty", zap.Error(err))
		return
	}

	sess.restoreLocked(doc)
	log.Info("session restored from storage",
		zap.Int("fields_filled", sess.profile.FilledCount()),
		zap.Bool("ready", sess.ready),
	)
}

func (d *Driver) mergeFacts(ctx context.Context, log *zap.Logger, sess *Session, message string, now time.Time) (bool, []string) {
	extracted := make([]string, 0)
	if d.extractor == nil {
		return false, extracted
	}

	extractCtx, cancel := context.WithTimeout(ctx, d.cfg.OracleTimeout)
	defer cancel()

	facts, err := d.extractor.Extract(extractCtx, message, sess.profile.NonEmpty())
	if err != nil {
		log.Warn("extraction failed, no facts this turn", zap.Error(err))
		return false, extracted
	}
	if facts.Len() == 0 {
		log.Debug("nothing extracted")
		return false, extracted
	}

	res, err := profile.Merge(sess.profile, facts, message, now)
	if err != nil {
		log.Warn("profile update rejected", zap.Error(err))
		return false, extracted
	}
	if !res.Updated() {
		return false, extracted
	}

	sess.profile = res.Profile
	sess.history = append(sess.history, res.Entry)
	sess.merges++

	log.Info("profile updated",
		zap.Strings("fields", res.Entry.ExtractedFields),
		zap.Int("total_fields", res.Entry.TotalFieldsNow),
	)
	return true, append(extracted, res.Entry.ExtractedFields...)
}

func (d *Driver) compose(ctx context.Context, log *zap.Logger, sess *Session, message string, justReady bool) string {
	focus := ""
	if sess.assessment != nil {
		focus = sess.assessment.FocusHint
	}

	if d.responder != nil {
		replyCtx, cancel := context.WithTimeout(ctx, d.cfg.OracleTimeout)
		defer cancel()

		reply, err := d.responder.Reply(replyCtx, &ai.ReplyRequest{
			Counselor:       d.cfg.Counselor,
			Message:         message,
			History:         sess.transcript,
			Profile:         sess.profile.NonEmpty(),
			Ready:           sess.ready,
			JustReady:       justReady,
			FocusHint:       focus,
			Recommendations: sess.recommendations,
		})
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		log.Warn("reply composition failed, using fallback", zap.Error(err))
	}

	return fallbackReply(sess.ready, justReady, focus, sess.recommendations)
}

func fallbackReply(ready, justReady bool, focus string, recs []ranking.Recommendation) string {
	if !ready || len(recs) == 0 {
		if strings.TrimSpace(focus) == "" {
			focus = "basic academic information"
		}
		return fmt.Sprintf("Thanks for sharing! To point you toward the right colleges, could you tell me more about your %s?", focus)
	}

	names := make([]string, 0, 3)
	for i, rec := range recs {
		if i == 3 {
			break
		}
		names = append(names, rec.Name)
	}

	if justReady {
		return fmt.Sprintf("Thanks, I have enough to suggest some colleges. Your strongest matches are %s. "+
			"Ask me about any of them, or tell me more and I will refine the list.", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Noted. Your current top matches are %s.", strings.Join(names, ", "))
}

func (d *Driver) persist(ctx context.Context, log *zap.Logger, sess *Session) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.StorageTimeout)
	defer cancel()

	if err := d.storage.Save(saveCtx, sess.documentLocked(d.cfg.Counselor)); err != nil {
		log.Error("saving session document failed", zap.Error(err))
		return
	}
	log.Debug("session document saved")
}

// Reset drops the session from memory and deletes its stored document. It reports whether the session was
// in memory.
func (d *Driver) Reset(ctx context.Context, sessionID string) (bool, error) {
	log := logger.WithSession(d.logger, sessionID, d.cfg.Counselor)

	sess, ok := d.sessions.Get(sessionID)
	removed := d.sessions.Delete(sessionID)
	if ok {
		// Waits for a turn in progress; its document is deleted below.
		sess.mu.Lock()
		sess.closed = true
		sess.mu.Unlock()
	}

	if session.ValidID(sessionID) {
		deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.StorageTimeout)
		defer cancel()

		if err := d.storage.Delete(deleteCtx, sessionID); err != nil {
			log.Error("deleting session document failed", zap.Error(err))
			return removed, fmt.Errorf("delete session %s: %w", sessionID, err)
		}
	}

	log.Info("session reset", zap.Bool("in_memory", removed))
	return removed, nil
}

// Snapshot returns a copy of the in-memory session.
func (d *Driver) Snapshot(sessionID string) (*Snapshot, bool) {
	sess, ok := d.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), true
}

// Document returns the session document, reading persisted storage when the session is not in memory.
func (d *Driver) Document(ctx context.Context, sessionID string) (*storage.Document, error) {
	if sess, ok := d.sessions.Get(sessionID); ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.documentLocked(d.cfg.Counselor), nil
	}
	if !session.ValidID(sessionID) {
		return nil, ErrSessionNotFound
	}

	loadCtx, cancel := context.WithTimeout(ctx, d.cfg.StorageTimeout)
	defer cancel()

	doc, err := d.storage.Load(loadCtx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return doc, err
}

// Sessions lists in-memory sessions in creation order.
func (d *Driver) Sessions() []Summary {
	summaries := make([]Summary, 0, d.sessions.Len())
	d.sessions.Range(func(_ session.Info, sess *Session) bool {
		summaries = append(summaries, sess.summary())
		return true
	})
	return summaries
}

// Recommend ranks a directly supplied profile. n is capped at the ranker limit.
func (d *Driver) Recommend(p *profile.Profile, n int) []ranking.Recommendation {
	return d.ranker.RankN(p, d.catalog, n)
}

// RecommendFor ranks the current profile of a session, whether or not it is ready.
func (d *Driver) RecommendFor(sessionID string, n int) ([]ranking.Recommendation, error) {
	snap, ok := d.Snapshot(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return d.Recommend(snap.Profile, n), nil
}
