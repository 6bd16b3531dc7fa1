package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/runger/dopamenu/internal/intervention/model"
)

var (
	// ErrNotFound is returned when a decision or portfolio does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOutcome is returned for outcomes that cannot be recorded.
	ErrInvalidOutcome = errors.New("invalid outcome")
)

const keyLastIntervention = "last_intervention_unix_ms"

// Lifetime counters. They live in store_state and are never pruned.
const (
	keyTotalInterventions = "total_interventions"
	keyAcceptedCount      = "accepted_count"
	keyDismissedCount     = "dismissed_count"
	keyContinuedCount     = "continued_default_count"
)

var outcomeCounterKeys = map[model.OutcomeAction]string{
	model.OutcomeAccepted:         keyAcceptedCount,
	model.OutcomeDismissed:        keyDismissedCount,
	model.OutcomeContinuedDefault: keyContinuedCount,
}

// Config bounds how much history is kept.
type Config struct {
	MaxDecisions int
	MaxOutcomes  int
}

// DefaultConfig keeps the last 100 decisions and 50 outcomes.
func DefaultConfig() Config {
	return Config{MaxDecisions: 100, MaxOutcomes: 50}
}

// Record is a stored decision with the situation that produced it and the
// latest outcome recorded against it, if any.
type Record struct {
	Decision  model.Decision  `json:"decision"`
	Situation model.Situation `json:"situation"`
	Outcome   *model.Outcome  `json:"outcome,omitempty"`
}

// Stats are lifetime counts. Total is every decision shown; the others
// count recorded outcomes by action.
type Stats struct {
	Total     int
	Accepted  int
	Dismissed int
	Continued int
}

// AcceptanceRate returns Accepted/Total, or 0 before any decision.
func (s Stats) AcceptanceRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Total)
}

// Responded is the number of recorded outcomes.
func (s Stats) Responded() int {
	return s.Accepted + s.Dismissed + s.Continued
}

// Store manages decision and outcome persistence.
type Store struct {
	db     *sql.DB
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a store over an opened database.
func NewStore(db *sql.DB, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.MaxDecisions <= 0 {
		cfg.MaxDecisions = defaults.MaxDecisions
	}
	if cfg.MaxOutcomes <= 0 {
		cfg.MaxOutcomes = defaults.MaxOutcomes
	}
	return &Store{db: db, cfg: cfg, logger: logger, now: time.Now}
}

// RecordDecision stores d along with its situation and prunes the oldest
// decisions beyond MaxDecisions.
func (s *Store) RecordDecision(ctx context.Context, d model.Decision, sit model.Situation) error {
	if d.ID == "" {
		return errors.New("decision id is required")
	}

	decisionJSON, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode decision: %w", err)
	}
	situationJSON, err := json.Marshal(sit)
	if err != nil {
		return fmt.Errorf("failed to encode situation: %w", err)
	}

	ts := d.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO decisions (decision_id, situation_id, situation_type, primary_id, fallback,
			created_at_unix_ms, decision_json, situation_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.SituationID, string(sit.Type), d.Primary.ID, d.Fallback,
		ts.UnixMilli(), string(decisionJSON), string(situationJSON))
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM decisions WHERE seq NOT IN (
			SELECT seq FROM decisions ORDER BY created_at_unix_ms DESC, seq DESC LIMIT ?
		)
	`, s.cfg.MaxDecisions)
	if err != nil {
		return fmt.Errorf("failed to prune decisions: %w", err)
	}

	if err := incrementCounter(ctx, tx, keyTotalInterventions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decision: %w", err)
	}

	s.logger.Debug("recorded decision", "decision_id", d.ID, "primary", d.Primary.ID)
	return nil
}

// RecordOutcome stores o against an existing decision, prunes the oldest
// outcomes beyond MaxOutcomes and stamps the last intervention time.
// An accepted outcome without a candidate is attributed to the primary.
func (s *Store) RecordOutcome(ctx context.Context, o model.Outcome) (model.Outcome, error) {
	if o.InterventionID == "" {
		return o, fmt.Errorf("%w: decision id is required", ErrInvalidOutcome)
	}
	if !o.Action.IsValid() {
		return o, fmt.Errorf("%w: unknown action %q", ErrInvalidOutcome, o.Action)
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return o, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var decisionJSON string
	err = tx.QueryRowContext(ctx,
		`SELECT decision_json FROM decisions WHERE decision_id = ?`, o.InterventionID).Scan(&decisionJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return o, fmt.Errorf("%w: decision %s", ErrNotFound, o.InterventionID)
	}
	if err != nil {
		return o, fmt.Errorf("failed to load decision: %w", err)
	}

	var d model.Decision
	if err := json.Unmarshal([]byte(decisionJSON), &d); err != nil {
		return o, fmt.Errorf("failed to decode decision: %w", err)
	}

	if o.CandidateID == "" && o.Action == model.OutcomeAccepted {
		o.CandidateID = d.Primary.ID
	}
	if o.CandidateID != "" && !offered(d, o.CandidateID) {
		return o, fmt.Errorf("%w: candidate %q was not offered by decision %s",
			ErrInvalidOutcome, o.CandidateID, o.InterventionID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outcomes (decision_id, action, candidate_id, follow_through, ts_unix_ms)
		VALUES (?, ?, ?, ?, ?)
	`, o.InterventionID, string(o.Action), nullStr(o.CandidateID), nullBool(o.FollowThrough), o.Timestamp.UnixMilli())
	if err != nil {
		return o, fmt.Errorf("failed to insert outcome: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM outcomes WHERE seq NOT IN (
			SELECT seq FROM outcomes ORDER BY ts_unix_ms DESC, seq DESC LIMIT ?
		)
	`, s.cfg.MaxOutcomes)
	if err != nil {
		return o, fmt.Errorf("failed to prune outcomes: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO store_state (key, value) VALUES (?, ?)
	`, keyLastIntervention, strconv.FormatInt(o.Timestamp.UnixMilli(), 10))
	if err != nil {
		return o, fmt.Errorf("failed to stamp last intervention: %w", err)
	}

	if err := incrementCounter(ctx, tx, outcomeCounterKeys[o.Action]); err != nil {
		return o, err
	}

	if err := tx.Commit(); err != nil {
		return o, fmt.Errorf("failed to commit outcome: %w", err)
	}

	s.logger.Debug("recorded outcome", "decision_id", o.InterventionID, "action", o.Action)
	return o, nil
}

func offered(d model.Decision, candidateID string) bool {
	for _, c := range d.Candidates() {
		if c.ID == candidateID {
			return true
		}
	}
	return false
}

const selectRecord = `
	SELECT d.decision_json, d.situation_json,
		o.action, o.candidate_id, o.follow_through, o.ts_unix_ms
	FROM decisions d
	LEFT JOIN outcomes o ON o.seq = (
		SELECT MAX(seq) FROM outcomes WHERE decision_id = d.decision_id
	)
`

// GetDecision loads one decision by ID.
func (s *Store) GetDecision(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+` WHERE d.decision_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: decision %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// RecentDecisions returns up to limit decisions, newest first.
// A non-positive limit returns everything retained.
func (s *Store) RecentDecisions(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = s.cfg.MaxDecisions
	}

	rows, err := s.db.QueryContext(ctx,
		selectRecord+` ORDER BY d.created_at_unix_ms DESC, d.seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}
	return out, nil
}

// LatestPending returns the newest decision that has no outcome yet.
func (s *Store) LatestPending(ctx context.Context) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+`
		WHERE NOT EXISTS (SELECT 1 FROM outcomes x WHERE x.decision_id = d.decision_id)
		ORDER BY d.created_at_unix_ms DESC, d.seq DESC LIMIT 1
	`)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: no pending decision", ErrNotFound)
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// LastInterventionAt returns when the latest outcome was recorded, or nil
// if none ever was.
func (s *Store) LastInterventionAt(ctx context.Context) (*time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM store_state WHERE key = ?`, keyLastIntervention).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last intervention: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt last intervention value %q: %w", raw, err)
	}
	t := time.UnixMilli(ms)
	return &t, nil
}

// Stats reads the lifetime counters. Pruning decisions or outcomes does
// not lower them; Reset does.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM store_state WHERE key IN (?, ?, ?, ?)
	`, keyTotalInterventions, keyAcceptedCount, keyDismissedCount, keyContinuedCount)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var st Stats
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return Stats{}, fmt.Errorf("failed to scan stats: %w", err)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Stats{}, fmt.Errorf("corrupt counter %s=%q: %w", key, raw, err)
		}
		switch key {
		case keyTotalInterventions:
			st.Total = n
		case keyAcceptedCount:
			st.Accepted = n
		case keyDismissedCount:
			st.Dismissed = n
		case keyContinuedCount:
			st.Continued = n
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("failed to iterate stats: %w", err)
	}
	return st, nil
}

// incrementCounter bumps a lifetime counter inside tx.
func incrementCounter(ctx context.Context, tx *sql.Tx, key string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO store_state (key, value) VALUES (?, '1')
		ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)
	`, key)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", key, err)
	}
	return nil
}

// Reset deletes all decisions, outcomes and store state.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"outcomes", "decisions", "store_state"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	s.logger.Info("history reset")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		decisionJSON, situationJSON string
		action, candidateID         sql.NullString
		followThrough, ts           sql.NullInt64
	)
	if err := sc.Scan(&decisionJSON, &situationJSON, &action, &candidateID, &followThrough, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("failed to scan decision: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(decisionJSON), &rec.Decision); err != nil {
		return Record{}, fmt.Errorf("failed to decode decision: %w", err)
	}
	if err := json.Unmarshal([]byte(situationJSON), &rec.Situation); err != nil {
		return Record{}, fmt.Errorf("failed to decode situation: %w", err)
	}

	if action.Valid {
		o := &model.Outcome{
			InterventionID: rec.Decision.ID,
			Action:         model.OutcomeAction(action.String),
			CandidateID:    candidateID.String,
			Timestamp:      time.UnixMilli(ts.Int64),
		}
		if followThrough.Valid {
			v := followThrough.Int64 != 0
			o.FollowThrough = &v
		}
		rec.Outcome = o
	}
	return rec, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
