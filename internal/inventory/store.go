package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mjones3/event-governance-poc/internal/db"
)

// ScanRun records one inventory scan across configured repositories.
type ScanRun struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Repos        []string   `json:"repos"`
	ServiceCount int        `json:"service_count"`
	EventCount   int        `json:"event_count"`
	OrphanCount  int        `json:"orphan_count"`
	Status       string     `json:"status"`
}

// Store persists scan runs, service facts and event flows.
type Store struct {
	db *db.DB
}

// NewStore creates an inventory store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// CreateScan inserts a new scan run in running state.
func (s *Store) CreateScan(ctx context.Context, repos []string) (*ScanRun, error) {
	run := &ScanRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Repos:     repos,
		Status:    "running",
	}
	if run.Repos == nil {
		run.Repos = []string{}
	}
	reposJSON, err := json.Marshal(run.Repos)
	if err != nil {
		return nil, fmt.Errorf("marshaling repos: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_runs (id, started_at, repos, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt, string(reposJSON), run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating scan run: %w", err)
	}
	return run, nil
}

// FinishScan marks a scan run completed or failed and records its counts.
func (s *Store) FinishScan(ctx context.Context, id, status string, serviceCount int, summary Summary) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE scan_runs SET finished_at=?, status=?, service_count=?, event_count=?, orphan_count=? WHERE id=?`,
		now, status, serviceCount, summary.TotalEvents, summary.OrphanedCount, id,
	)
	if err != nil {
		return fmt.Errorf("finishing scan run: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SaveFact persists one service fact under a scan run. The service ID is
// split on its first slash into repository and service columns.
func (s *Store) SaveFact(ctx context.Context, scanID string, f ServiceFact) error {
	repository, service := splitServiceID(f.ServiceID)

	published, err := json.Marshal(emptyIfNil(f.Published))
	if err != nil {
		return fmt.Errorf("marshaling published: %w", err)
	}
	consumed, err := json.Marshal(emptyIfNil(f.Consumed))
	if err != nil {
		return fmt.Errorf("marshaling consumed: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO service_facts (id, scan_id, service_id, repository, service, published, consumed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(scan_id, service_id) DO UPDATE SET published=excluded.published, consumed=excluded.consumed`,
		uuid.NewString(), scanID, f.ServiceID, repository, service,
		string(published), string(consumed),
	)
	if err != nil {
		return fmt.Errorf("saving service fact %s: %w", f.ServiceID, err)
	}
	return nil
}

// SaveFlows persists the event flows of a scan run, replacing any prior
// flows for the same run.
func (s *Store) SaveFlows(ctx context.Context, scanID string, flows []EventFlow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_flows WHERE scan_id=?`, scanID); err != nil {
		return fmt.Errorf("clearing flows: %w", err)
	}

	for _, f := range flows {
		publishers, err := json.Marshal(emptyIfNil(f.Publishers))
		if err != nil {
			return fmt.Errorf("marshaling publishers: %w", err)
		}
		consumers, err := json.Marshal(emptyIfNil(f.Consumers))
		if err != nil {
			return fmt.Errorf("marshaling consumers: %w", err)
		}
		orphaned := 0
		if f.IsOrphaned {
			orphaned = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO event_flows (id, scan_id, event_name, publishers, consumers, is_orphaned)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), scanID, f.EventName, string(publishers), string(consumers), orphaned,
		)
		if err != nil {
			return fmt.Errorf("saving flow %s: %w", f.EventName, err)
		}
	}

	return tx.Commit()
}

// ListFlows returns a scan run's flows sorted by event name. When
// orphanedOnly is set, only flows missing a publisher or consumer are
// returned.
func (s *Store) ListFlows(ctx context.Context, scanID string, orphanedOnly bool) ([]EventFlow, error) {
	query := `SELECT event_name, publishers, consumers, is_orphaned FROM event_flows WHERE scan_id=?`
	if orphanedOnly {
		query += ` AND is_orphaned=1`
	}
	query += ` ORDER BY event_name`

	rows, err := s.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("listing flows: %w", err)
	}
	defer rows.Close()

	result := []EventFlow{}
	for rows.Next() {
		f, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// GetFlow returns one event's flow within a scan run.
func (s *Store) GetFlow(ctx context.Context, scanID, eventName string) (*EventFlow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT event_name, publishers, consumers, is_orphaned FROM event_flows WHERE scan_id=? AND event_name=?`,
		scanID, eventName,
	)
	f, err := scanFlow(row)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFacts returns the service facts of a scan run sorted by service ID.
func (s *Store) ListFacts(ctx context.Context, scanID string) ([]ServiceFact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT service_id, published, consumed FROM service_facts WHERE scan_id=? ORDER BY service_id`,
		scanID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing service facts: %w", err)
	}
	defer rows.Close()

	result := []ServiceFact{}
	for rows.Next() {
		var f ServiceFact
		var published, consumed string
		if err := rows.Scan(&f.ServiceID, &published, &consumed); err != nil {
			return nil, fmt.Errorf("scanning service fact: %w", err)
		}
		if err := json.Unmarshal([]byte(published), &f.Published); err != nil {
			return nil, fmt.Errorf("unmarshaling published: %w", err)
		}
		if err := json.Unmarshal([]byte(consumed), &f.Consumed); err != nil {
			return nil, fmt.Errorf("unmarshaling consumed: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// LatestScan returns the most recently started scan run, or sql.ErrNoRows
// when none exists.
func (s *Store) LatestScan(ctx context.Context) (*ScanRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, repos, service_count, event_count, orphan_count, status
		 FROM scan_runs ORDER BY started_at DESC, id DESC LIMIT 1`,
	)
	return scanRun(row)
}

// ListScans returns all scan runs, newest first.
func (s *Store) ListScans(ctx context.Context) ([]ScanRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, repos, service_count, event_count, orphan_count, status
		 FROM scan_runs ORDER BY started_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scan runs: %w", err)
	}
	defer rows.Close()

	result := []ScanRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *run)
	}
	return result, rows.Err()
}

// SaveRegistration records a successful schema registry registration.
func (s *Store) SaveRegistration(ctx context.Context, subject, eventName string, schemaID int, registryURL string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schema_registrations (id, subject, event_name, schema_id, registry_url) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), subject, eventName, schemaID, registryURL,
	)
	if err != nil {
		return fmt.Errorf("saving registration %s: %w", subject, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlow(row rowScanner) (EventFlow, error) {
	var f EventFlow
	var publishers, consumers string
	var orphaned int
	if err := row.Scan(&f.EventName, &publishers, &consumers, &orphaned); err != nil {
		return f, fmt.Errorf("scanning flow: %w", err)
	}
	if err := json.Unmarshal([]byte(publishers), &f.Publishers); err != nil {
		return f, fmt.Errorf("unmarshaling publishers: %w", err)
	}
	if err := json.Unmarshal([]byte(consumers), &f.Consumers); err != nil {
		return f, fmt.Errorf("unmarshaling consumers: %w", err)
	}
	f.IsOrphaned = orphaned != 0
	return f, nil
}

func scanRun(row rowScanner) (*ScanRun, error) {
	var run ScanRun
	var reposJSON string
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.StartedAt, &finished, &reposJSON,
		&run.ServiceCount, &run.EventCount, &run.OrphanCount, &run.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning scan run: %w", err)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(reposJSON), &run.Repos); err != nil {
		return nil, fmt.Errorf("unmarshaling repos: %w", err)
	}
	return &run, nil
}

func splitServiceID(id string) (repository, service string) {
	if i := strings.Index(id, "/"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
