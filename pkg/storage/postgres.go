package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgx connection pool. Every
// entity gets its own table; TEXT[] array columns are used only where a
// value is itself a list (tags, studies) rather than reaching for a generic
// blob column, so the schema stays queryable.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and verifies the connection with a
// ping before returning.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

type txKey struct{}

type pgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *PostgresStore) db(ctx context.Context) pgxConn {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// Atomic runs fn inside a single Postgres transaction, committing on a nil
// return and rolling back otherwise.
func (s *PostgresStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Pool returns the underlying connection pool so callers (the River job
// queue, in cmd/coordinator) can share it instead of opening a second one.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func notFoundOr(err error, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return cerrors.NotFound(entity, id)
	}
	return fmt.Errorf("storage: %s %s: %w", entity, id, err)
}

// Task Services

func (s *PostgresStore) CreateTaskService(ctx context.Context, ts *types.TaskService) error {
	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO task_services (id, uuid, name, description, url, author, enabled, consecutive_failures, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ts.ID, ts.UUID, ts.Name, ts.Description, ts.URL, ts.Author, ts.Enabled, ts.ConsecutiveFailures, ts.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: create task_service: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTaskService(ctx context.Context, id string) (*types.TaskService, error) {
	ts := &types.TaskService{}
	err := s.db(ctx).QueryRow(ctx, `
		SELECT id, uuid, name, description, url, author, enabled, consecutive_failures, created_at
		FROM task_services WHERE id = $1`, id,
	).Scan(&ts.ID, &ts.UUID, &ts.Name, &ts.Description, &ts.URL, &ts.Author, &ts.Enabled, &ts.ConsecutiveFailures, &ts.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "task_service", id)
	}
	return ts, nil
}

func (s *PostgresStore) listTaskServices(ctx context.Context, where string) ([]*types.TaskService, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, uuid, name, description, url, author, enabled, consecutive_failures, created_at
		FROM task_services `+where+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list task_services: %w", err)
	}
	defer rows.Close()

	var out []*types.TaskService
	for rows.Next() {
		ts := &types.TaskService{}
		if err := rows.Scan(&ts.ID, &ts.UUID, &ts.Name, &ts.Description, &ts.URL, &ts.Author, &ts.Enabled, &ts.ConsecutiveFailures, &ts.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan task_service: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListTaskServices(ctx context.Context) ([]*types.TaskService, error) {
	return s.listTaskServices(ctx, "")
}

func (s *PostgresStore) ListEnabledTaskServices(ctx context.Context) ([]*types.TaskService, error) {
	return s.listTaskServices(ctx, "WHERE enabled")
}

func (s *PostgresStore) UpdateTaskService(ctx context.Context, ts *types.TaskService) error {
	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE task_services SET name=$2, description=$3, url=$4, author=$5, enabled=$6, consecutive_failures=$7
		WHERE id=$1`, ts.ID, ts.Name, ts.Description, ts.URL, ts.Author, ts.Enabled, ts.ConsecutiveFailures)
	if err != nil {
		return fmt.Errorf("storage: update task_service %s: %w", ts.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.NotFound("task_service", ts.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteTaskService(ctx context.Context, id string) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM task_services WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("storage: delete task_service %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.NotFound("task_service", id)
	}
	return nil
}

// Releases

func (s *PostgresStore) CreateRelease(ctx context.Context, r *types.Release) error {
	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO releases (id, uuid, name, description, author, tags, studies, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UUID, r.Name, r.Description, r.Author, r.Tags, r.Studies, r.State, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: create release: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRelease(ctx context.Context, id string) (*types.Release, error) {
	r := &types.Release{}
	err := s.db(ctx).QueryRow(ctx, `
		SELECT id, uuid, name, description, author, tags, studies, state, created_at
		FROM releases WHERE id = $1`, id,
	).Scan(&r.ID, &r.UUID, &r.Name, &r.Description, &r.Author, &r.Tags, &r.Studies, &r.State, &r.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "release", id)
	}
	return r, nil
}

func (s *PostgresStore) ListReleases(ctx context.Context) ([]*types.Release, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, uuid, name, description, author, tags, studies, state, created_at
		FROM releases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list releases: %w", err)
	}
	defer rows.Close()

	var out []*types.Release
	for rows.Next() {
		r := &types.Release{}
		if err := rows.Scan(&r.ID, &r.UUID, &r.Name, &r.Description, &r.Author, &r.Tags, &r.Studies, &r.State, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan release: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateRelease(ctx context.Context, r *types.Release) error {
	tag, err := s.db(ctx).Exec(ctx, `UPDATE releases SET state=$2 WHERE id=$1`, r.ID, r.State)
	if err != nil {
		return fmt.Errorf("storage: update release %s: %w", r.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.NotFound("release", r.ID)
	}
	return nil
}

// Tasks

func (s *PostgresStore) CreateTask(ctx context.Context, t *types.Task) error {
	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO tasks (id, uuid, release_id, task_service_id, state, progress, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UUID, t.ReleaseID, t.TaskServiceID, t.State, t.Progress, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: create task: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	t := &types.Task{}
	err := s.db(ctx).QueryRow(ctx, `
		SELECT id, uuid, release_id, task_service_id, state, progress, created_at
		FROM tasks WHERE id = $1`, id,
	).Scan(&t.ID, &t.UUID, &t.ReleaseID, &t.TaskServiceID, &t.State, &t.Progress, &t.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "task", id)
	}
	return t, nil
}

func (s *PostgresStore) listTasks(ctx context.Context, where string, arg string) ([]*types.Task, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, uuid, release_id, task_service_id, state, progress, created_at
		FROM tasks WHERE `+where+` ORDER BY id`, arg)
	if err != nil {
		return nil, fmt.Errorf("storage: list tasks: %w", err)
	}
	defer rows.Close()

	var out []*types.Task
	for rows.Next() {
		t := &types.Task{}
		if err := rows.Scan(&t.ID, &t.UUID, &t.ReleaseID, &t.TaskServiceID, &t.State, &t.Progress, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListTasksByRelease(ctx context.Context, releaseID string) ([]*types.Task, error) {
	return s.listTasks(ctx, "release_id = $1", releaseID)
}

func (s *PostgresStore) ListTasksByTaskService(ctx context.Context, taskServiceID string) ([]*types.Task, error) {
	return s.listTasks(ctx, "task_service_id = $1", taskServiceID)
}

func (s *PostgresStore) UpdateTask(ctx context.Context, t *types.Task) error {
	tag, err := s.db(ctx).Exec(ctx, `UPDATE tasks SET state=$2, progress=$3 WHERE id=$1`, t.ID, t.State, t.Progress)
	if err != nil {
		return fmt.Errorf("storage: update task %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.NotFound("task", t.ID)
	}
	return nil
}

// Events

func (s *PostgresStore) CreateEvent(ctx context.Context, e *types.Event) error {
	_, err := s.db(ctx).Exec(ctx, `
		INSERT INTO events (id, uuid, type, message, release_id, task_id, task_service_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UUID, e.Type, e.Message, e.ReleaseID, e.TaskID, e.TaskServiceID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: create event: %w", err)
	}
	return nil
}

func (s *PostgresStore) listEvents(ctx context.Context, where string, arg string) ([]*types.Event, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, uuid, type, message, release_id, task_id, task_service_id, created_at
		FROM events WHERE `+where+` ORDER BY created_at`, arg)
	if err != nil {
		return nil, fmt.Errorf("storage: list events: %w", err)
	}
	defer rows.Close()

	var out []*types.Event
	for rows.Next() {
		e := &types.Event{}
		if err := rows.Scan(&e.ID, &e.UUID, &e.Type, &e.Message, &e.ReleaseID, &e.TaskID, &e.TaskServiceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListEventsByRelease(ctx context.Context, releaseID string) ([]*types.Event, error) {
	return s.listEvents(ctx, "release_id = $1", releaseID)
}

func (s *PostgresStore) ListEventsByTask(ctx context.Context, taskID string) ([]*types.Event, error) {
	return s.listEvents(ctx, "task_id = $1", taskID)
}
