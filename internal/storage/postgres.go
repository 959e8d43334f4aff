package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/pkg/planner"
	log "github.com/sirupsen/logrus"
)

const snapshotChannel = "planhub_snapshot"

// PostgresStore keeps the whole event collection in a single JSONB row and
// uses LISTEN/NOTIFY so that other instances sharing the database adopt a
// rewrite as soon as it lands. The notification payload carries the writer's
// instance id, so a store never reacts to its own writes.
type PostgresStore struct {
	pool       *pgxpool.Pool
	instanceId string

	mu       sync.Mutex
	watchers map[uint64]func([]planner.Event)
	nextId   uint64
	cancel   context.CancelFunc
}

// OpenPostgres connects the pool, runs migrations, and starts the
// notification listener.
func OpenPostgres(ctx context.Context, cfg config.Postgres) (*PostgresStore, error) {
	// Escape single quotes in password for PostgreSQL connection string
	escapedPassword := strings.ReplaceAll(cfg.Pass, "'", "\\'")

	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password='%s' dbname=%s sslmode=disable options='-c search_path=%s'",
		cfg.Host, cfg.Port, cfg.User, escapedPassword, cfg.Name, cfg.Schema)
	poolConfig, err := pgxpool.ParseConfig(psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := Migrate(cfg); err != nil {
		pool.Close()
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s := &PostgresStore{
		pool:       pool,
		instanceId: uuid.NewString(),
		watchers:   make(map[uint64]func([]planner.Event)),
		cancel:     cancel,
	}
	go s.listen(listenCtx)
	return s, nil
}

// Migrate runs database migrations using golang-migrate against the configured DB.
func Migrate(cfg config.Postgres) error {
	escapedPassword := url.QueryEscape(cfg.Pass)
	dbUrl := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s",
		cfg.User, escapedPassword, cfg.Host, cfg.Port, cfg.Name, cfg.Schema)

	m, err := migrate.New("file://migrations", dbUrl)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]planner.Event, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, "SELECT data FROM planner_snapshot WHERE id = 1").Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, planner.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("could not read snapshot: %w", err)
	}

	var events []planner.Event
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, fmt.Errorf("could not decode snapshot: %w", err)
	}
	return events, nil
}

func (s *PostgresStore) SaveAll(ctx context.Context, events []planner.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}

	query := `INSERT INTO planner_snapshot (id, data, updated_at)
	          VALUES (1, $1, now())
	          ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, payload); err != nil {
		log.Errorf("could not write snapshot: %v", err)
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	if _, err := s.pool.Exec(ctx, "SELECT pg_notify($1, $2)", snapshotChannel, s.instanceId); err != nil {
		// The write itself succeeded; peers will catch up on their next write.
		log.Warnf("could not notify peers about snapshot rewrite: %v", err)
	}
	return nil
}

func (s *PostgresStore) Watch(fn func([]planner.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	id := s.nextId
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *PostgresStore) Close() error {
	s.cancel()
	s.pool.Close()
	return nil
}

// listen holds a dedicated connection on the notification channel and
// re-reads the snapshot whenever another instance rewrote it.
func (s *PostgresStore) listen(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.listenOnce(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("snapshot listener failed, reconnecting: %v", err)
		}
	}
}

func (s *PostgresStore) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+snapshotChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if notification.Payload == s.instanceId {
			continue
		}
		events, err := s.Load(ctx)
		if err != nil {
			log.Errorf("could not reload snapshot after external rewrite: %v", err)
			continue
		}
		s.dispatch(events)
	}
}

func (s *PostgresStore) dispatch(events []planner.Event) {
	s.mu.Lock()
	watchers := make([]func([]planner.Event), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(cloneEvents(events))
	}
}
