package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
)

// connGrace is added to the wait budget when borrowing a connection, so a
// zero wait still gets one attempt.
const connGrace = 250 * time.Millisecond

// PostgresLocker uses session advisory locks. One granted lock set pins one
// connection of the pool it was given, which should be dedicated to locking.
// Expiry closes that connection, and closing a session frees its advisory
// locks.
type PostgresLocker struct {
	db *pgxpool.Pool
}

func NewPostgresLocker(db *pgxpool.Pool) *PostgresLocker {
	return &PostgresLocker{
		db: db,
	}
}

func (p *PostgresLocker) Acquire(ctx context.Context, key string, expiry, wait time.Duration) (domain.Lock, error) {
	return p.acquire(ctx, []string{key}, expiry, wait)
}

// AcquireMany takes every key on a single connection.
func (p *PostgresLocker) AcquireMany(ctx context.Context, keys []string, expiry, wait time.Duration) (Locks, error) {
	if len(keys) == 0 {
		return Locks{}, nil
	}

	l, err := p.acquire(ctx, keys, expiry, wait)
	if err != nil {
		return nil, err
	}

	return Locks{l}, nil
}

func (p *PostgresLocker) acquire(ctx context.Context, keys []string, expiry, wait time.Duration) (*postgresLock, error) {
	var conn *pgxpool.Conn

	// waiters borrow a connection per attempt so they never starve the holder
	err := retry(ctx, wait, func() (bool, error) {
		c, err := p.borrow(ctx, wait)
		if err != nil {
			return false, err
		}

		ok, err := tryLockAll(ctx, c, keys)
		if err != nil || !ok {
			c.Release()
			return false, err
		}

		conn = c
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	l := &postgresLock{conn: conn, key: strings.Join(keys, ",")}
	l.timer = time.AfterFunc(expiry, l.expire)

	return l, nil
}

func (p *PostgresLocker) borrow(ctx context.Context, wait time.Duration) (*pgxpool.Conn, error) {
	borrowCtx, cancel := context.WithTimeout(ctx, wait+connGrace)
	defer cancel()

	conn, err := p.db.Acquire(borrowCtx)
	if err != nil {
		// an exhausted pool is contention, not an outage
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, domain.ErrLockTimeout
		}

		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return conn, nil
}

// tryLockAll takes the keys in order and gives back the ones it got if any
// key is taken.
func tryLockAll(ctx context.Context, conn *pgxpool.Conn, keys []string) (bool, error) {
	for _, key := range keys {
		var ok bool

		err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&ok)
		if err == nil && ok {
			continue
		}

		if _, unlockErr := conn.Exec(ctx, `SELECT pg_advisory_unlock_all()`); unlockErr != nil {
			conn.Conn().Close(context.WithoutCancel(ctx))
			err = errors.Join(err, unlockErr)
		}

		if err != nil {
			return false, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}

		return false, nil
	}

	return true, nil
}

type postgresLock struct {
	conn  *pgxpool.Conn
	key   string
	timer *time.Timer
	once  sync.Once
}

func (l *postgresLock) Key() string {
	return l.key
}

// Release after expiry is a no-op: the session, and every lock in it, is gone.
func (l *postgresLock) Release(ctx context.Context) error {
	var err error

	l.once.Do(func() {
		l.timer.Stop()
		defer l.conn.Release()

		_, err = l.conn.Exec(ctx, `SELECT pg_advisory_unlock_all()`)
		if err != nil {
			// a connection that may still hold the locks must not go back to the pool
			l.conn.Conn().Close(context.WithoutCancel(ctx))
		}
	})

	return err
}

func (l *postgresLock) expire() {
	l.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		l.conn.Conn().Close(ctx)
		l.conn.Release()
	})
}
