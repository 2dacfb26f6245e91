package runner

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/veldtdb/veldt/internal/merr"
)

const (
	// defaultLockTimeout bounds how long AcquireLock waits for a
	// competing runner to finish.
	defaultLockTimeout = 30 * time.Second

	// lockRetryInterval is the polling interval for the Postgres
	// try-lock loop.
	lockRetryInterval = 250 * time.Millisecond

	// lockName keys the advisory lock. All runners pointed at one
	// database contend on the same name.
	lockName = "veldt_migrations"
)

// advisoryLockKey hashes the lock name into the signed 64-bit keyspace
// pg_advisory_lock expects.
func advisoryLockKey() int64 {
	h := fnv.New64a()
	h.Write([]byte(lockName))
	return int64(h.Sum64())
}

// AcquireLock serializes migration runs across processes. Postgres
// uses a session advisory lock, MySQL uses GET_LOCK. SQLite databases
// are single-writer files, so no extra lock is taken.
//
// Both lock kinds are session-scoped, so the lock is taken on a
// connection pinned out of the pool and held until ReleaseLock runs
// the unlock on that same connection. Locking through the pooled
// *sql.DB would let the unlock land on a different session, leaving
// the lock held by an idle pooled connection.
func (r *Runner) AcquireLock(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}

	switch r.dialect.Name() {
	case "postgres", "mysql":
	default:
		return nil
	}

	if r.lockConn != nil {
		return merr.New(merr.ErrSQLTransaction, "migration lock already held by this runner")
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return merr.Wrap(merr.ErrSQLConnection, err, "failed to reserve a lock connection")
	}

	switch r.dialect.Name() {
	case "postgres":
		err = acquirePostgresLock(ctx, conn, timeout)
	case "mysql":
		err = acquireMySQLLock(ctx, conn, timeout)
	}
	if err != nil {
		conn.Close()
		return err
	}

	r.lockConn = conn
	return nil
}

func acquirePostgresLock(ctx context.Context, conn *sql.Conn, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	key := advisoryLockKey()

	for {
		var acquired bool
		err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired)
		if err != nil {
			return merr.Wrap(merr.ErrSQLExecution, err, "failed to acquire advisory lock")
		}
		if acquired {
			return nil
		}
		if time.Now().After(deadline) {
			return merr.New(merr.ErrSQLTransaction, "another migration run holds the lock").
				With("timeout", timeout.String())
		}

		select {
		case <-ctx.Done():
			return merr.Wrap(merr.ErrSQLTransaction, ctx.Err(), "lock wait cancelled")
		case <-time.After(lockRetryInterval):
		}
	}
}

func acquireMySQLLock(ctx context.Context, conn *sql.Conn, timeout time.Duration) error {
	var acquired int
	err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", lockName, int(timeout.Seconds())).Scan(&acquired)
	if err != nil {
		return merr.Wrap(merr.ErrSQLExecution, err, "failed to acquire named lock")
	}
	if acquired != 1 {
		return merr.New(merr.ErrSQLTransaction, "another migration run holds the lock").
			With("timeout", timeout.String())
	}
	return nil
}

// ReleaseLock drops the advisory lock taken by AcquireLock and returns
// the pinned connection to the pool. A false result from the unlock
// means the session no longer held the lock, which is an error.
func (r *Runner) ReleaseLock(ctx context.Context) error {
	if r.lockConn == nil {
		return nil
	}
	conn := r.lockConn
	r.lockConn = nil
	defer conn.Close()

	switch r.dialect.Name() {
	case "postgres":
		var released bool
		err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockKey()).Scan(&released)
		if err != nil {
			return merr.Wrap(merr.ErrSQLExecution, err, "failed to release advisory lock")
		}
		if !released {
			return merr.New(merr.ErrSQLTransaction, "advisory lock was not held by this session")
		}
		return nil
	case "mysql":
		var released sql.NullInt64
		err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", lockName).Scan(&released)
		if err != nil {
			return merr.Wrap(merr.ErrSQLExecution, err, "failed to release named lock")
		}
		if !released.Valid || released.Int64 != 1 {
			return merr.New(merr.ErrSQLTransaction, "named lock was not held by this session")
		}
		return nil
	default:
		return nil
	}
}
