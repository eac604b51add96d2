package session_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twilight/pkg/user"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// sessionTable is an in-memory stand-in for the sessions table that
// understands exactly the statements issued by PostgresStore.
type sessionTable struct {
	mu   sync.Mutex
	rows    map[string][]any // id, user_id, csrf_token, created_at, expires_at
	err     error
	execErr error
}

func newSessionTable() *sessionTable {
	return &sessionTable{rows: make(map[string][]any)}
}

func (t *sessionTable) fail(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// failWrites breaks Exec only; reads keep working.
func (t *sessionTable) failWrites(err error) {
	t.mu.Lock()
	t.execErr = err
	t.mu.Unlock()
}

func (t *sessionTable) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return pgconn.CommandTag{}, t.err
	}
	if t.execErr != nil {
		return pgconn.CommandTag{}, t.execErr
	}

	sql = strings.TrimSpace(sql)
	switch {
	case strings.HasPrefix(sql, "INSERT INTO sessions"):
		id := args[0].(string)
		if existing, ok := t.rows[id]; ok {
			// created_at is not updated on conflict
			t.rows[id] = []any{id, args[1], args[2], existing[3], args[4]}
		} else {
			t.rows[id] = append([]any(nil), args...)
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "WHERE id = $1"):
		id := args[0].(string)
		if _, ok := t.rows[id]; ok {
			delete(t.rows, id)
			return pgconn.NewCommandTag("DELETE 1"), nil
		}
		return pgconn.NewCommandTag("DELETE 0"), nil
	case strings.Contains(sql, "WHERE expires_at <= $1"):
		now := args[0].(time.Time)
		n := 0
		for id, row := range t.rows {
			if !row[4].(time.Time).After(now) {
				delete(t.rows, id)
				n++
			}
		}
		return pgconn.NewCommandTag("DELETE " + strconv.Itoa(n)), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected statement: " + sql)
}

func (t *sessionTable) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (t *sessionTable) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return errRow{t.err}
	}
	row, ok := t.rows[args[0].(string)]
	if !ok {
		return errRow{pgx.ErrNoRows}
	}
	return sessionRow(append([]any(nil), row...))
}

func (t *sessionTable) has(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.rows[id]
	return ok
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

type sessionRow []any

func (r sessionRow) Scan(dest ...any) error {
	*dest[0].(*string) = r[0].(string)
	*dest[1].(**int64) = r[1].(*int64)
	*dest[2].(**string) = r[2].(*string)
	*dest[3].(*time.Time) = r[3].(time.Time)
	*dest[4].(*time.Time) = r[4].(time.Time)
	return nil
}

// failingUsers simulates an unreachable user table.
type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, string, string, *string) (*user.User, error) {
	return nil, f.err
}

func (f failingUsers) FindByID(context.Context, int64) (*user.User, error) {
	return nil, f.err
}

func (f failingUsers) FindByEmail(context.Context, string) (*user.User, error) {
	return nil, f.err
}

func (f failingUsers) FindByAPIKey(context.Context, string) (*user.User, error) {
	return nil, f.err
}

// failCommand makes one redis command fail while the rest reach the server.
type failCommand struct {
	name string
	err  error
}

func (h failCommand) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (h failCommand) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if cmd.Name() == h.name {
			cmd.SetErr(h.err)
			return h.err
		}
		return next(ctx, cmd)
	}
}

func (h failCommand) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}
