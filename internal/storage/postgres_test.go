package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type mockRow struct {
	value string
	err   error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

type mockPg struct {
	row mockRow

	execSQL  []string
	execArgs [][]any
	execErr  error

	lastQueryArgs []any
}

func (m *mockPg) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	m.execSQL = append(m.execSQL, sql)
	m.execArgs = append(m.execArgs, arguments)
	if m.execErr != nil {
		return pgconn.CommandTag{}, m.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockPg) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.lastQueryArgs = args
	return m.row
}

func TestPostgresKV_Get(t *testing.T) {
	ctx := context.Background()
	db := &mockPg{row: mockRow{value: "abc123"}}
	kv := NewPostgresKV(db, "")

	v, ok, err := kv.Get(ctx, "token")
	if err != nil || !ok || v != "abc123" {
		t.Fatalf("expected abc123,true,nil; got %q,%v,%v", v, ok, err)
	}
	if db.lastQueryArgs[0] != "default" || db.lastQueryArgs[1] != "token" {
		t.Fatalf("unexpected query args: %+v", db.lastQueryArgs)
	}

	db.row = mockRow{err: pgx.ErrNoRows}
	if _, ok, err := kv.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected missing key false,nil; got %v,%v", ok, err)
	}

	db.row = mockRow{err: errors.New("conn reset")}
	if _, _, err := kv.Get(ctx, "token"); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestPostgresKV_SetManyAndDelete(t *testing.T) {
	ctx := context.Background()
	db := &mockPg{}
	kv := NewPostgresKV(db, "kiosk")

	if err := kv.SetMany(ctx, map[string]string{"token": "abc123", "user": "{}"}); err != nil {
		t.Fatalf("set many: %v", err)
	}
	if len(db.execSQL) != 1 || !strings.Contains(db.execSQL[0], "ON CONFLICT") {
		t.Fatalf("expected a single upsert, got %+v", db.execSQL)
	}
	args := db.execArgs[0]
	keys := args[1].([]string)
	values := args[2].([]string)
	if args[0] != "kiosk" || len(keys) != 2 || len(values) != 2 {
		t.Fatalf("unexpected upsert args: %+v", args)
	}
	for i, k := range keys {
		want := map[string]string{"token": "abc123", "user": "{}"}[k]
		if values[i] != want {
			t.Fatalf("key %s paired with %q, want %q", k, values[i], want)
		}
	}

	if err := kv.Delete(ctx, "token", "user"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(db.execSQL) != 2 || !strings.Contains(db.execSQL[1], "DELETE FROM client_storage") {
		t.Fatalf("expected delete statement, got %+v", db.execSQL)
	}

	if err := kv.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if !strings.Contains(db.execSQL[2], "CREATE TABLE IF NOT EXISTS client_storage") {
		t.Fatalf("unexpected schema statement: %s", db.execSQL[2])
	}
}

func TestPostgresKV_ExecError(t *testing.T) {
	kv := NewPostgresKV(&mockPg{execErr: errors.New("down")}, "x")
	if err := kv.SetMany(context.Background(), map[string]string{"token": "t"}); err == nil {
		t.Fatalf("expected exec error")
	}
	if err := kv.Delete(context.Background(), "token"); err == nil {
		t.Fatalf("expected exec error")
	}
}
