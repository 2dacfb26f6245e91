package runner

import (
	"reflect"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "empty",
			sql:  "",
			want: nil,
		},
		{
			name: "single statement",
			sql:  "CREATE TABLE users (id INTEGER)",
			want: []string{"CREATE TABLE users (id INTEGER)"},
		},
		{
			name: "two statements",
			sql:  "ALTER TABLE t ADD CONSTRAINT c UNIQUE (a);\nALTER TABLE t ADD CONSTRAINT d UNIQUE (b)",
			want: []string{
				"ALTER TABLE t ADD CONSTRAINT c UNIQUE (a)",
				"ALTER TABLE t ADD CONSTRAINT d UNIQUE (b)",
			},
		},
		{
			name: "semicolon inside string literal",
			sql:  "INSERT INTO t VALUES ('a;b');\nSELECT 1",
			want: []string{"INSERT INTO t VALUES ('a;b')", "SELECT 1"},
		},
		{
			name: "escaped quote inside literal",
			sql:  "UPDATE t SET c = 'it''s; fine'",
			want: []string{"UPDATE t SET c = 'it''s; fine'"},
		},
		{
			name: "dollar quoted body",
			sql:  "CREATE FUNCTION f() RETURNS void AS $$ BEGIN; END $$ LANGUAGE plpgsql;\nSELECT 1",
			want: []string{
				"CREATE FUNCTION f() RETURNS void AS $$ BEGIN; END $$ LANGUAGE plpgsql",
				"SELECT 1",
			},
		},
		{
			name: "trailing semicolon",
			sql:  "SELECT 1;",
			want: []string{"SELECT 1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitStatements(tt.sql)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitStatements() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecutableStatements(t *testing.T) {
	tests := []struct {
		name     string
		rendered string
		want     []string
	}{
		{
			name:     "plain statement passes through",
			rendered: "DROP TABLE users",
			want:     []string{"DROP TABLE users"},
		},
		{
			name:     "empty render yields nothing",
			rendered: "",
			want:     nil,
		},
		{
			name:     "comment only marker is dropped",
			rendered: "-- SQLite does not support ALTER COLUMN, table recreation required for users",
			want:     nil,
		},
		{
			name:     "comment mixed with statement survives",
			rendered: "-- rebuild\nDROP TABLE users",
			want:     []string{"-- rebuild\nDROP TABLE users"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := executableStatements(tt.rendered)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("executableStatements() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeChecksum(t *testing.T) {
	a := ComputeChecksum([]string{"CREATE TABLE users (id INTEGER)"})
	b := ComputeChecksum([]string{"CREATE TABLE users (id INTEGER)"})
	c := ComputeChecksum([]string{"CREATE TABLE posts (id INTEGER)"})

	if a == "" || len(a) != 64 {
		t.Errorf("checksum = %q, want 64 hex chars", a)
	}
	if a != b {
		t.Error("checksum must be deterministic")
	}
	if a == c {
		t.Error("different statements must hash differently")
	}
	if ComputeChecksum(nil) != "" {
		t.Error("empty statement list hashes to empty string")
	}
}
