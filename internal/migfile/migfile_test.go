package migfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/veldtdb/veldt/internal/merr"
	"github.com/veldtdb/veldt/internal/migrate"
	"github.com/veldtdb/veldt/internal/schema"
)

const blogInitialYAML = `app: blog
name: 0001_initial
operations:
  - op: create_table
    table: posts
    columns:
      - name: id
        type: bigint
        primary_key: true
        auto_increment: true
      - name: title
        type: varchar(200)
        not_null: true
      - name: body
        type: text
    constraints:
      - kind: check
        name: chk_title_len
        expression: length(title) > 0
  - op: create_index
    table: posts
    columns: [title]
    unique: true
`

const addSlugYAML = `app: blog
name: 0002_add_slug
dependencies:
  - blog.0001_initial
operations:
  - op: add_column
    table: posts
    column:
      name: slug
      type: varchar(64)
      unique: true
`

func TestDecode(t *testing.T) {
	m, err := Decode([]byte(blogInitialYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if m.App != "blog" || m.Name != "0001_initial" {
		t.Errorf("identity = %s.%s", m.App, m.Name)
	}
	if !m.Atomic {
		t.Error("atomic must default to true")
	}
	if !m.IsInitial() {
		t.Error("no dependencies and no explicit flag means initial")
	}
	if len(m.Operations) != 2 {
		t.Fatalf("operations = %d, want 2", len(m.Operations))
	}

	ct, ok := m.Operations[0].(*schema.CreateTable)
	if !ok {
		t.Fatalf("operation 0 = %T, want *CreateTable", m.Operations[0])
	}
	if ct.Name != "posts" || len(ct.Columns) != 3 {
		t.Errorf("create_table = %q with %d columns", ct.Name, len(ct.Columns))
	}
	if ct.Columns[1].Type.Kind != schema.KindVarChar || ct.Columns[1].Type.Length != 200 {
		t.Errorf("title type = %+v", ct.Columns[1].Type)
	}
	if len(ct.Constraints) != 1 {
		t.Fatalf("constraints = %d, want 1", len(ct.Constraints))
	}

	idx, ok := m.Operations[1].(*schema.CreateIndex)
	if !ok {
		t.Fatalf("operation 1 = %T, want *CreateIndex", m.Operations[1])
	}
	if !idx.Unique || !reflect.DeepEqual(idx.Columns, []string{"title"}) {
		t.Errorf("index = %+v", idx)
	}
}

func TestDecodeDependencies(t *testing.T) {
	m, err := Decode([]byte(addSlugYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []migrate.Key{{App: "blog", Name: "0001_initial"}}
	if !reflect.DeepEqual(m.Dependencies, want) {
		t.Errorf("Dependencies = %v, want %v", m.Dependencies, want)
	}
	if m.IsInitial() {
		t.Error("migration with dependencies is not initial")
	}
}

func TestDecodeSwappableAndOptional(t *testing.T) {
	src := `app: profiles
name: 0001_initial
swappable_dependencies:
  - setting: AUTH_USER_MODEL
    default_app: auth
    default_model: User
    migration: 0001_initial
optional_dependencies:
  - app: analytics
    migration: 0001_initial
    condition: app_installed:analytics
operations:
  - op: create_table
    table: profiles
    columns:
      - name: id
        type: integer
        primary_key: true
`
	m, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.SwappableDependencies) != 1 || m.SwappableDependencies[0].SettingKey != "AUTH_USER_MODEL" {
		t.Errorf("swappable = %+v", m.SwappableDependencies)
	}
	opt := m.OptionalDependencies
	if len(opt) != 1 || opt[0].Condition.Kind != migrate.CondAppInstalled || opt[0].Condition.Value != "analytics" {
		t.Errorf("optional = %+v", opt)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "malformed yaml",
			src:  "app: [unclosed",
		},
		{
			name: "unknown operation",
			src: "app: a\nname: 0001_x\noperations:\n  - op: explode_table\n    table: t\n",
		},
		{
			name: "malformed dependency key",
			src: "app: a\nname: 0001_x\ndependencies: [nodot]\noperations:\n  - op: drop_table\n    table: t\n",
		},
		{
			name: "unknown condition kind",
			src: "app: a\nname: 0001_x\noptional_dependencies:\n  - app: b\n    migration: 0001_y\n    condition: planet_aligned:mars\noperations:\n  - op: drop_table\n    table: t\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.src)); !merr.Is(err, merr.ErrMigrationFile) {
				t.Errorf("expected ErrMigrationFile, got %v", err)
			}
		})
	}

	t.Run("invalid migration config surfaces validation error", func(t *testing.T) {
		src := "app: a\nname: 0001_x\nstate_only: true\ndatabase_only: true\noperations: []\n"
		if _, err := Decode([]byte(src)); !merr.Is(err, merr.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := migrate.NewMigration("shop", "0003_partition_orders").
		AddDependency("shop", "0002_add_totals").
		AddOperation(&schema.CreateTable{
			TableOp: schema.TableOp{Name: "orders"},
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: schema.BigInteger(), PrimaryKey: true, AutoIncrement: true},
				{Name: "total", Type: schema.Decimal(10, 2), NotNull: true},
				{Name: "placed_at", Type: schema.TimestampTz(), NotNull: true},
			},
			Constraints: []schema.Constraint{
				&schema.ForeignKeyConstraint{
					Name:              "fk_orders_user",
					Columns:           []string{"user_id"},
					ReferencedTable:   "users",
					ReferencedColumns: []string{"id"},
					OnDelete:          schema.FKCascade,
					Deferrable:        schema.DeferrableDeferred,
				},
			},
			Partition: &schema.PartitionOptions{
				Type:   schema.PartitionRange,
				Column: "id",
				Partitions: []schema.PartitionDef{
					{Name: "p0", LessThan: "100000"},
					{Name: "pmax", LessThan: "MAXVALUE"},
				},
			},
		}).
		AddOperation(&schema.RunSQL{
			SQL:    "ANALYZE orders",
			SQLite: "ANALYZE",
		}).
		SetAtomic(false)

	data, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(decoded, orig) {
		t.Errorf("round trip changed the migration:\n got %#v\nwant %#v", decoded, orig)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	blogDir := filepath.Join(dir, "blog")
	if err := os.MkdirAll(blogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(filepath.Join(blogDir, "0002_add_slug.yaml"), addSlugYAML)
	writeFile(filepath.Join(blogDir, "0001_initial.yaml"), blogInitialYAML)
	writeFile(filepath.Join(dir, "notes.txt"), "not a migration")

	files, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	// Path-sorted.
	if files[0].Migration.Name != "0001_initial" || files[1].Migration.Name != "0002_add_slug" {
		t.Errorf("order = [%s, %s]", files[0].Migration.Name, files[1].Migration.Name)
	}
	for _, f := range files {
		if f.Checksum == "" || len(f.Checksum) != 64 {
			t.Errorf("checksum for %s = %q", f.Path, f.Checksum)
		}
	}

	ms := Migrations(files)
	if len(ms) != 2 || ms[0].App != "blog" {
		t.Errorf("Migrations() = %v", ms)
	}
}

func TestChecksumIsStable(t *testing.T) {
	a := Checksum([]byte(blogInitialYAML))
	b := Checksum([]byte(blogInitialYAML))
	c := Checksum([]byte(addSlugYAML))
	if a != b {
		t.Error("checksum must be deterministic")
	}
	if a == c {
		t.Error("different bodies must hash differently")
	}
}

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in   string
		want schema.FieldType
	}{
		{"integer", schema.Integer()},
		{"int", schema.Integer()},
		{"bigint", schema.BigInteger()},
		{"smallint", schema.SmallInteger()},
		{"varchar(255)", schema.VarChar(255)},
		{"VARCHAR(255)", schema.VarChar(255)},
		{"char(2)", schema.Char(2)},
		{"text", schema.Text()},
		{"boolean", schema.Boolean()},
		{"decimal(10, 2)", schema.Decimal(10, 2)},
		{"numeric(8,3)", schema.Decimal(8, 3)},
		{"float", schema.Float()},
		{"double", schema.Double()},
		{"date", schema.Date()},
		{"datetime", schema.DateTime()},
		{"timestamptz", schema.TimestampTz()},
		{"json", schema.JSON()},
		{"jsonb", schema.JSONBinary()},
		{"uuid", schema.UUID()},
		{"blob", schema.Binary()},
		{"GEOMETRY(Point, 4326)", schema.Custom("GEOMETRY(Point, 4326)")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFieldType(tt.in); got != tt.want {
				t.Errorf("ParseFieldType(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFieldTypeRoundTrips(t *testing.T) {
	types := []schema.FieldType{
		schema.Integer(), schema.BigInteger(), schema.SmallInteger(),
		schema.VarChar(64), schema.Char(2), schema.Text(), schema.Boolean(),
		schema.Decimal(10, 2), schema.Float(), schema.Double(),
		schema.Date(), schema.Time(), schema.DateTime(), schema.TimestampTz(),
		schema.JSON(), schema.JSONBinary(), schema.UUID(), schema.Binary(),
		schema.Custom("CITEXT"),
	}
	for _, ft := range types {
		if got := ParseFieldType(FormatFieldType(ft)); got != ft {
			t.Errorf("round trip %v -> %q -> %v", ft, FormatFieldType(ft), got)
		}
	}
}
