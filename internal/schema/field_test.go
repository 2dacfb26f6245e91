package schema

import (
	"testing"

	"github.com/veldtdb/veldt/internal/merr"
)

func TestFieldTypeString(t *testing.T) {
	tests := []struct {
		name string
		ft   FieldType
		want string
	}{
		{"integer", Integer(), "INTEGER"},
		{"big integer", BigInteger(), "BIGINT"},
		{"small integer", SmallInteger(), "SMALLINT"},
		{"varchar", VarChar(255), "VARCHAR(255)"},
		{"char", Char(36), "CHAR(36)"},
		{"text", Text(), "TEXT"},
		{"boolean", Boolean(), "BOOLEAN"},
		{"decimal", Decimal(10, 2), "DECIMAL(10, 2)"},
		{"float", Float(), "FLOAT"},
		{"double", Double(), "DOUBLE"},
		{"date", Date(), "DATE"},
		{"time", Time(), "TIME"},
		{"datetime", DateTime(), "DATETIME"},
		{"timestamptz", TimestampTz(), "TIMESTAMPTZ"},
		{"json", JSON(), "JSON"},
		{"jsonb", JSONBinary(), "JSONB"},
		{"uuid", UUID(), "UUID"},
		{"binary", Binary(), "BINARY"},
		{"custom", Custom("GEOMETRY(Point, 4326)"), "GEOMETRY(Point, 4326)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ft.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFieldTypeValidate(t *testing.T) {
	tests := []struct {
		name    string
		ft      FieldType
		wantErr bool
	}{
		{"valid integer", Integer(), false},
		{"valid varchar", VarChar(100), false},
		{"varchar zero length", VarChar(0), true},
		{"varchar negative length", VarChar(-1), true},
		{"char zero length", Char(0), true},
		{"valid decimal", Decimal(10, 2), false},
		{"decimal zero precision", Decimal(0, 0), true},
		{"decimal scale exceeds precision", Decimal(4, 5), true},
		{"decimal negative scale", Decimal(10, -1), true},
		{"valid custom", Custom("CITEXT"), false},
		{"empty custom", Custom(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ft.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !merr.Is(err, merr.ErrInvalidFieldType) {
				t.Errorf("expected code %s, got %v", merr.ErrInvalidFieldType, err)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		ident   string
		wantErr bool
	}{
		{"simple", "users", false},
		{"underscore prefix", "_private", false},
		{"with digits", "table_2024", false},
		{"empty", "", true},
		{"leading digit", "2fast", true},
		{"uppercase", "Users", true},
		{"hyphen", "user-accounts", true},
		{"space", "user accounts", true},
		{"quote", `users"; DROP TABLE x`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.ident)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.ident, err, tt.wantErr)
			}
		})
	}
}

func TestColumnDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		col     ColumnDefinition
		wantErr bool
	}{
		{
			name: "valid column",
			col:  NewColumn("id", Integer()),
		},
		{
			name:    "empty name",
			col:     ColumnDefinition{Type: Integer()},
			wantErr: true,
		},
		{
			name:    "invalid name",
			col:     ColumnDefinition{Name: "BadName", Type: Integer()},
			wantErr: true,
		},
		{
			name:    "invalid field type",
			col:     ColumnDefinition{Name: "title", Type: VarChar(0)},
			wantErr: true,
		},
		{
			name: "with default and not null",
			col: ColumnDefinition{
				Name:    "active",
				Type:    Boolean(),
				NotNull: true,
				Default: "TRUE",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.col.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConstraintValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Constraint
		wantErr bool
	}{
		{
			name: "valid check",
			c:    &CheckConstraint{Name: "chk_price", Expression: "price > 0"},
		},
		{
			name:    "check without expression",
			c:       &CheckConstraint{Name: "chk_price"},
			wantErr: true,
		},
		{
			name: "valid unique",
			c:    &UniqueConstraint{Name: "uniq_email", Columns: []string{"email"}},
		},
		{
			name:    "unique without columns",
			c:       &UniqueConstraint{Name: "uniq_email"},
			wantErr: true,
		},
		{
			name: "valid composite primary key",
			c:    &PrimaryKeyConstraint{Name: "order_items", Columns: []string{"order_id", "product_id"}},
		},
		{
			name:    "primary key without columns",
			c:       &PrimaryKeyConstraint{Name: "order_items"},
			wantErr: true,
		},
		{
			name: "valid foreign key",
			c: &ForeignKeyConstraint{
				Name:              "fk_posts_author",
				Columns:           []string{"author_id"},
				ReferencedTable:   "users",
				ReferencedColumns: []string{"id"},
				OnDelete:          FKCascade,
			},
		},
		{
			name: "foreign key without referenced table",
			c: &ForeignKeyConstraint{
				Name:              "fk_posts_author",
				Columns:           []string{"author_id"},
				ReferencedColumns: []string{"id"},
			},
			wantErr: true,
		},
		{
			name: "foreign key column count mismatch",
			c: &ForeignKeyConstraint{
				Name:              "fk_posts_author",
				Columns:           []string{"author_id", "tenant_id"},
				ReferencedTable:   "users",
				ReferencedColumns: []string{"id"},
			},
			wantErr: true,
		},
		{
			name: "foreign key bad action",
			c: &ForeignKeyConstraint{
				Name:              "fk_posts_author",
				Columns:           []string{"author_id"},
				ReferencedTable:   "users",
				ReferencedColumns: []string{"id"},
				OnDelete:          FKAction("EXPLODE"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlterTableOptionsSuffix(t *testing.T) {
	tests := []struct {
		name string
		opts AlterTableOptions
		want string
	}{
		{"empty", AlterTableOptions{}, ""},
		{"algorithm only", AlterTableOptions{Algorithm: AlgorithmInplace}, ", ALGORITHM=INPLACE"},
		{"lock only", AlterTableOptions{Lock: LockNone}, ", LOCK=NONE"},
		{
			"both",
			AlterTableOptions{Algorithm: AlgorithmInstant, Lock: LockShared},
			", ALGORITHM=INSTANT, LOCK=SHARED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.SQLSuffix(); got != tt.want {
				t.Errorf("SQLSuffix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPartitionOptionsSQL(t *testing.T) {
	tests := []struct {
		name string
		opts PartitionOptions
		want string
	}{
		{
			name: "range partitions",
			opts: PartitionOptions{
				Type:   PartitionRange,
				Column: "created_at",
				Partitions: []PartitionDef{
					{Name: "p2023", LessThan: "2024-01-01"},
					{Name: "p2024", LessThan: "2025-01-01"},
					{Name: "pmax", LessThan: "MAXVALUE"},
				},
			},
			want: "PARTITION BY RANGE(created_at) (PARTITION p2023 VALUES LESS THAN ('2024-01-01'), PARTITION p2024 VALUES LESS THAN ('2025-01-01'), PARTITION pmax VALUES LESS THAN MAXVALUE)",
		},
		{
			name: "list partitions",
			opts: PartitionOptions{
				Type:   PartitionList,
				Column: "region",
				Partitions: []PartitionDef{
					{Name: "p_eu", In: []string{"de", "fr"}},
				},
			},
			want: "PARTITION BY LIST(region) (PARTITION p_eu VALUES IN ('de', 'fr'))",
		},
		{
			name: "hash partitions",
			opts: PartitionOptions{
				Type:   PartitionHash,
				Column: "user_id",
				Partitions: []PartitionDef{
					{Count: 4},
				},
			},
			want: "PARTITION BY HASH(user_id) PARTITIONS 4",
		},
		{
			name: "key partitions",
			opts: PartitionOptions{
				Type:   PartitionKey,
				Column: "id",
				Partitions: []PartitionDef{
					{Count: 8},
				},
			},
			want: "PARTITION BY KEY(id) PARTITIONS 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}
