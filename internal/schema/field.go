package schema

import (
	"fmt"
	"regexp"

	"github.com/veldtdb/veldt/internal/merr"
)

// FieldKind discriminates the closed set of column storage types.
type FieldKind int

const (
	// KindInteger is a 32-bit integer.
	KindInteger FieldKind = iota

	// KindBigInteger is a 64-bit integer.
	KindBigInteger

	// KindSmallInteger is a 16-bit integer.
	KindSmallInteger

	// KindVarChar is a bounded string; Length carries the bound.
	KindVarChar

	// KindChar is a fixed-width string; Length carries the width.
	KindChar

	// KindText is an unbounded string.
	KindText

	// KindBoolean is a boolean.
	KindBoolean

	// KindDecimal is an exact numeric; Precision and Scale carry the shape.
	KindDecimal

	// KindFloat is a single-precision float.
	KindFloat

	// KindDouble is a double-precision float.
	KindDouble

	// KindDate is a date without time.
	KindDate

	// KindTime is a time without date.
	KindTime

	// KindDateTime is a timestamp without timezone.
	KindDateTime

	// KindTimestampTz is a timestamp with timezone.
	KindTimestampTz

	// KindJSON is a JSON document.
	KindJSON

	// KindJSONBinary is a binary JSON document (JSONB on Postgres).
	KindJSONBinary

	// KindUUID is a UUID.
	KindUUID

	// KindBinary is raw bytes.
	KindBinary

	// KindCustom passes Raw through verbatim as the column type fragment.
	KindCustom
)

// FieldType describes a column's storage type. The zero value is KindInteger.
// Dialects render a FieldType to SQL; this package only carries the data.
type FieldType struct {
	Kind      FieldKind
	Length    int    // KindVarChar, KindChar
	Precision int    // KindDecimal
	Scale     int    // KindDecimal
	Raw       string // KindCustom
}

// Integer returns a 32-bit integer type.
func Integer() FieldType { return FieldType{Kind: KindInteger} }

// BigInteger returns a 64-bit integer type.
func BigInteger() FieldType { return FieldType{Kind: KindBigInteger} }

// SmallInteger returns a 16-bit integer type.
func SmallInteger() FieldType { return FieldType{Kind: KindSmallInteger} }

// VarChar returns a bounded string type.
func VarChar(length int) FieldType { return FieldType{Kind: KindVarChar, Length: length} }

// Char returns a fixed-width string type.
func Char(length int) FieldType { return FieldType{Kind: KindChar, Length: length} }

// Text returns an unbounded string type.
func Text() FieldType { return FieldType{Kind: KindText} }

// Boolean returns a boolean type.
func Boolean() FieldType { return FieldType{Kind: KindBoolean} }

// Decimal returns an exact numeric type.
func Decimal(precision, scale int) FieldType {
	return FieldType{Kind: KindDecimal, Precision: precision, Scale: scale}
}

// Float returns a single-precision float type.
func Float() FieldType { return FieldType{Kind: KindFloat} }

// Double returns a double-precision float type.
func Double() FieldType { return FieldType{Kind: KindDouble} }

// Date returns a date type.
func Date() FieldType { return FieldType{Kind: KindDate} }

// Time returns a time type.
func Time() FieldType { return FieldType{Kind: KindTime} }

// DateTime returns a timestamp type without timezone.
func DateTime() FieldType { return FieldType{Kind: KindDateTime} }

// TimestampTz returns a timestamp type with timezone.
func TimestampTz() FieldType { return FieldType{Kind: KindTimestampTz} }

// JSON returns a JSON document type.
func JSON() FieldType { return FieldType{Kind: KindJSON} }

// JSONBinary returns a binary JSON document type.
func JSONBinary() FieldType { return FieldType{Kind: KindJSONBinary} }

// UUID returns a UUID type.
func UUID() FieldType { return FieldType{Kind: KindUUID} }

// Binary returns a raw bytes type.
func Binary() FieldType { return FieldType{Kind: KindBinary} }

// Custom returns a type whose SQL fragment is passed through verbatim.
// Escape hatch for dialect-specific fragments like "SERIAL PRIMARY KEY".
func Custom(raw string) FieldType { return FieldType{Kind: KindCustom, Raw: raw} }

// String returns a generic SQL spelling of the type, independent of dialect.
func (t FieldType) String() string {
	switch t.Kind {
	case KindInteger:
		return "INTEGER"
	case KindBigInteger:
		return "BIGINT"
	case KindSmallInteger:
		return "SMALLINT"
	case KindVarChar:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case KindChar:
		return fmt.Sprintf("CHAR(%d)", t.Length)
	case KindText:
		return "TEXT"
	case KindBoolean:
		return "BOOLEAN"
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
	case KindFloat:
		return "FLOAT"
	case KindDouble:
		return "DOUBLE"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindDateTime:
		return "DATETIME"
	case KindTimestampTz:
		return "TIMESTAMPTZ"
	case KindJSON:
		return "JSON"
	case KindJSONBinary:
		return "JSONB"
	case KindUUID:
		return "UUID"
	case KindBinary:
		return "BINARY"
	case KindCustom:
		return t.Raw
	default:
		return "INTEGER"
	}
}

// Validate checks that the field type is well-formed.
func (t FieldType) Validate() error {
	switch t.Kind {
	case KindVarChar, KindChar:
		if t.Length <= 0 {
			return merr.Newf(merr.ErrInvalidFieldType, "%s requires a positive length", t.String())
		}
	case KindDecimal:
		if t.Precision <= 0 {
			return merr.New(merr.ErrInvalidFieldType, "decimal requires a positive precision")
		}
		if t.Scale < 0 || t.Scale > t.Precision {
			return merr.New(merr.ErrInvalidFieldType, "decimal scale must be between 0 and precision").
				With("precision", t.Precision).
				With("scale", t.Scale)
		}
	case KindCustom:
		if t.Raw == "" {
			return merr.New(merr.ErrInvalidFieldType, "custom type requires a raw SQL fragment")
		}
	}
	return nil
}

// validIdentifierPattern matches safe SQL identifiers (lowercase snake_case).
var validIdentifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier checks that a name is a safe SQL identifier (lowercase snake_case).
func ValidateIdentifier(name string) error {
	if !validIdentifierPattern.MatchString(name) {
		return merr.Newf(merr.ErrInvalidIdentifier,
			"invalid identifier %q; must match [a-z_][a-z0-9_]*", name)
	}
	return nil
}

// ColumnDefinition represents a column with its type and inline constraints.
// Identity is Name within a table; no two columns in one table may share a
// name after projection.
type ColumnDefinition struct {
	Name          string
	Type          FieldType
	NotNull       bool
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
	Default       string // SQL literal rendered verbatim; empty means no default
}

// NewColumn builds a plain column definition.
func NewColumn(name string, fieldType FieldType) ColumnDefinition {
	return ColumnDefinition{Name: name, Type: fieldType}
}

// Validate checks that the column definition is well-formed.
func (c *ColumnDefinition) Validate() error {
	if c.Name == "" {
		return merr.New(merr.ErrInvalidOperation, "column name is required")
	}
	if err := ValidateIdentifier(c.Name); err != nil {
		return err
	}
	return c.Type.Validate()
}
