package migfile

import (
	"strconv"
	"strings"

	"github.com/veldtdb/veldt/internal/schema"
)

// ParseFieldType reads a column type spelling from a migration file.
// Unrecognized spellings pass through as a custom type, so files can
// carry dialect-specific fragments.
func ParseFieldType(s string) schema.FieldType {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)

	base := lower
	var args string
	if i := strings.IndexByte(lower, '('); i >= 0 && strings.HasSuffix(lower, ")") {
		base = strings.TrimSpace(lower[:i])
		args = lower[i+1 : len(lower)-1]
	}

	switch base {
	case "integer", "int":
		return schema.Integer()
	case "bigint", "biginteger":
		return schema.BigInteger()
	case "smallint", "smallinteger":
		return schema.SmallInteger()
	case "varchar", "string":
		if n, ok := intArg(args); ok {
			return schema.VarChar(n)
		}
	case "char":
		if n, ok := intArg(args); ok {
			return schema.Char(n)
		}
	case "text":
		return schema.Text()
	case "boolean", "bool":
		return schema.Boolean()
	case "decimal", "numeric":
		if p, sc, ok := twoIntArgs(args); ok {
			return schema.Decimal(p, sc)
		}
	case "float", "real":
		return schema.Float()
	case "double":
		return schema.Double()
	case "date":
		return schema.Date()
	case "time":
		return schema.Time()
	case "datetime", "timestamp":
		return schema.DateTime()
	case "timestamptz":
		return schema.TimestampTz()
	case "json":
		return schema.JSON()
	case "jsonb":
		return schema.JSONBinary()
	case "uuid":
		return schema.UUID()
	case "binary", "blob", "bytea":
		return schema.Binary()
	}

	return schema.Custom(trimmed)
}

// FormatFieldType writes a column type in the spelling ParseFieldType
// reads back; the generic SQL spelling already round-trips.
func FormatFieldType(t schema.FieldType) string {
	return t.String()
}

func intArg(args string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	return n, err == nil
}

func twoIntArgs(args string) (int, int, bool) {
	first, second, ok := strings.Cut(args, ",")
	if !ok {
		return 0, 0, false
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(first))
	b, err2 := strconv.Atoi(strings.TrimSpace(second))
	return a, b, err1 == nil && err2 == nil
}
