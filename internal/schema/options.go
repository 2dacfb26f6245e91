package schema

import (
	"fmt"
	"strings"
)

// IndexType selects the index access method.
// Availability varies by dialect; btree is every dialect's default.
type IndexType string

const (
	IndexBTree    IndexType = "btree"
	IndexHash     IndexType = "hash"
	IndexGin      IndexType = "gin"
	IndexGist     IndexType = "gist"
	IndexBrin     IndexType = "brin"
	IndexFulltext IndexType = "fulltext" // MySQL
	IndexSpatial  IndexType = "spatial"  // MySQL
)

// MySQLAlgorithm is the ALGORITHM clause for MySQL online DDL.
type MySQLAlgorithm string

const (
	AlgorithmInstant MySQLAlgorithm = "INSTANT"
	AlgorithmInplace MySQLAlgorithm = "INPLACE"
	AlgorithmCopy    MySQLAlgorithm = "COPY"
)

// MySQLLock is the LOCK clause for MySQL online DDL.
type MySQLLock string

const (
	LockNone      MySQLLock = "NONE"
	LockShared    MySQLLock = "SHARED"
	LockExclusive MySQLLock = "EXCLUSIVE"
)

// AlterTableOptions carries MySQL ALGORITHM/LOCK options for ALTER TABLE
// and CREATE INDEX statements. Other dialects ignore it.
type AlterTableOptions struct {
	Algorithm MySQLAlgorithm
	Lock      MySQLLock
}

// IsEmpty reports whether no option is set.
func (o AlterTableOptions) IsEmpty() bool {
	return o.Algorithm == "" && o.Lock == ""
}

// SQLSuffix renders the trailing option list, such as ", ALGORITHM=INPLACE, LOCK=NONE".
// Returns the empty string when no option is set.
func (o AlterTableOptions) SQLSuffix() string {
	var parts []string
	if o.Algorithm != "" {
		parts = append(parts, "ALGORITHM="+string(o.Algorithm))
	}
	if o.Lock != "" {
		parts = append(parts, "LOCK="+string(o.Lock))
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}

// PartitionType is the MySQL partitioning scheme.
type PartitionType string

const (
	PartitionRange PartitionType = "RANGE"
	PartitionList  PartitionType = "LIST"
	PartitionHash  PartitionType = "HASH"
	PartitionKey   PartitionType = "KEY"
)

// PartitionDef describes one partition. Exactly one of LessThan, In, or
// Count is meaningful, depending on the partition type.
type PartitionDef struct {
	Name     string
	LessThan string   // RANGE: upper bound value, or "MAXVALUE"
	In       []string // LIST: member values
	Count    int      // HASH/KEY: number of partitions
}

// PartitionOptions describes MySQL table partitioning for CreateTable.
// Other dialects ignore it.
type PartitionOptions struct {
	Type       PartitionType
	Column     string
	Partitions []PartitionDef
}

// SQL renders the PARTITION BY clause.
func (p *PartitionOptions) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PARTITION BY %s(%s)", p.Type, p.Column)

	switch p.Type {
	case PartitionHash, PartitionKey:
		if len(p.Partitions) > 0 && p.Partitions[0].Count > 0 {
			fmt.Fprintf(&b, " PARTITIONS %d", p.Partitions[0].Count)
		}
	case PartitionRange, PartitionList:
		b.WriteString(" (")
		for i, def := range p.Partitions {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "PARTITION %s %s", def.Name, def.valuesSQL())
		}
		b.WriteString(")")
	}
	return b.String()
}

func (d *PartitionDef) valuesSQL() string {
	if d.LessThan != "" {
		if d.LessThan == "MAXVALUE" {
			return "VALUES LESS THAN MAXVALUE"
		}
		return fmt.Sprintf("VALUES LESS THAN ('%s')", d.LessThan)
	}
	if len(d.In) > 0 {
		quoted := make([]string, len(d.In))
		for i, v := range d.In {
			quoted[i] = "'" + v + "'"
		}
		return fmt.Sprintf("VALUES IN (%s)", strings.Join(quoted, ", "))
	}
	return ""
}

// InterleaveSpec co-locates child table rows with parent table rows.
// None of the supported dialects render it; the data is preserved so
// migration files survive a round trip unchanged.
type InterleaveSpec struct {
	ParentTable   string
	ParentColumns []string
}
