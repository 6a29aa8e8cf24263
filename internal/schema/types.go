package schema

// Table represents a database table
type Table struct {
	Name string
	Type string // BASE TABLE for ordinary tables
}

// Column represents a table column in canonical form
type Column struct {
	Name          string
	Type          string // canonical lowercase token: varchar, int, decimal, ...
	Size          Size   // nil when the type carries no length or precision
	Nullable      bool
	Default       *string
	Primary       bool
	AutoIncrement bool
	EnumValues    []string // only set when Type == "enum"
}

// Length returns the character/byte cap of a sized column, or nil.
func (c Column) Length() *int {
	if s, ok := c.Size.(Sized); ok {
		l := s.Length
		return &l
	}
	return nil
}

// Precision returns the precision of a fixed-point column, or nil.
func (c Column) Precision() *int {
	if fp, ok := c.Size.(FixedPoint); ok {
		p := fp.Precision
		return &p
	}
	return nil
}

// Scale returns the scale of a fixed-point column, or nil.
func (c Column) Scale() *int {
	if fp, ok := c.Size.(FixedPoint); ok && fp.Scale != nil {
		s := *fp.Scale
		return &s
	}
	return nil
}

// Size describes the numeric arguments of a column type. A column is either
// Sized, FixedPoint or unsized (nil), never both sized and fixed-point.
type Size interface {
	isSize()
}

// Sized carries a character or byte length, as in varchar(255).
type Sized struct {
	Length int
}

// FixedPoint carries precision and optional scale, as in decimal(10,2).
type FixedPoint struct {
	Precision int
	Scale     *int
}

func (Sized) isSize()      {}
func (FixedPoint) isSize() {}

// NewSize builds the Size for the given nullable length/precision/scale
// triple. Precision wins over length when a backend reports both.
func NewSize(length, precision, scale *int) Size {
	if precision != nil {
		return FixedPoint{Precision: *precision, Scale: scale}
	}
	if length != nil {
		return Sized{Length: *length}
	}
	return nil
}

// Index types
const (
	IndexPrimary = "primary"
	IndexUnique  = "unique"
	IndexPlain   = "index"
)

// Index is one (index, column) row. Multi-column indexes are represented
// as several rows sharing Name, ordered by Sequence.
type Index struct {
	Name       string
	ColumnName string
	IsUnique   bool
	IndexType  string
	Sequence   int
}

// ForeignKey is one column of a foreign key constraint. Composite keys are
// represented as several rows sharing ConstraintName, ordered by Sequence.
type ForeignKey struct {
	Container      string
	ConstraintName string
	ConstraintCol  string
	RefContainer   string
	RefColumn      string
	OnUpdate       string
	OnDelete       string
	Sequence       int
}

// TableMetadata bundles everything read for one table
type TableMetadata struct {
	Name        string
	Columns     []Column
	Indexes     []Index
	ForeignKeys []ForeignKey
}

// PrimaryKey returns the names of the primary key columns in column order
func (t TableMetadata) PrimaryKey() []string {
	return PrimaryKeyColumns(t.Columns)
}

// PrimaryKeyColumns filters the columns flagged as primary
func PrimaryKeyColumns(columns []Column) []string {
	var pk []string
	for _, col := range columns {
		if col.Primary {
			pk = append(pk, col.Name)
		}
	}
	return pk
}
