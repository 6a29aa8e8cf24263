package server

import "github.com/jardiscore/dbschema/internal/schema"

type tableResponse struct {
	Name        string               `json:"name"`
	PrimaryKey  []string             `json:"primary_key"`
	Columns     []columnResponse     `json:"columns"`
	Indexes     []indexResponse      `json:"indexes"`
	ForeignKeys []foreignKeyResponse `json:"foreign_keys"`
}

type columnResponse struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Length        *int     `json:"length"`
	Precision     *int     `json:"precision"`
	Scale         *int     `json:"scale"`
	Nullable      bool     `json:"nullable"`
	Default       *string  `json:"default"`
	Primary       bool     `json:"primary"`
	AutoIncrement bool     `json:"auto_increment"`
	EnumValues    []string `json:"enum_values,omitempty"`
}

type indexResponse struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Unique  bool     `json:"unique"`
	Columns []string `json:"columns"`
}

type foreignKeyResponse struct {
	Name              string   `json:"name"`
	Columns           []string `json:"columns"`
	ReferencedTable   string   `json:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns"`
	OnUpdate          string   `json:"on_update"`
	OnDelete          string   `json:"on_delete"`
}

func newTableResponse(meta schema.TableMetadata) tableResponse {
	resp := tableResponse{
		Name:        meta.Name,
		PrimaryKey:  meta.PrimaryKey(),
		Columns:     make([]columnResponse, 0, len(meta.Columns)),
		Indexes:     []indexResponse{},
		ForeignKeys: []foreignKeyResponse{},
	}

	for _, col := range meta.Columns {
		resp.Columns = append(resp.Columns, columnResponse{
			Name:          col.Name,
			Type:          col.Type,
			Length:        col.Length(),
			Precision:     col.Precision(),
			Scale:         col.Scale(),
			Nullable:      col.Nullable,
			Default:       col.Default,
			Primary:       col.Primary,
			AutoIncrement: col.AutoIncrement,
			EnumValues:    col.EnumValues,
		})
	}

	for _, group := range schema.GroupIndexes(meta.Indexes) {
		idx := indexResponse{Name: group[0].Name, Type: group[0].IndexType, Unique: group[0].IsUnique}
		for _, row := range group {
			idx.Columns = append(idx.Columns, row.ColumnName)
		}
		resp.Indexes = append(resp.Indexes, idx)
	}

	for _, group := range schema.GroupForeignKeys(meta.ForeignKeys) {
		fk := foreignKeyResponse{
			Name:            group[0].ConstraintName,
			ReferencedTable: group[0].RefContainer,
			OnUpdate:        schema.NormalizeAction(group[0].OnUpdate),
			OnDelete:        schema.NormalizeAction(group[0].OnDelete),
		}
		for _, row := range group {
			fk.Columns = append(fk.Columns, row.ConstraintCol)
			fk.ReferencedColumns = append(fk.ReferencedColumns, row.RefColumn)
		}
		resp.ForeignKeys = append(resp.ForeignKeys, fk)
	}

	return resp
}
