package model

// ServiceRow mirrors the catalog Parquet schema for one tariff code. Values
// arrive as text because the source sheets mix numbers, blanks, and
// thousands-separated strings; they are parsed during catalog load.
type ServiceRow struct {
	Code         string  `parquet:"code"`
	TypeMarker   *string `parquet:"type_marker,optional"`
	Description  string  `parquet:"description"`
	Notes        *string `parquet:"notes,optional"`
	Total        *string `parquet:"total,optional"`
	Professional *string `parquet:"professional_value,optional"`
	Technical    *string `parquet:"technical_value,optional"`
	Anesthesia   *string `parquet:"anesthesia_base,optional"`
}

// RequiredColumns lists the columns every catalog file must carry.
func RequiredColumns() []string {
	return []string{"code", "description", "professional_value", "technical_value"}
}
