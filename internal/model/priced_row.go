package model

import "github.com/google/uuid"

// PricedRow is one catalog entry together with its computed quote, as written
// to the priced export file and COPY-loaded into tariff.priced_services.
type PricedRow struct {
	CatalogVersionID int64     `parquet:"-"`
	ImportBatchID    uuid.UUID `parquet:"-"`
	SourceRowNumber  int64     `parquet:"-"`
	SourceRowHash    []byte    `parquet:"-"`

	Code         string  `parquet:"code"`
	TypeMarker   string  `parquet:"type_marker"`
	Description  string  `parquet:"description"`
	Category     string  `parquet:"category"`
	Professional float64 `parquet:"professional_value"`
	Technical    float64 `parquet:"technical_value"`

	Private      int64 `parquet:"private"`
	Insurance    int64 `parquet:"insurance"`
	Organization int64 `parquet:"organization"`
	Government   int64 `parquet:"government"`
	Government70 int64 `parquet:"government_70"`
}

// PricedColumns returns the ordered column names for COPY into
// tariff.priced_services.
func PricedColumns() []string {
	return []string{
		"catalog_version_id",
		"import_batch_id",
		"source_row_number",
		"source_row_hash",
		"code",
		"type_marker",
		"description",
		"category",
		"professional_value",
		"technical_value",
		"private_price",
		"insurance_price",
		"organization_share",
		"government_price",
		"government_70",
	}
}

// CopyValues returns the row values in the same order as PricedColumns(),
// suitable for pgx CopyFromSource.
func (r *PricedRow) CopyValues() []any {
	return []any{
		r.CatalogVersionID,
		r.ImportBatchID,
		r.SourceRowNumber,
		r.SourceRowHash,
		r.Code,
		r.TypeMarker,
		r.Description,
		r.Category,
		r.Professional,
		r.Technical,
		r.Private,
		r.Insurance,
		r.Organization,
		r.Government,
		r.Government70,
	}
}
