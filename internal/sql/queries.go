package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_catalog_version.sql
var RegisterCatalogVersion string

//go:embed queries/lookup_catalog_version.sql
var LookupCatalogVersion string

//go:embed queries/update_version_status.sql
var UpdateVersionStatus string

//go:embed queries/reset_catalog_version.sql
var ResetCatalogVersion string

//go:embed queries/delete_version_rows.sql
var DeleteVersionRows string

//go:embed queries/deactivate_older_versions.sql
var DeactivateOlderVersions string

//go:embed queries/activate_version.sql
var ActivateVersion string

//go:embed queries/active_services.sql
var ActiveServices string

//go:embed queries/list_versions.sql
var ListVersions string

//go:embed queries/analyze_priced_services.sql
var AnalyzePricedServices string
