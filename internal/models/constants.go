package models

// Statement formats understood by the normalizer, keyed by file extension.
const (
	FormatXLS  = ".xls"
	FormatXLSX = ".xlsx"
	FormatCSV  = ".csv"
	FormatOFX  = ".ofx"
	FormatQFX  = ".qfx"
)

// CleanSheetName is the worksheet used for cleaned .xlsx files.
const CleanSheetName = "Movements"

// CardTypeOFX labels records imported from OFX statements, which carry no card type column.
const CardTypeOFX = "OFX"

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
