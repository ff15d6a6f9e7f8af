package logging

// Field names shared by every component so log lines can be filtered
// consistently across a run.
const (
	FieldRunID        = "run_id"
	FieldFile         = "file_path"
	FieldInputFile    = "input_file"
	FieldOutputFile   = "output_file"
	FieldArchiveFile  = "archive_file"
	FieldFormat       = "format"
	FieldSheet        = "sheet"
	FieldRow          = "row"
	FieldColumn       = "column"
	FieldValue        = "value"
	FieldStage        = "stage"
	FieldCount        = "count"
	FieldAmount       = "amount"
	FieldDelimiter    = "delimiter"
	FieldWorkers      = "workers"
	FieldDuration     = "duration_ms"
	FieldUnpaidCount  = "unpaid_count"
	FieldPaymentCount = "payment_count"
	FieldPurchaseCnt  = "purchase_count"
)
