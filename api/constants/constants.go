package constants

// User facing messages
const (
	ErrMethodNotAllowed  = "Method Not Allowed"
	ErrRouteNotFound     = "404 - Route not found"
	ErrInvalidUpload     = "Could not read the upload. Send a multipart form with the fields reports and ledgers."
	ErrUploadTooLarge    = "The uploaded files are too large."
	ErrMissingSources    = "Upload at least one depreciation report (PDF) and one SIAFI ledger (CSV/XLSX/XLS)."
	ErrNoUnits           = "No file name starts with a unit code. Name files like 153289.pdf and 153289_SIAFI.csv."
	ErrRunNotFound       = "Reconciliation run not found. It may have expired, please upload the files again."
	ErrRenderFailed      = "The reconciliation finished but its report could not be generated."
	ErrReconcileCanceled = "The reconciliation was interrupted before finishing."
)

// Content Types
const (
	ContentType     = "Content-Type"
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const DateTimeFormat = "2006-01-02 15:04:05"
