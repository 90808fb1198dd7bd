package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldUser      = "user"
	FieldDate      = "date"
	FieldClosing   = "closing"
	FieldDays      = "days"
	FieldLine      = "line"
	FieldPath      = "path"
	FieldBackend   = "backend"
	FieldError     = "error"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentExport  = "export"
	ComponentBackup  = "backup"
	ComponentUsers   = "users"
)

// Operation names.
const (
	OpLoad   = "load"
	OpAdd    = "add"
	OpEdit   = "edit"
	OpDelete = "delete"
	OpImport = "import"
	OpSave   = "save"
	OpExport = "export"
	OpBackup = "backup"
)
