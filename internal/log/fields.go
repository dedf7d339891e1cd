package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldChatID    = "chat_id"
	FieldUsername  = "username"
	FieldCommand   = "command"
	FieldUpdateID  = "update_id"
	FieldEntryID   = "entry_id"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldMonth     = "month"
	FieldYear      = "year"
	FieldBackend   = "backend"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentBot     = "bot"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpAppend   = "append"
	OpSplit    = "split"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithChat adds chat and user identity fields
func (f LogFields) WithChat(chatID int64, username string) LogFields {
	f[FieldChatID] = chatID
	f[FieldUsername] = username
	return f
}

// WithCommand adds the dispatched command name
func (f LogFields) WithCommand(command string) LogFields {
	f[FieldCommand] = command
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
