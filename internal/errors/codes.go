package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Resource errors
	ErrResourceBusy      ErrorCode = "resource_busy"
	ErrResourceNotFound  ErrorCode = "resource_not_found"
	ErrResourceExhausted ErrorCode = "resource_exhausted"

	// Application errors
	ErrInitApp  ErrorCode = "init_app_failed"
	ErrMainLoop ErrorCode = "main_loop_failed"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"

	// Lockfile errors
	ErrAlreadyRunning ErrorCode = "already_running"
	ErrLockfileRead   ErrorCode = "lockfile_read_failed"
	ErrLockfileWrite  ErrorCode = "lockfile_write_failed"
	ErrLockfileRemove ErrorCode = "lockfile_remove_failed"

	// Message bus errors
	ErrBusNotRunning    ErrorCode = "bus_not_running"
	ErrBusQueueFull     ErrorCode = "bus_queue_full"
	ErrBusInvalidLength ErrorCode = "bus_invalid_length"

	// State machine errors
	ErrStateMachineNoTransition ErrorCode = "statemachine_no_transition"
	ErrStateMachineGuardFailed  ErrorCode = "statemachine_guard_failed"

	// Supervisor errors
	ErrSupervisorInvalidTransition ErrorCode = "supervisor_invalid_transition"
	ErrSupervisorNotRunning        ErrorCode = "supervisor_not_running"

	// Sensor decode errors
	ErrSensorFrameTooShort ErrorCode = "sensor_frame_too_short"
	ErrSensorUnknownFrame  ErrorCode = "sensor_unknown_frame"

	// Diagnostics errors
	ErrDiagnosticsInit        ErrorCode = "diagnostics_init_failed"
	ErrDiagnosticsWrite       ErrorCode = "diagnostics_write_failed"
	ErrDiagnosticsClose       ErrorCode = "diagnostics_close_failed"
	ErrSchemaInitFailed       ErrorCode = "schema_init_failed"
	ErrSchemaMigrationFailed  ErrorCode = "schema_migration_failed"
	ErrSchemaValidationFailed ErrorCode = "schema_validation_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:                    "Internal error occurred",
	ErrInvalidArgument:             "Invalid argument provided",
	ErrNotImplemented:              "Operation not implemented",
	ErrUnavailable:                 "Service unavailable",
	ErrInvalidConfig:               "Invalid configuration",
	ErrMissingConfig:               "Missing configuration",
	ErrBindFlags:                   "Failed to bind flags",
	ErrReadConfig:                  "Failed to read configuration",
	ErrInitFailed:                  "Initialization failed",
	ErrShutdownFailed:              "Shutdown failed",
	ErrResourceBusy:                "Resource is busy",
	ErrResourceNotFound:            "Resource not found",
	ErrResourceExhausted:           "Resource exhausted",
	ErrOperationFailed:             "Operation failed",
	ErrTimeout:                     "Operation timed out",
	ErrInvalidOperation:            "Invalid operation",
	ErrInvalidInterval:             "Invalid interval value",
	ErrInitApp:                     "Failed to initialize application",
	ErrMainLoop:                    "Error in main loop",
	ErrAlreadyRunning:              "Another instance is already running",
	ErrLockfileRead:                "Failed to read lockfile",
	ErrLockfileWrite:               "Failed to write lockfile",
	ErrLockfileRemove:              "Failed to remove lockfile",
	ErrBusNotRunning:               "Message bus is not running",
	ErrBusQueueFull:                "Transmit queue is full",
	ErrBusInvalidLength:            "Frame payload length out of range",
	ErrStateMachineNoTransition:    "No transition defined for current state and event",
	ErrStateMachineGuardFailed:     "Transition guard rejected the event",
	ErrSupervisorInvalidTransition: "Supervisor rejected an invalid state transition",
	ErrSupervisorNotRunning:        "Supervisor control loop is not running",
	ErrSensorFrameTooShort:         "Sensor frame payload too short to decode",
	ErrSensorUnknownFrame:          "Sensor frame identifier has no registered decoder",
	ErrDiagnosticsInit:             "Failed to initialize diagnostics journal",
	ErrDiagnosticsWrite:            "Failed to write diagnostics record",
	ErrDiagnosticsClose:            "Failed to close diagnostics journal",
	ErrSchemaInitFailed:            "Failed to initialize schema",
	ErrSchemaMigrationFailed:       "Failed to migrate schema",
	ErrSchemaValidationFailed:      "Failed to validate schema",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
