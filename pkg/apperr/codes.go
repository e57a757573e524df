package apperr

// Code classifies an application error for callers and transports.
type Code string

const (
	// CodeUnknown unclassified failure
	CodeUnknown Code = "UNKNOWN"
	// CodeUnauthorized role policy denial, never retried
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeUnknownRole role value outside the closed enumeration
	CodeUnknownRole Code = "UNKNOWN_ROLE"
	// CodeRoleMismatch conversation parties do not form a youth/worker pair
	CodeRoleMismatch Code = "ROLE_MISMATCH"
	// CodeInvalidSender sender is not a party of the conversation
	CodeInvalidSender Code = "INVALID_SENDER"
	// CodeEmptyBody message body empty after trimming
	CodeEmptyBody Code = "EMPTY_BODY"
	// CodeBodyTooLong message body over the configured limit
	CodeBodyTooLong Code = "BODY_TOO_LONG"
	// CodeNotFound referenced record does not exist
	CodeNotFound Code = "NOT_FOUND"
	// CodeStorageUnavailable transient storage failure, retryable
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	// CodeSyncChannelDown push channel unavailable, non-fatal
	CodeSyncChannelDown Code = "SYNC_CHANNEL_DOWN"
)
