package errs

// Error codes surfaced over the wire. Keep these stable: clients key retry
// and rollback behavior off them.
const (
	CodeValidation  = 1001 // bad payload: empty content, missing receiver
	CodePersistence = 1002 // message store append failed
	CodeUnbound     = 1003 // event on a connection that never registered
	CodeUnknownType = 1004 // frame type has no handler
	CodeAuth        = 1005 // handshake token rejected
)

var (
	ErrValidation  = NewCodeError(CodeValidation, "validation failed")
	ErrPersistence = NewCodeError(CodePersistence, "message persist failed")
	ErrUnbound     = NewCodeError(CodeUnbound, "connection not registered")
	ErrUnknownType = NewCodeError(CodeUnknownType, "unknown frame type")
	ErrAuth        = NewCodeError(CodeAuth, "unauthorized")
)
