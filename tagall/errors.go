package tagall

import (
	"errors"
	"fmt"
)

var ErrConfigNotFound = errors.New("tag config not found")

// ErrorKind is the closed set of delivery failures the service branches on
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindConversationNotStarted means the user never opened a private chat with the bot
	ErrorKindConversationNotStarted
	ErrorKindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindConversationNotStarted:
		return "conversation_not_started"
	case ErrorKindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// SendError is returned by Transport implementations
type SendError struct {
	Kind ErrorKind
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed (%s): %v", e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of a transport error, ErrorKindUnknown for anything else
func KindOf(err error) ErrorKind {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Kind
	}
	return ErrorKindUnknown
}
