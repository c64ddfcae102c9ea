package statsig

import "fmt"

// InvalidArgumentError is returned at the API boundary when a required
// argument is missing, currently only an empty User.UserID.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// RequestMetadata describes the failed HTTP request a TransportError wraps.
type RequestMetadata struct {
	StatusCode int
	Endpoint   string
	Retries    int
}

// TransportError wraps a failed request: a network or non-2xx HTTP failure,
// or a DecodeError when the response body could not be decoded (reachable
// through errors.As).
type TransportError struct {
	RequestMetadata *RequestMetadata
	Err             error
}

func (e *TransportError) Error() string {
	if e.RequestMetadata != nil {
		return fmt.Sprintf("request to %s failed after %d retries: %s",
			e.RequestMetadata.Endpoint, e.RequestMetadata.Retries, e.Err.Error())
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a response body that could not be decoded into the
// caller's expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %s", e.Endpoint, e.Err.Error())
}

func (e *DecodeError) Unwrap() error { return e.Err }
