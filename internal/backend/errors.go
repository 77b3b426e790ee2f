package backend

import (
	"errors"
	"fmt"
)

// RemoteError is a non-success response from the service.
type RemoteError struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// NetworkError means no usable response was obtained.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ErrUnhealthy is returned by Health when the service answered with an unexpected shape.
var ErrUnhealthy = errors.New("unexpected health response")

// IsRemote reports whether err carries a service rejection.
func IsRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var network *NetworkError
	return errors.As(err, &network)
}
