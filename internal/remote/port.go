package remote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinUserPort is the lowest port accepted for the remote listener.
	MinUserPort = 1025
	// MaxUserPort is the highest valid TCP port.
	MaxUserPort = 65535

	// PortFieldName names the input field in validation messages.
	PortFieldName = "Remote server port"
)

// ErrInvalidPort is matched by every *InvalidPortError via errors.Is.
var ErrInvalidPort = errors.New("invalid remote server port")

// InvalidPortError reports a port string that is not an integer in the user port range.
type InvalidPortError struct {
	Field string
	Input string
	Err   error // parse error, nil when the value was only out of range
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("You must enter an integer value in the interval %d-%d in the text field for '%s'", MinUserPort, MaxUserPort, e.Field)
}

func (e *InvalidPortError) Is(target error) bool {
	return target == ErrInvalidPort
}

func (e *InvalidPortError) Unwrap() error {
	return e.Err
}

// IsUserPort reports whether port lies in the non-privileged range.
func IsUserPort(port int) bool {
	return port >= MinUserPort && port <= MaxUserPort
}

// ValidatePort parses text as a decimal port number and checks it is a user port.
func ValidatePort(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	port, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &InvalidPortError{Field: PortFieldName, Input: text, Err: err}
	}
	if !IsUserPort(port) {
		return 0, &InvalidPortError{Field: PortFieldName, Input: text}
	}
	return port, nil
}
