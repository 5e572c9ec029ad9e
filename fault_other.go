//go:build !windows

package jitspeak

import (
	"errors"
	"fmt"
)

func defaultFaultOS() (FaultOS, error) {
	return nil, fmt.Errorf("unhandled exception filters: %w", errors.ErrUnsupported)
}
