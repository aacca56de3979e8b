package toolsurface

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned when Dispatch is asked for a tool name outside
// the fixed surface.
var ErrUnknownTool = errors.New("toolsurface: unknown tool")

// ErrMissingArguments is returned when a tool's argument object is absent
// or fails to parse against its expected shape.
var ErrMissingArguments = errors.New("toolsurface: missing or malformed arguments")

func unknownTool(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

func missingArguments(tool string, cause error) error {
	return fmt.Errorf("%w for %q: %v", ErrMissingArguments, tool, cause)
}
