package output

import (
	"fmt"

	engerrors "github.com/jibble-go/ircengine/internal/errors"
)

// Output combines colored terminal logging with file-based error logging
type Output struct {
	Logger      Logger
	ErrorLogger *ErrorLogger
}

// NewOutput creates a new Output with both terminal and file logging
func NewOutput(errorLogPath string) (*Output, error) {
	// Ensure log directory exists
	if err := EnsureLogDirectory(errorLogPath); err != nil {
		return nil, fmt.Errorf("failed to ensure log directory: %w", err)
	}

	return &Output{
		Logger:      NewColorLogger(),
		ErrorLogger: NewErrorLogger(errorLogPath),
	}, nil
}

// LogErrorToFile logs an error to the file-based error log
// This is a convenience method that also prints to terminal
func (o *Output) LogErrorToFile(errorType, errorMessage string, err error) {
	// Log to terminal
	if err != nil {
		o.Logger.Error("%s: %s - %v", errorType, errorMessage, err)
	} else {
		o.Logger.Error("%s: %s", errorType, errorMessage)
	}

	// Log to file
	if logErr := o.ErrorLogger.LogError(errorType, errorMessage, err); logErr != nil {
		// If we can't log to file, at least print to terminal
		o.Logger.Error("Failed to write to error log: %v", logErr)
	}
}

// LogEngineError logs err to both the terminal and the rotating error
// log. When err is an *errors.EngineError its Kind becomes the log
// entry's category, so a registration IoFailure and a NickAlreadyInUse
// land under distinct, greppable kinds instead of one generic "Error".
func (o *Output) LogEngineError(context string, err error) {
	kind := "Error"
	if ee, ok := err.(*engerrors.EngineError); ok {
		kind = string(ee.Kind)
	}
	o.LogErrorToFile(kind, context, err)
}
