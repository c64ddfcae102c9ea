package statsig

import (
	"fmt"
	"os"
	"time"
)

// LogCallback lets a consumer redirect SDK diagnostics into its own
// logging pipeline instead of stdout/stderr.
type LogCallback func(message string, err error)

// OutputLoggerOptions configures the package-level logger. The SDK
// deliberately avoids depending on a third-party logging framework so it
// never imposes one on a consuming application; LogCallback is the escape
// hatch for callers who want structured logging.
type OutputLoggerOptions struct {
	LogCallback LogCallback
	EnableDebug bool
}

type outputLogger struct {
	options OutputLoggerOptions
}

func (o *outputLogger) log(msg string, err error) {
	if o.options.LogCallback != nil {
		o.options.LogCallback(msg, err)
		return
	}
	timestamp := time.Now().Format(time.RFC3339)
	formatted := fmt.Sprintf("[%s][statsig] %s", timestamp, msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", formatted, err.Error())
		return
	}
	fmt.Println(formatted)
}

func (o *outputLogger) logError(format string, args ...interface{}) {
	o.log(fmt.Sprintf(format, args...), nil)
}

func (o *outputLogger) debug(format string, args ...interface{}) {
	if !o.options.EnableDebug {
		return
	}
	o.log(fmt.Sprintf(format, args...), nil)
}
