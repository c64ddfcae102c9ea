package statsig

import "sync"

type globalState struct {
	logger *outputLogger
	mu     sync.RWMutex
}

var global globalState

// logger returns the process-wide diagnostics logger installed by the most
// recently constructed Client. Using the package-level variable directly
// instead of this accessor risks a data race; this wraps the access in a
// lock the way the rest of the ambient state in this package does.
func logger() *outputLogger {
	global.mu.RLock()
	defer global.mu.RUnlock()
	if global.logger == nil {
		return &outputLogger{}
	}
	return global.logger
}

func initializeGlobalOutputLogger(options OutputLoggerOptions) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.logger = &outputLogger{options: options}
}
