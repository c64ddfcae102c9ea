package statsig

import (
	"runtime"
	"sync"

	"github.com/google/uuid"
)

const (
	sdkType    = "go-sdk-core"
	sdkVersion = "0.1.0"
)

type statsigMetadata struct {
	SDKType         string
	SDKVersion      string
	LanguageVersion string
	SessionID       string
}

var (
	sessionOnce sync.Once
	sessionID   string
)

// sessionIDForProcess mints a session ID exactly once per process, the way
// the teacher's own metadata wiring is shaped, using a random (v4) UUID.
func sessionIDForProcess() string {
	sessionOnce.Do(func() {
		sessionID = uuid.NewString()
	})
	return sessionID
}

func getStatsigMetadata() statsigMetadata {
	return statsigMetadata{
		SDKType:         sdkType,
		SDKVersion:      sdkVersion,
		LanguageVersion: runtime.Version(),
		SessionID:       sessionIDForProcess(),
	}
}
