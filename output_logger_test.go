package statsig

import "testing"

func TestOutputLoggerRoutesThroughCallback(t *testing.T) {
	var gotMsg string
	var gotErr error
	log := &outputLogger{options: OutputLoggerOptions{LogCallback: func(msg string, err error) {
		gotMsg = msg
		gotErr = err
	}}}

	boom := &InvalidArgumentError{Message: "boom"}
	log.log("something failed", boom)

	if gotMsg != "something failed" {
		t.Errorf("got message %q", gotMsg)
	}
	if gotErr != boom {
		t.Errorf("callback did not receive the original error")
	}
}

func TestOutputLoggerDebugRespectsEnableDebug(t *testing.T) {
	var calls int
	log := &outputLogger{options: OutputLoggerOptions{
		EnableDebug: false,
		LogCallback: func(msg string, err error) { calls++ },
	}}
	log.debug("should not appear")
	if calls != 0 {
		t.Errorf("debug logged %d messages while disabled, want 0", calls)
	}

	log.options.EnableDebug = true
	log.debug("should appear")
	if calls != 1 {
		t.Errorf("debug logged %d messages while enabled, want 1", calls)
	}
}
