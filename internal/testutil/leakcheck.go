// Package testutil provides testing utilities for the Aural application.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks should be deferred at the start of tests that spawn goroutines.
// It verifies that no goroutines were leaked during the test.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}

// IgnoreSpeakerGoroutines returns goleak options to ignore the audio
// output goroutines that live for the whole process once the speaker
// is initialized.
func IgnoreSpeakerGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("github.com/faiface/beep/speaker.Init.func1"),
		goleak.IgnoreAnyFunction("github.com/hajimehoshi/oto.newDriver.func1"),
	}
}
