// Package converge polls a synchronous check until it converges.
//
// A Series samples the check every SampleInterval for a bounded duration,
// producing one Checkpoint per sample. Two policies reduce a Series to a
// single verdict:
//
//   - When succeeds as soon as any checkpoint passes, and fails if none did
//     within the duration (default 2s).
//   - Always succeeds only if every checkpoint across the whole duration
//     passes, and fails at the first one that does not (default 200ms).
//
// A check passes unless it returns exactly false, returns a non-nil error, or
// panics. Errors and panics are returned verbatim from the policy, so an
// assertion failure surfaces with its original message:
//
//	err := converge.When(ctx, converge.Assert(func(t assert.TestingT) {
//	    assert.Equal(t, 5, counter.Load())
//	}), converge.WithDuration(50*time.Millisecond))
//
// Checks are invoked many times, so they must be synchronous and free of
// side effects. Returning a channel, future, or promise is reported as a
// misuse error (ErrAsyncCheck) rather than a normal failure.
package converge
