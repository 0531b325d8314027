// Package fallback runs a remote operation under a deadline and substitutes a
// local result when it fails. Search and mirror-submit against the
// terminology registry both go through Do.
package fallback

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Source tells the caller where a result came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Policy configures a best-effort remote call.
type Policy struct {
	// Name identifies the operation in logs and metrics, e.g. "registry.search".
	Name string
	// Timeout bounds the remote call. Zero means only the caller's context applies.
	Timeout time.Duration
	Logger  zerolog.Logger
	// Observe, when set, is called once per Do with the final source and the
	// failure class (ClassNone on remote success).
	Observe func(name string, source Source, class Class)
}

// Do runs remote under the policy timeout. On any remote failure it returns
// local(err) instead, with SourceLocal. The returned error is non-nil only
// when ctx itself was cancelled or expired: an abandoned caller gets neither
// the remote nor the local result.
func Do[T any](ctx context.Context, p Policy, remote func(context.Context) (T, error), local func(error) T) (T, Source, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, "", err
	}

	callCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	start := time.Now()
	v, err := call(callCtx, remote)
	if err == nil {
		p.observe(SourceRemote, ClassNone)
		return v, SourceRemote, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, "", ctxErr
	}

	class := Classify(err)
	p.Logger.Warn().
		Err(err).
		Str("op", p.Name).
		Str("class", string(class)).
		Dur("elapsed", time.Since(start)).
		Msg("remote call failed, using local fallback")
	p.observe(SourceLocal, class)

	return local(err), SourceLocal, nil
}

func (p Policy) observe(source Source, class Class) {
	if p.Observe != nil {
		p.Observe(p.Name, source, class)
	}
}

func call[T any](ctx context.Context, remote func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return remote(ctx)
}
