/*
Package tracing provides lightweight request tracing.

# Overview

Every API request gets a span. An incoming X-Trace-ID continues the caller's
trace; otherwise a new req_ ULID starts one. Both headers are echoed on the
response so a visitor's bug report can be matched to server logs.

# Usage

	tracer := tracing.New("portfolio", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "seed")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

Finished spans are buffered (1000) and logged by a single collector
goroutine; a full buffer drops spans rather than blocking requests.
*/
package tracing
