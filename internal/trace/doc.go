// Package trace records what amend does: commands, inspection passes, write
// actions and, at debug level, every intention factory call.
//
// # Usage
//
//	amend check --trace=detail --trace-output=trace.ndjson ./docs
//
// # Tracers
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: in-memory circular buffer, dumped when the command ends
//   - both at once with --trace-mode=both
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "inspect", parentID)
//	defer span.End("")
package trace
