// Package batch compiles every shader source in one directory to SPIR-V.
//
// CompileAll discovers the sources, then hands them to a compiler.Compiler
// one at a time, waiting for each before starting the next. The first
// failure aborts the batch and nothing after it is compiled. With
// Config.Jobs above one, a worker pool runs invocations concurrently; the
// first failure cancels the pool, including invocations still running,
// and is the error returned.
//
// Two sources sharing a base name (a.vert and a.frag) both write a.spv.
// The later one wins. CompileAll logs a warning but never renames.
package batch
