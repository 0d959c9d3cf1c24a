// Package compiler turns a single shader source into a SPIR-V binary.
//
// The Glslang compiler shells out to glslangValidator with the fixed
// template
//
//	glslangValidator -V <source> -o <base>.spv
//
// and waits for it. Naga compiles WGSL in process. Both report failures
// as *ToolNotFoundError or *CompilationFailedError.
package compiler
