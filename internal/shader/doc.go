// Package shader discovers shader source files in a directory and
// classifies them by pipeline stage. It never reads or parses the
// sources themselves.
package shader
