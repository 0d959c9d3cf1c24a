package config

import "time"

// Model is the content of a configuration file. Pointer fields are nil
// when the file does not set them, so command-line flags can tell a
// missing value from a zero one.
type Model struct {
	ShaderDir  *string
	OutputDir  *string
	Compiler   *string
	Extensions []string
	Jobs       *int
	WGSL       *bool

	LogLevel  *string
	LogFormat *string

	Notify *Notify
}

// Notify configures progress publishing to a socket.io server.
type Notify struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}
