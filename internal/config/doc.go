// Package config defines the format-agnostic model of a spvbatch
// configuration file and the Loader interface that produces it. Concrete
// file formats live in their own packages (see internal/hcl).
package config
