package hcl

// fileRoot mirrors the top-level structure of a configuration file.
type fileRoot struct {
	ShaderDir  *string  `hcl:"shader_dir,optional"`
	OutputDir  *string  `hcl:"output_dir,optional"`
	Compiler   *string  `hcl:"compiler,optional"`
	Extensions []string `hcl:"extensions,optional"`
	Jobs       *int     `hcl:"jobs,optional"`
	WGSL       *bool    `hcl:"wgsl,optional"`

	Log    *logBlock    `hcl:"log,block"`
	Notify *notifyBlock `hcl:"notify,block"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type notifyBlock struct {
	URL                string  `hcl:"url"`
	Namespace          *string `hcl:"namespace,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
	Timeout            *string `hcl:"timeout,optional"`
}
