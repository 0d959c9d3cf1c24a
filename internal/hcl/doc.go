// Package hcl provides the concrete HCL implementation of config.Loader.
// Expressions in the file are evaluated with two variables: `env`, an
// object holding the process environment, and `cwd`, the working
// directory.
//
//	shader_dir = "${cwd}/assets/shaders"
//	output_dir = env.SPV_OUT
//	jobs       = 4
//
//	notify {
//	  url = "http://localhost:3000/socket.io/"
//	}
package hcl
