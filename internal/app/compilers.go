package app

import (
	"slices"

	"github.com/vk/spvbatch/internal/compiler"
	"github.com/vk/spvbatch/internal/shader"
)

// extensions returns the source groups to discover, in batch order.
func (app *App) extensions() []string {
	exts := app.config.Extensions
	if len(exts) == 0 {
		exts = shader.DefaultExtensions
	}
	exts = slices.Clone(exts)
	if app.config.WGSL && !slices.Contains(exts, shader.ExtWGSL) {
		exts = append(exts, shader.ExtWGSL)
	}
	return exts
}

// compilers maps every extension to the compiler that handles it. WGSL
// is compiled in process; everything else goes to glslangValidator.
func (app *App) compilers(exts []string) compiler.ByExtension {
	glslang := compiler.NewGlslang(app.config.Compiler, app.config.OutputDir)
	set := make(compiler.ByExtension, len(exts))
	for _, ext := range exts {
		if ext == shader.ExtWGSL {
			set[ext] = compiler.NewNaga(app.config.OutputDir)
			continue
		}
		set[ext] = glslang
	}
	return set
}
