// Glfuzz
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"

	cliUtil "github.com/purpleidea/glfuzz/cli/util"
	"github.com/purpleidea/glfuzz/lang/ast"
	"github.com/purpleidea/glfuzz/lang/interpret"
	"github.com/purpleidea/glfuzz/lang/synth"
	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/prometheus"
	"github.com/purpleidea/glfuzz/util/errwrap"
	"github.com/purpleidea/glfuzz/util/random"
	"github.com/purpleidea/glfuzz/util/semaphore"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// DefaultParallel is the number of shaders generated at the same time.
	DefaultParallel = 4

	// ShaderExtension is the file extension of a generated shader.
	ShaderExtension = ".frag"

	// GraphvizExtension is the file extension of a call graph.
	GraphvizExtension = ".dot"
)

// GenerateArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `generate` subcommand.
type GenerateArgs struct {
	Seed     int64 `arg:"--seed" help:"seed of the first shader, the others count up from it"`
	Count    int   `arg:"--count" default:"1" help:"number of shaders to generate"`
	Parallel int   `arg:"--parallel" default:"4" help:"number of shaders to generate at the same time"`

	Config   string `arg:"--config" help:"path to a yaml synthesis config"`
	MaxDepth *int   `arg:"--max-depth" help:"override the max synthesis depth of the config"`

	Output string    `arg:"--output" default:"." help:"directory to write the shaders to"`
	Color  []float32 `arg:"--color" help:"the four channels of the output color"`

	Graphviz        bool `arg:"--graphviz" help:"also write the call graph of each shader"`
	Check           bool `arg:"--check" help:"run each shader in the reference interpreter"`
	KeepGlobalInits bool `arg:"--keep-global-inits" help:"keep the initializers of the globals, which may not be constant"`

	Prometheus       bool   `arg:"--prometheus" help:"start a prometheus instance"`
	PrometheusListen string `arg:"--prometheus-listen" help:"specify prometheus instance binding"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not.
func (obj *GenerateArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("generate: "+format, v...)
	}
	cliUtil.Hello(os.Stdout, os.Stderr, data.Program, data.Version, data.Flags) // say hello!
	defer Logf("goodbye!")

	fs := afero.NewOsFs()
	config, err := LoadConfig(fs, obj.Config)
	if err != nil {
		return false, err
	}
	if obj.MaxDepth != nil {
		config.MaxDepth = *obj.MaxDepth
		if err := config.Validate(); err != nil {
			return false, cliUtil.CliParseError(err)
		}
	}

	var prom *prometheus.Prometheus
	if obj.Prometheus {
		prom = &prometheus.Prometheus{
			Listen: obj.PrometheusListen,
			Logf:   Logf,
		}
		if err := prom.Init(); err != nil {
			return false, errwrap.Wrapf(err, "can't initialize prometheus instance")
		}
		if err := prom.Start(); err != nil {
			return false, errwrap.Wrapf(err, "can't start prometheus instance")
		}
		defer func() {
			if err := prom.Stop(); err != nil {
				Logf("could not stop prometheus instance: %+v", err)
			}
		}()
		Logf("prometheus: listening on %s", prom.Addr())
	}

	batch := &Batch{
		Fs:        fs,
		OutputDir: obj.Output,
		Seed:      obj.Seed,
		Count:     obj.Count,
		Parallel:  obj.Parallel,
		Config:    config,
		Color:     obj.Color,
		Graphviz:  obj.Graphviz,
		Check:     obj.Check,
		Metrics:   prom,

		KeepGlobalInits: obj.KeepGlobalInits,

		Debug: data.Flags.Debug,
		Logf:  data.Flags.Logf,
	}
	if err := batch.Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// LoadConfig reads the synthesis config from the filesystem. An empty path
// returns the defaults.
func LoadConfig(fs afero.Fs, filename string) (*synth.Config, error) {
	if filename == "" {
		return synth.DefaultConfig(), nil
	}
	f, err := fs.Open(filename)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't open config")
	}
	defer f.Close()
	return synth.ParseConfig(f)
}

// ShaderName returns the base file name of the shader at this index.
func ShaderName(index int) string {
	return fmt.Sprintf("shader_%d", index)
}

// Batch generates a number of shaders. Shader i comes from seed Seed + i, so
// the output of a batch only depends on its fields and not on the scheduling.
type Batch struct {
	// Fs is where the shaders are written.
	Fs afero.Fs

	// OutputDir is the directory in Fs that gets the shaders.
	OutputDir string

	Seed  int64
	Count int

	// Parallel is the number of shaders that are generated at once.
	Parallel int

	// Config is shared read-only by every session. If nil, the default
	// config is used.
	Config *synth.Config

	// Color is the value that every shader computes. If empty, the
	// default color is used.
	Color []float32

	// Graphviz also writes the call graph of each shader.
	Graphviz bool

	// Check runs each shader in the interpreter and errors if it does
	// not compute the color.
	Check bool

	// KeepGlobalInits leaves the initializers of the globals in place.
	// Otherwise they become assignments at the top of main, since GLSL ES
	// only accepts constant global initializers.
	KeepGlobalInits bool

	// Metrics is optional.
	Metrics *prometheus.Prometheus

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Validate the struct and set some defaults.
func (obj *Batch) Validate() error {
	if obj.Fs == nil {
		return fmt.Errorf("the Fs is nil")
	}
	if obj.Count < 0 {
		return fmt.Errorf("the Count must not be negative")
	}
	if obj.Parallel <= 0 {
		obj.Parallel = DefaultParallel
	}
	if obj.OutputDir == "" {
		obj.OutputDir = "."
	}
	if obj.Config == nil {
		obj.Config = synth.DefaultConfig()
	}
	if len(obj.Color) == 0 {
		obj.Color = synth.DefaultColor
	}
	if len(obj.Color) != types.TypeVec4.Size {
		return fmt.Errorf("the Color needs %d channels", types.TypeVec4.Size)
	}
	for i, c := range obj.Color {
		if err := types.Validate(types.NewFloat(c)); err != nil {
			return errwrap.Wrapf(err, "channel %d of the Color", i)
		}
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {} // noop
	}
	return obj.Config.Validate()
}

// Run generates every shader. It keeps going when one of them fails, and
// returns all the errors together.
func (obj *Batch) Run(ctx context.Context) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	if err := obj.Fs.MkdirAll(obj.OutputDir, 0755); err != nil {
		return errwrap.Wrapf(err, "can't make output dir")
	}

	sema := semaphore.NewSemaphore(obj.Parallel)
	defer sema.Close()
	wg := &sync.WaitGroup{}
	mutex := &sync.Mutex{}
	var reterr error

	for i := 0; i < obj.Count; i++ {
		if err := sema.Acquire(ctx); err != nil {
			mutex.Lock()
			reterr = errwrap.Append(reterr, err)
			mutex.Unlock()
			break
		}
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer sema.Release()
			err := obj.generate(index)
			if obj.Metrics != nil {
				if err := obj.Metrics.UpdateShadersTotal(err != nil); err != nil {
					obj.Logf("batch: could not update metrics: %+v", err)
				}
			}
			if err == nil {
				return
			}
			mutex.Lock()
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "shader %d", index))
			mutex.Unlock()
		}(i)
	}
	wg.Wait()
	return reterr
}

// generate runs one synthesis session and writes its output.
func (obj *Batch) generate(index int) error {
	seed := obj.Seed + int64(index)
	prefix := fmt.Sprintf("shader[%s]: ", uuid.New())
	Logf := func(format string, v ...interface{}) {
		obj.Logf(prefix+format, v...)
	}
	if obj.Debug {
		Logf("seed: %d", seed)
	}

	gen := &synth.Generator{
		Program: synth.NewShaderProgram(),
		Config:  obj.Config,
		Rand:    random.New(seed),
		Metrics: obj.Metrics,

		Debug: obj.Debug,
		Logf:  Logf,
	}
	if err := gen.Init(); err != nil {
		return err
	}
	if err := gen.GenerateColor(obj.Color); err != nil {
		return err
	}
	if obj.Metrics != nil {
		obj.Metrics.ObserveDepth(gen.MaxDepthSeen())
	}
	if !obj.KeepGlobalInits {
		count, err := ast.AllGlobalInitsToMain(gen.Program)
		if err != nil {
			return err
		}
		if obj.Debug {
			Logf("moved %d global initializers", count)
		}
	}

	if obj.Check {
		if err := obj.check(gen, Logf); err != nil {
			return err
		}
	}

	name := path.Join(obj.OutputDir, ShaderName(index))
	if err := afero.WriteFile(obj.Fs, name+ShaderExtension, []byte(gen.Program.String()), 0644); err != nil {
		return errwrap.Wrapf(err, "can't write shader")
	}
	if obj.Graphviz {
		if err := gen.CallGraph().WriteGraphviz(obj.Fs, name+GraphvizExtension); err != nil {
			return err
		}
	}
	Logf("wrote %s with %d functions", name+ShaderExtension, gen.CallGraph().NumVertices())
	return nil
}

// check runs the shader and compares the output with the color. A shader that
// runs for too long is only logged.
func (obj *Batch) check(gen *synth.Generator, Logf func(format string, v ...interface{})) error {
	elems := []types.Value{}
	for _, c := range obj.Color {
		elems = append(elems, types.NewFloat(c))
	}
	target, err := types.NewComposite(types.TypeVec4, elems...)
	if err != nil {
		return err
	}

	i := &interpret.Interpreter{
		Program: gen.Program,
		Debug:   obj.Debug,
		Logf: func(format string, v ...interface{}) {
			Logf("interpret: "+format, v...)
		},
	}
	globals, err := i.Run()
	if errwrap.Is(err, interpret.ErrTooManySteps) {
		Logf("check skipped: %+v", err)
		return nil
	}
	if err != nil {
		return errwrap.Wrapf(err, "check failed")
	}
	if err := interpret.Check(target, globals[synth.OutputName]); err != nil {
		return errwrap.Wrapf(err, "check failed")
	}
	return nil
}
