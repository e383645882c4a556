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

package synth

import (
	"fmt"
	"io"

	"github.com/purpleidea/glfuzz/lang/types"
	"github.com/purpleidea/glfuzz/util/errwrap"

	"gopkg.in/yaml.v2"
)

const (
	// DefaultMaxDepth is the default nesting bound of synthesis.
	DefaultMaxDepth = 5

	// DefaultMaxFunctionParams is the default bound (exclusive) on the
	// number of parameters of a new function.
	DefaultMaxFunctionParams = 5

	// DefaultMaxAttempts is the default number of strategy picks that a
	// single synthesis call may make before it gives up.
	DefaultMaxAttempts = 1000

	// DefaultAdditiveDivisor is the default bound (exclusive) of the
	// divisor used to split a number into a sum.
	DefaultAdditiveDivisor = 10
)

// Config holds the tunables of a synthesis session. It can be read from yaml.
type Config struct {
	// MaxDepth is the number of nested synthesis calls past which only
	// literals and known variables are used.
	MaxDepth int `yaml:"maxdepth"`

	// MaxFunctionParams bounds the arity of new functions. The arity is
	// picked in [0, MaxFunctionParams).
	MaxFunctionParams int `yaml:"maxfunctionparams"`

	// MaxAttempts bounds the strategy picks of a single call. Running out
	// means a strategy broke its contract.
	MaxAttempts int `yaml:"maxattempts"`

	// AdditiveDivisor bounds the divisor of the additive split.
	AdditiveDivisor int `yaml:"additivedivisor"`

	// ParamTypes are the types that new function parameters can have.
	ParamTypes []string `yaml:"paramtypes"`

	// bug395 is a flag to workaround the yaml parser resetting all the
	// default struct field values when it finds an empty yaml document.
	// See: https://github.com/go-yaml/yaml/issues/395 for more information.
	bug395 bool
}

// DefaultConfig returns the default config that is used for absent values.
func DefaultConfig() *Config {
	paramTypes := []string{}
	for _, x := range types.ParamTypes() {
		paramTypes = append(paramTypes, x.String())
	}
	return &Config{ // the defaults
		MaxDepth:          DefaultMaxDepth,
		MaxFunctionParams: DefaultMaxFunctionParams,
		MaxAttempts:       DefaultMaxAttempts,
		AdditiveDivisor:   DefaultAdditiveDivisor,
		ParamTypes:        paramTypes,

		bug395: true, // workaround, lol
	}
}

// ToBytes returns the yaml representation of the config.
func (obj *Config) ToBytes() ([]byte, error) {
	return yaml.Marshal(obj)
}

// UnmarshalYAML is the standard unmarshal method for this struct.
func (obj *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type indirect Config // indirection to avoid infinite recursion
	raw := indirect(*DefaultConfig()) // convert; the defaults go here

	if err := unmarshal(&raw); err != nil {
		return err
	}

	*obj = Config(raw) // restore from indirection with type conversion!
	return nil
}

// Validate returns an error if the config can't be used.
func (obj *Config) Validate() error {
	if obj.MaxDepth < 0 {
		return fmt.Errorf("the MaxDepth must not be negative")
	}
	if obj.MaxFunctionParams < 1 {
		return fmt.Errorf("the MaxFunctionParams must be positive")
	}
	if obj.MaxAttempts < 1 {
		return fmt.Errorf("the MaxAttempts must be positive")
	}
	if obj.AdditiveDivisor < 1 {
		return fmt.Errorf("the AdditiveDivisor must be positive")
	}
	if _, err := obj.Types(); err != nil {
		return err
	}
	return nil
}

// Types parses the parameter types.
func (obj *Config) Types() ([]*types.Type, error) {
	if len(obj.ParamTypes) == 0 {
		return nil, fmt.Errorf("no ParamTypes")
	}
	result := []*types.Type{}
	for _, s := range obj.ParamTypes {
		typ := types.NewType(s)
		if typ == nil {
			return nil, fmt.Errorf("invalid param type `%s`", s)
		}
		if err := typ.Supported(); err != nil {
			return nil, errwrap.Wrapf(err, "invalid param type `%s`", s)
		}
		result = append(result, typ)
	}
	return result, nil
}

// ParseConfig reads from some input and returns a *Config struct that contains
// plausible values to be used.
func ParseConfig(reader io.Reader) (*Config, error) {
	config := DefaultConfig() // populate this
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, errwrap.Wrapf(err, "can't read config")
	}
	if err := yaml.Unmarshal(b, config); err != nil {
		return nil, errwrap.Wrapf(err, "can't parse config")
	}

	if !config.bug395 { // workaround, lol
		// we must have gotten an empty document, so use a new default!
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errwrap.Wrapf(err, "invalid config")
	}
	return config, nil
}
