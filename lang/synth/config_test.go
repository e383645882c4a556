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
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
)

func TestConfigDefaults0(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("default config is invalid: %+v", err)
		return
	}
	typs, err := config.Types()
	if err != nil {
		t.Errorf("default param types are invalid: %+v", err)
		return
	}
	if len(typs) != 7 {
		t.Errorf("expected 7 param types, got %d", len(typs))
	}
}

func TestParseConfig0(t *testing.T) {
	type test struct { // an individual test
		name string
		yaml string
		fail bool
		exp  *Config
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name: "empty",
			yaml: "",
			exp:  DefaultConfig(),
		})
	}
	{
		exp := DefaultConfig()
		exp.MaxDepth = 3
		testCases = append(testCases, test{
			name: "partial",
			yaml: "maxdepth: 3\n",
			exp:  exp,
		})
	}
	{
		exp := DefaultConfig()
		exp.MaxDepth = 0
		exp.MaxFunctionParams = 1
		exp.AdditiveDivisor = 2
		exp.ParamTypes = []string{"int", "ivec3"}
		testCases = append(testCases, test{
			name: "full",
			yaml: "maxdepth: 0\nmaxfunctionparams: 1\nadditivedivisor: 2\nparamtypes:\n- int\n- ivec3\n",
			exp:  exp,
		})
	}
	{
		testCases = append(testCases, test{
			name: "negative depth",
			yaml: "maxdepth: -1\n",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "no params",
			yaml: "maxfunctionparams: 0\n",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "no attempts",
			yaml: "maxattempts: 0\n",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "no divisor",
			yaml: "additivedivisor: 0\n",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "unknown param type",
			yaml: "paramtypes: [mat2]\n",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "struct param type",
			yaml: "paramtypes: [struct S]\n",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "empty param types",
			yaml: "paramtypes: []\n",
			fail: true,
		})
	}
	{
		testCases = append(testCases, test{
			name: "bad yaml",
			yaml: "maxdepth: [\n",
			fail: true,
		})
	}

	names := []string{}
	for index, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", index)
			continue
		}
		if strings.Contains(strings.Join(names, "\x00")+"\x00", tc.name+"\x00") {
			t.Errorf("test #%d: duplicate sub test name of: %s", index, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", index, tc.name), func(t *testing.T) {
			config, err := ParseConfig(strings.NewReader(tc.yaml))
			if tc.fail {
				if err == nil {
					t.Errorf("test #%d: expected failure, got: %s", index, spew.Sdump(config))
				}
				return
			}
			if err != nil {
				t.Errorf("test #%d: unexpected error: %+v", index, err)
				return
			}
			if diff := pretty.Compare(config, tc.exp); diff != "" {
				t.Errorf("test #%d: config did not match expected", index)
				t.Logf("test #%d: diff:\n%s", index, diff)
				t.Logf("test #%d: got: %s", index, spew.Sdump(config))
			}
		})
	}
}

func TestConfigRoundTrip0(t *testing.T) {
	config := DefaultConfig()
	config.MaxDepth = 2
	config.ParamTypes = []string{"bool", "vec4"}
	b, err := config.ToBytes()
	if err != nil {
		t.Errorf("could not marshal: %+v", err)
		return
	}
	parsed, err := ParseConfig(bytes.NewReader(b))
	if err != nil {
		t.Errorf("could not parse: %+v", err)
		return
	}
	if diff := pretty.Compare(parsed, config); diff != "" {
		t.Errorf("round trip changed the config:\n%s", diff)
	}
}
