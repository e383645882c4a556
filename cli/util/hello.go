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

package util

import (
	"fmt"
	"io"
	"log"
	"time"
)

// Hello prints the banner to out, and sets up the standard logger to write to
// logs. It returns the start time.
func Hello(out, logs io.Writer, program, version string, flags Flags) time.Time {
	start := time.Now()

	logFlags := log.LstdFlags
	if flags.Debug {
		logFlags = logFlags + log.Lshortfile
	}
	logFlags = logFlags - log.Ldate // remove the date for now
	log.SetFlags(logFlags)
	log.SetOutput(logs)

	if program == "" {
		program = "<unknown>"
	}
	fmt.Fprintf(out, "This is: %s, version: %s\n", program, version)
	fmt.Fprintf(out, "Copyright (C) James Shubin and the project contributors\n")
	if flags.Logf != nil {
		flags.Logf("main: start: %v", start.UnixNano())
	}
	return start
}
