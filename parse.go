// Copyright 2026 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package spisim

import (
	"strings"

	"github.com/pkg/errors"
)

// IO expands a comma-separated pin list to individual pin names:
//
//	IO("ss, sck, mosi") // returns []string{"ss", "sck", "mosi"}
//
// IO panics on an empty name in the list; pin lists are program structure,
// not runtime input.
func IO(spec string) []string {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	fields := strings.Split(spec, ",")
	out := make([]string, len(fields))
	for i, f := range fields {
		name := strings.TrimSpace(f)
		if !validName(name) {
			panic("invalid pin name " + name + " in pin list " + spec)
		}
		out[i] = name
	}
	return out
}

// ParseConnections parses a connection description string and returns a
// pin name to wire name map. The description is a comma-separated list of
// pin=wire assignments:
//
//	"ss=ss, sck=sck, mosi=ctrl_out"
//
// An empty description yields no connections (inputs tie low, outputs drive
// anonymous wires).
func ParseConnections(c string) (map[string]string, error) {
	conns := make(map[string]string)
	if strings.TrimSpace(c) == "" {
		return conns, nil
	}
	for _, f := range strings.Split(c, ",") {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, errors.Errorf("in %q: expected pin=wire, got %q", c, strings.TrimSpace(f))
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !validName(k) || !validName(v) {
			return nil, errors.Errorf("in %q: invalid pin mapping %s=%s", c, k, v)
		}
		if _, ok := conns[k]; ok {
			return nil, errors.Errorf("in %q: pin %s connected twice", c, k)
		}
		conns[k] = v
	}
	return conns, nil
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
