/*
 * build.go, part of mlipts.
 *
 *
 * Copyright 2025 William Davie <wdavie{at}uclDOTacDOTuk>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * mlipts is developed at the Department of Physics and Astronomy,
 * University College London.
 *
 */

package lammps

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wdavie/mlipts"
)

// DefaultMarker is the prefix that flags sample-space variables inside a
// LAMMPS input, as in "fix nvt temp £TEMP £TEMP 0.1".
const DefaultMarker = "£"

// Builder generates LAMMPS calculation directories from a base calculation
// and a sample space of input variables.
type Builder struct {
	Marker string //prefix marking variables in the input
	Label  string //prefix for generated directory names
}

func NewBuilder() *Builder {
	b := new(Builder)
	b.SetDefaults()
	return b
}

func (B *Builder) SetDefaults() {
	B.Marker = DefaultMarker
	B.Label = "lammps"
}

// BuildCalculations creates one calculation directory under outdir for every
// combination of sample-space values in vars, copying the base calculation
// into it and substituting the marked variables in the input. Keys of vars
// may carry the marker or not. It returns the created directory paths, in a
// deterministic order (keys sorted, values in the order given).
func (B *Builder) BuildCalculations(base string, vars map[string][]string, outdir string) ([]string, error) {
	inputName, _, err := ScanBase(base)
	if err != nil {
		return nil, errDecorate(err, "BuildCalculations")
	}
	raw, err := os.ReadFile(filepath.Join(base, inputName))
	if err != nil {
		return nil, Error{"cannot read the base input", mlipts.ErrBadInput, filepath.Join(base, inputName), err.Error(), []string{"BuildCalculations"}, true}
	}
	text := string(raw)
	norm, keys, err := B.normalize(vars)
	if err != nil {
		return nil, errDecorate(err, "BuildCalculations")
	}
	if err := B.checkPresent(text, keys, base); err != nil {
		return nil, errDecorate(err, "BuildCalculations")
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return nil, Error{"cannot create the output directory", mlipts.ErrBadInput, outdir, err.Error(), []string{"BuildCalculations"}, true}
	}
	var made []string
	for _, combo := range product(keys, norm) {
		dir := filepath.Join(outdir, B.dirName(keys, combo))
		if err := mlipts.CopyDirContents(base, dir); err != nil {
			return nil, errDecorate(err, "BuildCalculations")
		}
		sub := make(map[string]string, len(keys))
		for i, k := range keys {
			sub[k] = combo[i]
		}
		if err := os.WriteFile(filepath.Join(dir, inputName), []byte(substitute(text, sub)), 0644); err != nil {
			return nil, Error{"cannot write the substituted input", mlipts.ErrBadInput, dir, err.Error(), []string{"BuildCalculations"}, true}
		}
		made = append(made, dir)
	}
	return made, nil
}

// ScanBase checks that base holds exactly one in.* input file and exactly one
// *.dat data file, and returns their names.
func ScanBase(base string) (input, data string, err error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", "", Error{"cannot read the base directory", mlipts.ErrBadInput, base, err.Error(), []string{"ScanBase"}, true}
	}
	var inputs, datas []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "in.") {
			inputs = append(inputs, name)
		}
		if strings.HasSuffix(name, ".dat") {
			datas = append(datas, name)
		}
	}
	if len(inputs) != 1 {
		return "", "", Error{fmt.Sprintf("want exactly one in.* input file, found %d", len(inputs)), mlipts.ErrBadInput, base, strings.Join(inputs, " "), []string{"ScanBase"}, true}
	}
	if len(datas) != 1 {
		return "", "", Error{fmt.Sprintf("want exactly one *.dat data file, found %d", len(datas)), mlipts.ErrBadInput, base, strings.Join(datas, " "), []string{"ScanBase"}, true}
	}
	return inputs[0], datas[0], nil
}

// normalize prefixes vars keys with the marker where missing, rejects empty
// or path-breaking values, and returns the normalized map with its sorted
// key list.
func (B *Builder) normalize(vars map[string][]string) (map[string][]string, []string, error) {
	norm := make(map[string][]string, len(vars))
	keys := make([]string, 0, len(vars))
	for k, vals := range vars {
		nk := k
		if !strings.HasPrefix(nk, B.Marker) {
			nk = B.Marker + nk
		}
		if len(vals) == 0 {
			return nil, nil, Error{fmt.Sprintf("variable %s has no values", nk), mlipts.ErrBadInput, "", "", []string{"normalize"}, true}
		}
		for _, v := range vals {
			if strings.TrimSpace(v) == "" || strings.ContainsAny(v, `/\`) {
				return nil, nil, Error{fmt.Sprintf("unusable value %q for variable %s", v, nk), mlipts.ErrBadInput, "", "", []string{"normalize"}, true}
			}
		}
		norm[nk] = vals
		keys = append(keys, nk)
	}
	sort.Strings(keys)
	return norm, keys, nil
}

// checkPresent verifies that every requested variable appears as a token of
// the comment-stripped input.
func (B *Builder) checkPresent(text string, keys []string, base string) error {
	found := make(map[string]bool)
	for _, tok := range strings.Fields(stripComments(text)) {
		if strings.HasPrefix(tok, B.Marker) {
			found[tok] = true
		}
	}
	for _, k := range keys {
		if !found[k] {
			return Error{fmt.Sprintf("variable %s does not appear in the input", k), mlipts.ErrBadInput, base, "", []string{"checkPresent"}, true}
		}
	}
	return nil
}

func (B *Builder) dirName(keys []string, combo []string) string {
	name := B.Label
	for i, k := range keys {
		name += "_" + strings.TrimPrefix(k, B.Marker) + "_" + sanitizeValue(combo[i])
	}
	return name
}

// sanitizeValue makes a variable value safe for use inside a directory name.
// The substituted input always gets the raw value.
func sanitizeValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', '\t':
			return '-'
		}
		return r
	}, v)
}

// product returns every combination of values, one per key, in key order.
// With no keys it returns a single empty combination, so a variable-free
// build still produces one directory.
func product(keys []string, vars map[string][]string) [][]string {
	combos := [][]string{{}}
	for _, k := range keys {
		var next [][]string
		for _, c := range combos {
			for _, v := range vars[k] {
				cc := make([]string, len(c), len(c)+1)
				copy(cc, c)
				next = append(next, append(cc, v))
			}
		}
		combos = next
	}
	return combos
}

// stripComments removes everything from '#' to the end of each line.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if idx := strings.Index(l, "#"); idx >= 0 {
			lines[i] = l[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// substitute replaces every whitespace-delimited token of text that matches a
// key of sub with its value. Tokens match whole, never as substrings, and all
// whitespace survives untouched.
func substitute(text string, sub map[string]string) string {
	isSpace := func(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for i < len(text) {
		if isSpace(text[i]) {
			b.WriteByte(text[i])
			i++
			continue
		}
		j := i
		for j < len(text) && !isSpace(text[j]) {
			j++
		}
		word := text[i:j]
		if val, ok := sub[word]; ok {
			b.WriteString(val)
		} else {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}
