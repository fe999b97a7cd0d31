/*
 * handy.go, part of mlipts.
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

package mlipts

import (
	"io"
	"os"
	"path/filepath"
)

//Small filesystem helpers used by the calculation builders. Base calculations
//are copied file by file so rebuilding over an existing directory converges
//instead of failing.

// CopyFile copies the regular file src to dst, creating or truncating dst.
// Permissions of src are kept.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return CError{err.Error(), []string{"CopyFile"}}
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return CError{err.Error(), []string{"CopyFile"}}
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return CError{err.Error(), []string{"CopyFile"}}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return CError{err.Error(), []string{"CopyFile"}}
	}
	if err := out.Close(); err != nil {
		return CError{err.Error(), []string{"CopyFile"}}
	}
	return nil
}

// CopyDirContents copies every file under src into dst, recursing into
// subdirectories and creating dst and any missing parents. Existing files in
// dst are overwritten, extra files in dst are left alone.
func CopyDirContents(src, dst string) error {
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !info.Mode().IsRegular() {
			return nil //sockets, links and such have no business in a base calculation
		}
		return CopyFile(path, target)
	})
	if err != nil {
		if _, ok := err.(Error); ok {
			return errDecorate(err, "CopyDirContents")
		}
		return CError{err.Error(), []string{"CopyDirContents"}}
	}
	return nil
}
