/*
 * compress.go, part of mlipts.
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
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

//MD dumps and training sets grow big enough to be worth compressing on the
//cluster. The filename suffix picks the codec: .gz for gzip, .zst or .zstd
//for zstd, anything else is read and written as plain text.

// DecompressingReader opens path for reading, transparently decoding it
// according to the filename suffix. Closing the returned reader closes the
// underlying file too. Concatenated gzip or zstd frames, as produced by
// repeated appends, decode as one continuous stream.
func DecompressingReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, CError{"cannot read gzip header of " + path + ": " + err.Error(), []string{"DecompressingReader"}}
		}
		return &layeredReader{r, []io.Closer{r, f}}, nil
	case strings.HasSuffix(path, ".zst"), strings.HasSuffix(path, ".zstd"):
		d, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, CError{"cannot read zstd header of " + path + ": " + err.Error(), []string{"DecompressingReader"}}
		}
		rc := d.IOReadCloser()
		return &layeredReader{rc, []io.Closer{rc, f}}, nil
	}
	return f, nil
}

// CompressingWriter wraps the already-opened file f in the codec matching
// name's suffix. Closing the returned writer flushes the codec and closes f.
// For gzip and zstd each wrapped write session emits a self-contained frame,
// so appending to an existing compressed file stays valid.
func CompressingWriter(name string, f *os.File) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return &layeredWriter{gzip.NewWriter(f), f}, nil
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		w, err := zstd.NewWriter(f)
		if err != nil {
			return nil, CError{"cannot set up zstd for " + name + ": " + err.Error(), []string{"CompressingWriter"}}
		}
		return &layeredWriter{w, f}, nil
	}
	return f, nil
}

type layeredReader struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredReader) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type layeredWriter struct {
	codec io.WriteCloser
	f     *os.File
}

func (l *layeredWriter) Write(p []byte) (int, error) {
	return l.codec.Write(p)
}

func (l *layeredWriter) Close() error {
	err := l.codec.Close()
	if err2 := l.f.Close(); err == nil {
		err = err2
	}
	return err
}
