// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"bufio"
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

// zopen returns a reader for the given file ("-" for stdin),
// transparently decompressing the input if fnm ends with ".gz".
func zopen(fnm string, stdin io.Reader) (io.ReadCloser, error) {
	var f io.ReadCloser
	if fnm == "-" {
		f = ioutil.NopCloser(stdin)
	} else {
		var err error
		f, err = os.Open(fnm)
		if err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(fnm, ".gz") {
		return f, nil
	}
	rdr, err := pgzip.NewReader(bufio.NewReaderSize(f, 4*1024*1024))
	if err != nil {
		f.Close()
		return nil, err
	}
	return gzipr{rdr, f}, nil
}

// gzipr wraps a ReadCloser and a Closer, presenting a single Close()
// method that closes both wrapped objects.
type gzipr struct {
	io.ReadCloser
	io.Closer
}

func (gr gzipr) Close() error {
	e1 := gr.ReadCloser.Close()
	e2 := gr.Closer.Close()
	if e1 != nil {
		return e1
	}
	return e2
}

// writeOutput calls write with a buffered writer for the given file
// ("-" for stdout), compressing the output if fnm ends with ".gz".
//
// A file is written under a temporary name and renamed into place
// only after write and all flushes succeed, so a failure never leaves
// partial output at fnm.
func writeOutput(fnm string, stdout io.Writer, write func(io.Writer) error) error {
	return writeOutputs(stdout, output{fnm, write})
}

type output struct {
	fnm   string
	write func(io.Writer) error
}

// writeOutputs is like writeOutput for several files. None of them is
// renamed into place (or copied to stdout) until all have been
// written.
func writeOutputs(stdout io.Writer, outputs ...output) error {
	var staged []*stagedOutput
	defer func() {
		for _, so := range staged {
			so.discard()
		}
	}()
	for _, o := range outputs {
		so, err := stageOutput(o.fnm, stdout, o.write)
		if err != nil {
			return err
		}
		staged = append(staged, so)
	}
	for _, so := range staged {
		if err := so.commit(); err != nil {
			return err
		}
	}
	return nil
}

type stagedOutput struct {
	fnm    string
	tmp    string
	stdout io.Writer
	buf    *bytes.Buffer
	done   bool
}

func stageOutput(fnm string, stdout io.Writer, write func(io.Writer) error) (*stagedOutput, error) {
	if fnm == "-" {
		buf := &bytes.Buffer{}
		if err := write(buf); err != nil {
			return nil, err
		}
		return &stagedOutput{fnm: fnm, stdout: stdout, buf: buf}, nil
	}
	f, err := ioutil.TempFile(filepath.Dir(fnm), "."+filepath.Base(fnm)+".tmp")
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	bufw := bufio.NewWriter(f)
	var w io.Writer = bufw
	var gzw *pgzip.Writer
	if strings.HasSuffix(fnm, ".gz") {
		gzw = pgzip.NewWriter(bufw)
		w = gzw
	}
	if err = write(w); err != nil {
		return nil, err
	}
	if gzw != nil {
		if err = gzw.Close(); err != nil {
			return nil, err
		}
	}
	if err = bufw.Flush(); err != nil {
		return nil, err
	}
	if err = f.Chmod(0644); err != nil {
		return nil, err
	}
	if err = f.Close(); err != nil {
		return nil, err
	}
	ok = true
	return &stagedOutput{fnm: fnm, tmp: f.Name()}, nil
}

func (so *stagedOutput) commit() error {
	so.done = true
	if so.buf != nil {
		_, err := so.buf.WriteTo(so.stdout)
		return err
	}
	err := os.Rename(so.tmp, so.fnm)
	if err != nil {
		os.Remove(so.tmp)
	}
	return err
}

func (so *stagedOutput) discard() {
	if !so.done && so.tmp != "" {
		os.Remove(so.tmp)
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
