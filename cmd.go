// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package cellfreq

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"git.arvados.org/arvados.git/lib/cmd"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	handler = cmd.Multi(map[string]cmd.Handler{
		"version":   cmd.Version,
		"-version":  cmd.Version,
		"--version": cmd.Version,

		"relfreq":      &relFreq{},
		"compare":      &compareCmd{},
		"export-numpy": &exportNumpy{},
		"pca":          &goPCA{},
	})
)

func Main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.StandardLogger().Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}
	os.Exit(handler.RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// usageError is a command line error, reported with exit code 2.
type usageError struct {
	err error
	// already reported by the flag package
	parsed bool
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// parseFlags parses args, and returns a usageError if they are not
// valid or leave positional arguments.
func parseFlags(flags *flag.FlagSet, args []string) error {
	err := flags.Parse(args)
	if err == flag.ErrHelp {
		return err
	} else if err != nil {
		return usageError{err: err, parsed: true}
	} else if flags.NArg() > 0 {
		return usageError{err: fmt.Errorf("errant command line arguments after parsed flags: %v", flags.Args())}
	}
	return nil
}

// exitCode reports err on stderr (unless the flag package already
// did) and returns the corresponding exit code.
func exitCode(err error, stderr io.Writer) int {
	var uerr usageError
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	} else if errors.As(err, &uerr) {
		if !uerr.parsed {
			fmt.Fprintf(stderr, "%s\n", err)
		}
		return 2
	}
	fmt.Fprintf(stderr, "%s\n", err)
	return 1
}
