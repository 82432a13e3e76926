package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		require.NoError(t, run(out, args))
		require.Contains(t, out.String(), "Usage:")
	}
}

func TestRun_ParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--nope"}, "flag provided but not defined: -nope"},
		{"unknown command", []string{"explode", "x.cfg"}, `unknown command "explode"`},
		{"missing file", []string{"show"}, "expected exactly one FILE"},
		{"bad level", []string{"-log-level", "loud", "show", "x.cfg"}, "invalid log-level"},
		{"bad format", []string{"-log-format", "xml", "show", "x.cfg"}, "invalid log-format"},
		{"rescale without part", []string{"rescale", "-to", "2", "x.cfg"}, "-part is required"},
		{"rescale without scale", []string{"rescale", "-part", "a", "x.cfg"}, "scales must be positive"},
		{"mesh without cells", []string{"mesh", "-cells", "0", "x.cfg"}, "-cells must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(&bytes.Buffer{}, tt.args)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			require.Equal(t, 2, exitErr.Code)
			require.Contains(t, exitErr.Message, tt.want)
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, []string{"show", "does-not-exist.cfg"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "does-not-exist.cfg")
}

func TestParseArgs_Rescale(t *testing.T) {
	t.Parallel()

	cfg, exit, err := parseArgs([]string{"-log-level", "DEBUG", "rescale", "-part", "tank", "-from", "1", "-to", "2.5", "-passive", "f.pk"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	require.Equal(t, &Config{
		Command:   "rescale",
		Path:      "f.pk",
		LogLevel:  "debug",
		LogFormat: "text",
		Part:      "tank",
		From:      1,
		To:        2.5,
		Passive:   true,
	}, cfg)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger("debug", "json", &buf).Debug("hello", "k", 1)
	require.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger("warn", "text", &buf).Info("quiet")
	require.Empty(t, buf.String())
}
