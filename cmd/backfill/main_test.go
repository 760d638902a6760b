package main

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command with args; every case here fails before RunE, so no
// configuration or database is touched.
func execute(args ...string) error {
	cmd := newBackfillCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestBackfillCmd_StartIsRequired(t *testing.T) {
	err := execute("--end", "2024-03-08")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "start" not set`)
}

func TestBackfillCmd_RejectsBadDates(t *testing.T) {
	tests := map[string][]string{
		"start not a date": {"--start", "03/01/2024"},
		"end not a date":   {"--start", "2024-03-01", "--end", "tomorrow"},
		"inverted range":   {"--start", "2024-03-08", "--end", "2024-03-01"},
		"positional arg":   {"--start", "2024-03-01", "extra"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, execute(args...))
		})
	}
}

func TestBackfillCmd_PreRunParsesRange(t *testing.T) {
	cmd := newBackfillCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--start", "2024-03-01", "--end", "2024-03-08"}))
	require.NoError(t, cmd.PreRunE(cmd, nil))
}

func TestBackfillCmd_EndDefaultsToLastClosedDay(t *testing.T) {
	cmd := newBackfillCmd()
	start := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	require.NoError(t, cmd.ParseFlags([]string{"--start", start}))
	err := cmd.PreRunE(cmd, nil)
	require.Error(t, err, "a future start is after the default end")
	assert.Contains(t, err.Error(), "is before --start")
}
