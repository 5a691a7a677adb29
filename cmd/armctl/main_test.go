package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    [2]float64
		wantErr bool
	}{
		{"6,6", [2]float64{6, 6}, false},
		{" -6, 3 ", [2]float64{-6, 3}, false},
		{"[5.3,2.1]", [2]float64{5.3, 2.1}, false},
		{"6", [2]float64{}, true},
		{"6,6,6", [2]float64{}, true},
		{"a,b", [2]float64{}, true},
		{"NaN,1", [2]float64{}, true},
		{"1,+Inf", [2]float64{}, true},
	}
	for _, tt := range tests {
		got, err := parseTarget(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSolveCommand(t *testing.T) {
	out := execute(t, "solve", "--algorithm", "dls", "6,6")
	assert.Contains(t, out, "jacobian_pseudoinverse")
	assert.Contains(t, out, "converged")
}

func TestAlgorithmsCommand(t *testing.T) {
	out := execute(t, "algorithms")
	for _, name := range []string{"jacobian_transpose", "jacobian_pseudoinverse (default)", "gradient_descent", "fabrik"} {
		assert.Contains(t, out, name)
	}
}

func TestBenchCommand(t *testing.T) {
	out := execute(t, "bench", "--runs", "1", "--target", "6,6")
	for _, name := range []string{"jacobian_transpose", "jacobian_pseudoinverse", "gradient_descent", "fabrik"} {
		assert.Contains(t, out, name)
	}
}
