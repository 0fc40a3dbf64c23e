package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"none", nil, []string{}},
		{"all_switches", []string{"/f:C:\\wr\\WR.sdf", "/p:pw", "/o:out.xml"},
			[]string{"--file=C:\\wr\\WR.sdf", "--password=pw", "--output=out.xml"}},
		{"value_with_colon", []string{"/p:a:b"}, []string{"--password=a:b"}},
		{"value_starting_with_dash", []string{"/p:-secret"}, []string{"--password=-secret"}},
		{"mixed_with_flags", []string{"/f:a.sdf", "-v", "--format", "json"},
			[]string{"--file=a.sdf", "-v", "--format", "json"}},
		{"unix_paths_untouched", []string{"-f", "/data/WR.sdf", "/tmp"}, []string{"-f", "/data/WR.sdf", "/tmp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RewriteLegacyArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteLegacyArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"empty_file", []string{"/f:"}, "needs a value"},
		{"empty_password", []string{"/f:a.sdf", "/p:"}, "needs a value"},
		{"unknown_letter", []string{"/q:x"}, `unknown switch "/q:"`},
		{"upper_case_file", []string{"/F:a.sdf"}, `unknown switch "/F:"`},
		{"upper_case_password", []string{"/f:a.sdf", "/P:pw"}, `unknown switch "/P:"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RewriteLegacyArgs(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
