package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-f", "run.csv", "-x", "other"},
			allowedFlags: []string{"-f", "--file"},
			want:         []string{"-f", "run.csv"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--file=alt.csv", "-x", "other"},
			allowedFlags: []string{"-f", "--file"},
			want:         []string{"--file=alt.csv"},
		},
		{
			name:         "unknown flags and positionals dropped",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-f"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-f"},
			allowedFlags: []string{"-f"},
			want:         []string{"-f"},
		},
		{
			name:         "next dash-starting token is not a value",
			args:         []string{"-m", "-b", "mirror"},
			allowedFlags: []string{"-m", "-b"},
			want:         []string{"-m", "-b", "mirror"},
		},
		{
			name:         "repeated allowed flag preserved in order",
			args:         []string{"-B", "one", "-B", "two"},
			allowedFlags: []string{"-B"},
			want:         []string{"-B", "one", "-B", "two"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-f"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}
