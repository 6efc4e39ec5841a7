package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-s", "sqlite", "-x", "1"},
			allowed: []string{"-s"},
			want:    []string{"-s", "sqlite"},
		},
		{
			name:    "equals form",
			args:    []string{"-d=file:roles.db", "-x=1"},
			allowed: []string{"-d"},
			want:    []string{"-d=file:roles.db"},
		},
		{
			name:    "equals inside value",
			args:    []string{"-d", "postgres://u:p@h/db?sslmode=disable"},
			allowed: []string{"-d"},
			want:    []string{"-d", "postgres://u:p@h/db?sslmode=disable"},
		},
		{
			name:    "dash token is not a value",
			args:    []string{"-k", "-p", "memory"},
			allowed: []string{"-k", "-p"},
			want:    []string{"-k", "-p", "memory"},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "positional arguments dropped",
			args:    []string{"whoami", "-s", "memory", "extra"},
			allowed: []string{"-s"},
			want:    []string{"-s", "memory"},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"rolekeeper", "-c", "/etc/rk.json"}
	assert.Equal(t, "/etc/rk.json", ConfigFileFlag())

	os.Args = []string{"rolekeeper", "-s", "memory", "-config=/tmp/rk.json"}
	assert.Equal(t, "/tmp/rk.json", ConfigFileFlag())

	os.Args = []string{"rolekeeper", "-s", "memory"}
	assert.Empty(t, ConfigFileFlag())
}
