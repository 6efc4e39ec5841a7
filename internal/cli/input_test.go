package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "a@x.com\n", "a@x.com"},
		{"trimmed and lower-cased", "  Alice@Example.ORG \r\n", "alice@example.org"},
		{"last line without newline", "b@x.com", "b@x.com"},
		{"empty", "\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := promptEmail(bufio.NewReader(strings.NewReader(tt.input)), &out, "Email")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Email: ", out.String())
		})
	}
}

func TestPromptEmail_EOF(t *testing.T) {
	_, err := promptEmail(bufio.NewReader(strings.NewReader("")), io.Discard, "Email")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPromptPassword(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("secret1"), nil }
	var out bytes.Buffer
	pw, err := promptPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "secret1", string(pw))
	assert.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, nil }
	out.Reset()
	_, err = promptPassword(&out)
	assert.ErrorIs(t, err, errEmptyPassword)
	assert.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = promptPassword(io.Discard)
	assert.EqualError(t, err, "boom")
}
