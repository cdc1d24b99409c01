package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phrazzld/catalog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		password  string
		expectErr error
	}{
		{name: "trailing newline is dropped", input: "s3cret\n", password: "s3cret"},
		{name: "windows line ending", input: "s3cret\r\n", password: "s3cret"},
		{name: "inner spaces are kept", input: "two words", password: "two words"},
		{name: "empty", input: "\n", expectErr: errNoPassword},
		{name: "too long", input: strings.Repeat("p", domain.MaxPasswordBytes+1), expectErr: domain.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash, err := hashPassword(strings.NewReader(tt.input), bcrypt.MinCost)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.password)))
		})
	}
}

func TestRootCommand(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "hash-password"})
	assert.NotNil(t, root.RunE, "running without a subcommand serves")
}

func TestHashPasswordCommand(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader("pw\n"))
	root.SetOut(&out)
	root.SetArgs([]string{"hash-password", "--cost", "4"})

	require.NoError(t, root.Execute())
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}

func TestMigrateCommandRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "sideways"})

	assert.Error(t, root.Execute())
}
