package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BBQAnChang/SBHomework/pkg/types"
)

func TestWriteOutput(t *testing.T) {
	user := types.User{UserID: "u1", Nickname: "alice"}

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "yaml", format: outputYAML, want: "user_id: u1\nnickname: alice\n"},
		{name: "json", format: outputJSON, want: "{\n  \"user_id\": \"u1\",\n  \"nickname\": \"alice\"\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeOutput(&buf, tt.format, user))
			assert.Equal(t, strings.TrimSpace(tt.want), strings.TrimSpace(buf.String()))
		})
	}
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, validateOutput("yaml"))
	assert.NoError(t, validateOutput("json"))
	assert.Error(t, validateOutput("xml"))
}

func TestReadUserFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- user_id: u1
  nickname: alice
  profile_url: https://example.com/a.png
- user_id: u2
  nickname: bob
`), 0o600))

	jsonPath := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"user_id":"u3","nickname":"carol","profile_url":""}]`), 0o600))

	params, err := readUserFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []types.UserCreationParams{
		{UserID: "u1", Nickname: "alice", ProfileURL: "https://example.com/a.png"},
		{UserID: "u2", Nickname: "bob"},
	}, params)

	params, err = readUserFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []types.UserCreationParams{{UserID: "u3", Nickname: "carol"}}, params)

	_, err = readUserFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logger:\n  level: error\n"), 0o600))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "--output", "xml", "get", "u1"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"create", "bulk-create", "update", "get", "list", "serve"})
}
