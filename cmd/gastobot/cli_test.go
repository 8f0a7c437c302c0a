package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastobot/gastobot/internal/common"
)

func writeCategoriesFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "categories.yaml")
	data := []byte(`accounts:
  - id: acc-1
    categories:
      - id: c1
        name: Combustível
        type: EXPENSES
      - id: c2
        name: Mercado
        type: EXPENSES
`)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func configureTestSettings(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.Set("db.path", filepath.Join(t.TempDir(), "gastobot.db"))
	viper.Set("cache.backend", "memory")
	t.Cleanup(viper.Reset)
}

func TestMatchIndexesInlineFile(t *testing.T) {
	configureTestSettings(t)
	file := writeCategoriesFile(t)

	cmd := matchCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--user", "user-1", "--file", file, "gasolina"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Combustível")
}

func TestIndexRejectsMemoryBackend(t *testing.T) {
	configureTestSettings(t)
	file := writeCategoriesFile(t)

	cmd := indexCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"--user", "user-1", "--file", file})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadCategoriesRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: []\n"), 0600))

	_, err := loadCategories(path)
	assert.ErrorIs(t, err, common.ErrNoCategories)
}
