package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gastobot/gastobot/internal/common"
	"github.com/gastobot/gastobot/internal/config"
	"github.com/gastobot/gastobot/internal/model"
)

// categoriesFile is the on-disk shape accepted by `gastobot index`.
type categoriesFile struct {
	Accounts []model.Account `yaml:"accounts"`
}

// loadCategories reads a categories file and expands subcategories into
// flat entries.
func loadCategories(path string) ([]model.UserCategory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var parsed categoriesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	expanded := model.ExpandCategories(parsed.Accounts)
	if len(expanded) == 0 {
		return nil, common.NewUserError(
			fmt.Sprintf("no categories found in %s", path),
			common.ErrNoCategories)
	}

	return expanded, nil
}

func indexCmd() *cobra.Command {
	var file string
	var userID string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index a user's categories for matching",
		Long: `Loads a category file, expands subcategories into flat entries and
stores them in the per-user category index with a 24h expiry.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			settings, err := config.Load()
			if err != nil {
				return err
			}
			// The memory backend dies with this process, so a standalone
			// index run would leave nothing behind for later matches.
			if settings.CacheBackend == "memory" {
				return common.NewUserError(
					"the memory cache backend does not outlive this command; configure the redis backend, or pass --file to `gastobot match` to index and match in one run",
					common.ErrInvalidConfig)
			}

			expanded, err := loadCategories(file)
			if err != nil {
				return err
			}

			eng, cleanup, err := buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.IndexUserCategories(cmd.Context(), userID, expanded); err != nil {
				return err
			}

			cmd.Printf("Indexed %d category entries for user %s\n", len(expanded), userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "categories.yaml", "categories file")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")

	return cmd
}
