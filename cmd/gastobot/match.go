package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gastobot/gastobot/internal/common"
	"github.com/gastobot/gastobot/internal/matcher"
	"github.com/gastobot/gastobot/internal/model"
)

func matchCmd() *cobra.Command {
	var userID string
	var file string
	var minScore float64
	var maxResults int
	var txType string

	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Rank a user's categories against a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			eng, cleanup, err := buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			opts := matcher.DefaultOptions()
			if minScore > 0 {
				opts.MinScore = minScore
			}
			if maxResults > 0 {
				opts.MaxResults = maxResults
			}
			if txType != "" {
				opts.TransactionType = model.CategoryType(strings.ToUpper(txType))
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return common.ErrEmptyQuery
			}

			// Indexing inline makes matching work on the memory backend,
			// where a separate index run would not survive until now.
			if file != "" {
				expanded, err := loadCategories(file)
				if err != nil {
					return err
				}
				if err := eng.IndexUserCategories(cmd.Context(), userID, expanded); err != nil {
					return err
				}
			}

			matches, err := eng.FindSimilarCategories(cmd.Context(), query, userID, opts)
			if err != nil {
				return err
			}

			if len(matches) == 0 {
				cmd.Println("No matches.")
				return nil
			}

			for i, m := range matches {
				label := m.CategoryName
				if m.SubCategoryName != "" {
					label += " > " + m.SubCategoryName
				}
				cmd.Printf("%d. %-40s score=%.3f terms=%s\n",
					i+1, label, m.Score, strings.Join(m.MatchedTerms, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&file, "file", "f", "", "categories file to index before matching")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum score (default 0.25)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "maximum results (default 3)")
	cmd.Flags().StringVar(&txType, "type", "", "filter by transaction type (INCOME, EXPENSES)")

	return cmd
}
