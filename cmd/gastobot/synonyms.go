package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gastobot/gastobot/internal/model"
	"github.com/gastobot/gastobot/internal/service"
)

func synonymsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synonyms",
		Short: "Manage learned synonyms",
	}

	cmd.AddCommand(synonymsListCmd())
	cmd.AddCommand(synonymsAddCmd())
	cmd.AddCommand(synonymsDeleteCmd())

	return cmd
}

func synonymsListCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List synonyms for a user (or global synonyms without --user)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var scope *string
			if userID != "" {
				scope = &userID
			}

			syns, err := store.ListSynonyms(cmd.Context(), scope)
			if err != nil {
				return err
			}

			if len(syns) == 0 {
				cmd.Println("No synonyms.")
				return nil
			}

			for _, s := range syns {
				target := s.CategoryName
				if s.SubCategoryName != "" {
					target += " > " + s.SubCategoryName
				}
				cmd.Printf("%-20s -> %-40s conf=%.2f used=%d source=%s id=%s\n",
					s.Keyword, target, s.Confidence, s.UsageCount, s.Source, s.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (omit for global synonyms)")

	return cmd
}

func synonymsAddCmd() *cobra.Command {
	var userID, keyword, category, subCategory, source string
	var confidence float64
	var global bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a synonym",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keyword == "" || category == "" {
				return fmt.Errorf("--keyword and --category are required")
			}
			if !global && userID == "" {
				return fmt.Errorf("--user is required unless --global is set")
			}

			eng, cleanup, err := buildEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			params := service.AddSynonymParams{
				Keyword:         keyword,
				CategoryName:    category,
				SubCategoryName: subCategory,
				Confidence:      confidence,
				Source:          model.SynonymSource(source),
			}
			if !global {
				params.UserID = &userID
			}

			syn, err := eng.AddSynonym(cmd.Context(), params)
			if err != nil {
				return err
			}

			cmd.Printf("Saved synonym %s (%s -> %s)\n", syn.ID, syn.Keyword, syn.CategoryName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	cmd.Flags().BoolVar(&global, "global", false, "create a global synonym applied to all users")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "keyword to learn")
	cmd.Flags().StringVarP(&category, "category", "c", "", "target category name")
	cmd.Flags().StringVar(&subCategory, "subcategory", "", "target subcategory name")
	cmd.Flags().Float64Var(&confidence, "confidence", 1.0, "confidence in [0,1]")
	cmd.Flags().StringVar(&source, "source", string(model.SourceAdminApproved), "synonym source")

	return cmd
}

func synonymsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a synonym by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteSynonym(cmd.Context(), args[0]); err != nil {
				return err
			}

			cmd.Printf("Deleted synonym %s\n", args[0])
			return nil
		},
	}
}
