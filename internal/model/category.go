// Package model defines the core domain types for the category matching engine.
package model

import (
	"fmt"
	"strings"
)

// CategoryType indicates whether a category applies to income or expenses.
type CategoryType string

// Category types.
const (
	CategoryTypeIncome   CategoryType = "INCOME"
	CategoryTypeExpenses CategoryType = "EXPENSES"
)

// SubCategory is a single subcategory of a user category.
type SubCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SourceCategory is a category as delivered by the category source, with its
// full subcategory list still attached.
type SourceCategory struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Type          CategoryType  `json:"type,omitempty"`
	SubCategories []SubCategory `json:"subCategories,omitempty"`
}

// Account groups the categories belonging to one financial account.
type Account struct {
	ID         string           `json:"id"`
	Categories []SourceCategory `json:"categories"`
}

// UserCategory is an indexed category entry. A category with N subcategories
// is expanded into N entries before indexing, so every entry carries at most
// one subcategory.
type UserCategory struct {
	SubCategory *SubCategory `json:"subCategory,omitempty"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	AccountID   string       `json:"accountId"`
	Type        CategoryType `json:"type,omitempty"`
}

// SearchText returns the text matched against queries: the category name
// plus the subcategory name when present.
func (c *UserCategory) SearchText() string {
	if c.SubCategory != nil && c.SubCategory.Name != "" {
		return c.Name + " " + c.SubCategory.Name
	}
	return c.Name
}

// Validate ensures the UserCategory has valid data.
func (c *UserCategory) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	return nil
}

// ExpandCategories fans subcategories out into flat UserCategory entries.
// A category without subcategories yields one entry; a category with N
// subcategories yields N entries, one per subcategory.
func ExpandCategories(accounts []Account) []UserCategory {
	var expanded []UserCategory

	for _, account := range accounts {
		for _, cat := range account.Categories {
			if len(cat.SubCategories) == 0 {
				expanded = append(expanded, UserCategory{
					ID:        cat.ID,
					Name:      cat.Name,
					AccountID: account.ID,
					Type:      cat.Type,
				})
				continue
			}

			for _, sub := range cat.SubCategories {
				sc := sub
				expanded = append(expanded, UserCategory{
					ID:          cat.ID,
					Name:        cat.Name,
					AccountID:   account.ID,
					Type:        cat.Type,
					SubCategory: &sc,
				})
			}
		}
	}

	return expanded
}
