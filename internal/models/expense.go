package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies what an expense was spent on
type Category string

const (
	CategoryTravel        Category = "travel"
	CategoryMeals         Category = "meals"
	CategoryAccommodation Category = "accommodation"
	CategoryEquipment     Category = "equipment"
	CategoryOffice        Category = "office"
	CategoryOther         Category = "other"
)

var validCategories = map[Category]bool{
	CategoryTravel:        true,
	CategoryMeals:         true,
	CategoryAccommodation: true,
	CategoryEquipment:     true,
	CategoryOffice:        true,
	CategoryOther:         true,
}

// IsValid returns true if the category is a known category
func (c Category) IsValid() bool {
	return validCategories[c]
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Categories returns all known categories in display order
func Categories() []Category {
	return []Category{
		CategoryTravel,
		CategoryMeals,
		CategoryAccommodation,
		CategoryEquipment,
		CategoryOffice,
		CategoryOther,
	}
}

// Expense is a single expense claim moving through the approval lifecycle.
//
// SubmittedByName and ReviewedByName are denormalized snapshots taken at
// submission and review time. They are kept alongside the ids so that later
// account renames do not rewrite history.
type Expense struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Amount           decimal.Decimal `json:"amount"`
	Date             time.Time       `json:"date"`
	Category         Category        `json:"category"`
	Description      string          `json:"description"`
	Status           string          `json:"status"`
	ReceiptReference string          `json:"receipt_reference,omitempty"`
	SubmittedBy      string          `json:"submitted_by"`
	SubmittedByName  string          `json:"submitted_by_name"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	ReviewedBy       string          `json:"reviewed_by,omitempty"`
	ReviewedByName   string          `json:"reviewed_by_name,omitempty"`
	ReviewedAt       *time.Time      `json:"reviewed_at,omitempty"`
	Comments         string          `json:"comments,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsOwnedBy returns true if the expense was submitted by the given user
func (e *Expense) IsOwnedBy(u *User) bool {
	return u != nil && e.SubmittedBy == u.ID
}
