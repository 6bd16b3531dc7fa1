package model

import "fmt"

// DateLayout is the key format of a daily portfolio.
const DateLayout = "2006-01-02"

// Good-day ratings run from MinRating to MaxRating.
const (
	MinRating = 1
	MaxRating = 5
)

// PortfolioCategory is one kind of activity the user can tick off for a day.
// Inferred marks a category completed from activity rather than by hand.
type PortfolioCategory struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Icon      string `json:"icon,omitempty"`
	Completed bool   `json:"completed"`
	Inferred  bool   `json:"inferred"`
}

// DailyPortfolio is the user's reflection on one day.
type DailyPortfolio struct {
	Date          string              `json:"date"` // DateLayout
	Categories    []PortfolioCategory `json:"categories"`
	GoodDayRating *int                `json:"good_day_rating,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

// CompletedCount returns how many categories are ticked off.
func (p DailyPortfolio) CompletedCount() int {
	n := 0
	for _, c := range p.Categories {
		if c.Completed {
			n++
		}
	}
	return n
}

// DefaultPortfolioCategories are the categories every new day starts with.
var DefaultPortfolioCategories = []PortfolioCategory{
	{ID: "creative", Label: "Creative", Icon: "color-palette"},
	{ID: "physical", Label: "Physical", Icon: "fitness"},
	{ID: "social", Label: "Social", Icon: "people"},
	{ID: "learning", Label: "Learning", Icon: "book"},
	{ID: "rest", Label: "Rest", Icon: "moon"},
}

// NewDailyPortfolio returns an unrated portfolio for date with the default
// categories, none completed.
func NewDailyPortfolio(date string) DailyPortfolio {
	cats := make([]PortfolioCategory, len(DefaultPortfolioCategories))
	copy(cats, DefaultPortfolioCategories)
	return DailyPortfolio{Date: date, Categories: cats}
}

// ValidateRating checks that r is a good-day rating.
func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return fmt.Errorf("rating must be between %d and %d (got: %d)", MinRating, MaxRating, r)
	}
	return nil
}
