package score

// Category is a qualitative bucket for a total score.
type Category struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var (
	CategoryExcellent = Category{Label: "Excellent", Description: "Your plan is close to optimal."}
	CategoryGood      = Category{Label: "Good", Description: "Your plan is solid with some room to improve."}
	CategoryFair      = Category{Label: "Fair", Description: "Your plan works but leaves savings on the table."}
	CategoryNeedsWork = Category{Label: "Needs Improvement", Description: "Small changes could save significant time and interest."}
)

// CategoryFor buckets a total score.
func CategoryFor(total float64) Category {
	switch {
	case total >= ExcellentThreshold:
		return CategoryExcellent
	case total >= GoodThreshold:
		return CategoryGood
	case total >= FairThreshold:
		return CategoryFair
	}
	return CategoryNeedsWork
}
