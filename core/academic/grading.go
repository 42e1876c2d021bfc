package academic

import "math"

// gradeScale maps the lowest percentage of each grade, best grade first.
var gradeScale = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{80, "A"},
	{70, "B+"},
	{60, "B"},
	{50, "C+"},
	{40, "C"},
	{33, "D"},
}

const failingGrade = "F"

// Grade returns the letter grade of a percentage.
func Grade(percentage float64) string {
	for _, g := range gradeScale {
		if percentage >= g.min {
			return g.grade
		}
	}
	return failingGrade
}

// Percentage returns marks out of maxMarks as a percentage rounded to 2 decimals.
func Percentage(marks, maxMarks float64) float64 {
	if maxMarks <= 0 {
		return 0
	}
	return math.Round(marks/maxMarks*100*100) / 100
}
