package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.99, "A"},
		{85, "A"},
		{80, "A"},
		{78, "B+"},
		{70, "B+"},
		{65, "B"},
		{50, "C+"},
		{45, "C"},
		{33, "D"},
		{32.99, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.percentage), "Grade(%v)", tt.percentage)
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 85.0, Percentage(85, 100))
	assert.Equal(t, 78.0, Percentage(39, 50))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 0.0, Percentage(10, 0))
}

func TestDeriveResult(t *testing.T) {
	exam := Exam{TotalMarks: 100, PassingMarks: 35}

	r := Result{MarksObtained: 85}
	r.derive(exam)
	assert.Equal(t, 100.0, r.MaxMarks)
	assert.Equal(t, 85.0, r.Percentage)
	assert.Equal(t, "A", r.Grade)
	assert.True(t, r.IsPassed)

	r = Result{MarksObtained: 34, MaxMarks: 100}
	r.derive(exam)
	assert.Equal(t, "D", r.Grade)
	assert.False(t, r.IsPassed)

	r = Result{MarksObtained: 35, MaxMarks: 100}
	r.derive(exam)
	assert.True(t, r.IsPassed)
}
