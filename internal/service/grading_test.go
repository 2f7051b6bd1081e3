package service

import (
	"reflect"
	"testing"
)

func schemes(marks, negative float64, ids ...uint) []QuestionScheme {
	out := make([]QuestionScheme, 0, len(ids))
	for i, id := range ids {
		out = append(out, QuestionScheme{QuestionID: id, Marks: marks, NegativeMarks: negative, Order: i + 1})
	}
	return out
}

func TestGrade(t *testing.T) {
	cases := []struct {
		name       string
		in         GradeInput
		obtained   float64
		total      float64
		percentage float64
		correct    int
		incorrect  int
		unanswered int
	}{
		{
			name: "one right one wrong with negative marking",
			in: GradeInput{
				Schemes:  schemes(4, 1, 1, 2),
				Selected: map[uint]*uint{1: uintPtr(11), 2: uintPtr(22)},
				Correct:  map[uint]uint{1: 11, 2: 21},
			},
			obtained: 3, total: 8, percentage: 37.5, correct: 1, incorrect: 1,
		},
		{
			name: "no answers",
			in: GradeInput{
				Schemes: schemes(4, 1, 1, 2, 3),
			},
			obtained: 0, total: 12, percentage: 0, unanswered: 3,
		},
		{
			name: "negative total is clamped at zero",
			in: GradeInput{
				Schemes:  schemes(1, 2, 1, 2),
				Selected: map[uint]*uint{1: uintPtr(12), 2: uintPtr(22)},
				Correct:  map[uint]uint{1: 11, 2: 21},
			},
			obtained: 0, total: 2, percentage: 0, incorrect: 2,
		},
		{
			name: "null selection is unanswered",
			in: GradeInput{
				Schemes:  schemes(4, 1, 1),
				Selected: map[uint]*uint{1: nil},
				Correct:  map[uint]uint{1: 11},
			},
			obtained: 0, total: 4, unanswered: 1,
		},
		{
			name: "no known correct option is unanswered",
			in: GradeInput{
				Schemes:  schemes(4, 1, 1),
				Selected: map[uint]*uint{1: uintPtr(11)},
			},
			obtained: 0, total: 4, unanswered: 1,
		},
		{
			name:     "empty test",
			in:       GradeInput{},
			obtained: 0, total: 0, percentage: 0,
		},
		{
			name: "repeating fraction is rounded",
			in: GradeInput{
				Schemes:  schemes(1, 0, 1, 2, 3),
				Selected: map[uint]*uint{1: uintPtr(11)},
				Correct:  map[uint]uint{1: 11, 2: 21, 3: 31},
			},
			obtained: 1, total: 3, percentage: 33.33, correct: 1, unanswered: 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bd := Grade(tc.in)
			if bd.Obtained != tc.obtained || bd.TotalPossible != tc.total || bd.Percentage != tc.percentage {
				t.Fatalf("got obtained=%v total=%v pct=%v", bd.Obtained, bd.TotalPossible, bd.Percentage)
			}
			if bd.Correct != tc.correct || bd.Incorrect != tc.incorrect || bd.Unanswered != tc.unanswered {
				t.Fatalf("got counts %d/%d/%d", bd.Correct, bd.Incorrect, bd.Unanswered)
			}
			if n := bd.Correct + bd.Incorrect + bd.Unanswered; n != len(tc.in.Schemes) {
				t.Fatalf("counts sum to %d, want %d", n, len(tc.in.Schemes))
			}
			if bd.Obtained < 0 {
				t.Fatalf("score must never be negative, got %v", bd.Obtained)
			}
		})
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	in := GradeInput{
		Schemes:  schemes(2, 0.5, 1, 2, 3, 4),
		Selected: map[uint]*uint{1: uintPtr(11), 2: uintPtr(99), 4: nil},
		Correct:  map[uint]uint{1: 11, 2: 21, 3: 31, 4: 41},
	}
	first := Grade(in)
	for i := 0; i < 10; i++ {
		if got := Grade(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestGradeResultsFollowSchemeOrder(t *testing.T) {
	bd := Grade(GradeInput{
		Schemes:  schemes(4, 1, 3, 1, 2),
		Selected: map[uint]*uint{1: uintPtr(11), 3: uintPtr(30)},
		Correct:  map[uint]uint{1: 11, 3: 31},
	})
	want := []QuestionResult{
		{QuestionID: 3, Outcome: OutcomeIncorrect, Marks: -1},
		{QuestionID: 1, Outcome: OutcomeCorrect, Marks: 4},
		{QuestionID: 2, Outcome: OutcomeUnanswered},
	}
	if !reflect.DeepEqual(bd.Results, want) {
		t.Fatalf("got %+v", bd.Results)
	}
}

func TestPassed(t *testing.T) {
	bd := GradeBreakdown{Percentage: 40}
	if !bd.Passed(40) || bd.Passed(40.01) {
		t.Fatal("pass threshold is inclusive")
	}
}
