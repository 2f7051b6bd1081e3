package service

import "math"

// QuestionScheme 单题评分方案
type QuestionScheme struct {
	QuestionID    uint
	Marks         float64
	NegativeMarks float64
	Order         int
}

type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeUnanswered Outcome = "unanswered"
)

// GradeInput Selected 为题目 -> 所选选项（nil 等同未作答），Correct 为题目 -> 唯一正确选项
type GradeInput struct {
	Schemes  []QuestionScheme
	Selected map[uint]*uint
	Correct  map[uint]uint
}

type QuestionResult struct {
	QuestionID uint
	Outcome    Outcome
	Marks      float64
}

type GradeBreakdown struct {
	Obtained      float64
	TotalPossible float64
	Percentage    float64
	Correct       int
	Incorrect     int
	Unanswered    int
	Results       []QuestionResult
}

// Grade 纯函数，同样的输入总得到同样的结果
func Grade(in GradeInput) GradeBreakdown {
	bd := GradeBreakdown{Results: make([]QuestionResult, 0, len(in.Schemes))}

	var raw float64
	for _, s := range in.Schemes {
		bd.TotalPossible += s.Marks
		res := QuestionResult{QuestionID: s.QuestionID, Outcome: OutcomeUnanswered}

		selected := in.Selected[s.QuestionID]
		correct, known := in.Correct[s.QuestionID]
		switch {
		case selected == nil || !known:
			bd.Unanswered++
		case *selected == correct:
			res.Outcome = OutcomeCorrect
			res.Marks = s.Marks
			bd.Correct++
		default:
			res.Outcome = OutcomeIncorrect
			res.Marks = 0 - s.NegativeMarks
			bd.Incorrect++
		}
		raw += res.Marks
		bd.Results = append(bd.Results, res)
	}

	bd.Obtained = round2(math.Max(raw, 0))
	if bd.TotalPossible > 0 {
		bd.Percentage = round2(bd.Obtained / bd.TotalPossible * 100)
	}
	return bd
}

// Passed 阈值为 0 时任何成绩都算通过
func (bd GradeBreakdown) Passed(threshold float64) bool {
	return bd.Percentage >= threshold
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
