package model

import "time"

// QuizQuestion is the unit the generator produces. It only lives in the
// quiz session between generation and submission; after grading it is kept
// as a JSON snapshot on the QuizResult for the review page.
type QuizQuestion struct {
	ID                  int    `json:"id"`
	Question            string `json:"question"`
	OptionA             string `json:"option_a"`
	OptionB             string `json:"option_b"`
	OptionC             string `json:"option_c"`
	OptionD             string `json:"option_d"`
	CorrectAnswerLetter string `json:"correct_answer_letter"`
}

// OptionText returns the option text for an answer letter, or "" when the
// letter is not one of A-D.
func (q QuizQuestion) OptionText(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// QuizSession holds an in-progress quiz between start and submission.
// It is stored in Redis keyed by the owning user and cleared on submit.
type QuizSession struct {
	Subject   string         `json:"subject"`
	Level     string         `json:"level"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizResult stores one graded quiz. Rows are immutable after creation
// and owned by exactly one user.
type QuizResult struct {
	BaseModel
	UserID  uint   `gorm:"index;not null" json:"userId"`
	Subject string `gorm:"size:150;not null" json:"subject"`
	Level   string `gorm:"size:50" json:"level"`
	Score   int    `gorm:"not null" json:"score"`
	Total   int    `gorm:"not null" json:"total"`

	// JSON snapshots of the generated questions and the user's chosen
	// option text per question, for the review-your-mistakes page.
	QuizData    string `gorm:"type:text" json:"-"`
	UserAnswers string `gorm:"type:text" json:"-"`

	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
