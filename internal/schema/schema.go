// Package schema declares the structured-output contracts the generative
// backend must honor for quiz generation and interview grading, and the
// strict parsers that refuse anything the backend got wrong. The backend
// is asked to conform via genai response schemas, but nothing here trusts
// that it did: every payload is validated after parsing.
package schema

import (
	"encoding/json"
	"fmt"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/util"

	"google.golang.org/genai"
)

// AnswerLetters are the only letters a correct answer may use.
var AnswerLetters = []string{"A", "B", "C", "D"}

// QuizSchema constrains quiz generation: an object with a `questions`
// array whose items carry an id, the question text, four options and the
// correct answer letter. All seven fields are mandatory per item.
func QuizSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id": {
							Type:        genai.TypeInteger,
							Description: "A unique ID for the question, starting from 1.",
						},
						"question": {
							Type:        genai.TypeString,
							Description: "The full text of the quiz question.",
						},
						"option_a": {
							Type:        genai.TypeString,
							Description: "The text for answer option A.",
						},
						"option_b": {
							Type:        genai.TypeString,
							Description: "The text for answer option B.",
						},
						"option_c": {
							Type:        genai.TypeString,
							Description: "The text for answer option C.",
						},
						"option_d": {
							Type:        genai.TypeString,
							Description: "The text for answer option D.",
						},
						"correct_answer_letter": {
							Type:        genai.TypeString,
							Enum:        AnswerLetters,
							Description: "The correct answer letter: 'A', 'B', 'C' or 'D'.",
						},
					},
					Required: []string{"id", "question", "option_a", "option_b", "option_c", "option_d", "correct_answer_letter"},
				},
			},
		},
		Required: []string{"questions"},
	}
}

// InterviewGradeSchema constrains text-answer grading to a 1-5 score plus
// free-text feedback.
func InterviewGradeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score": {
				Type:        genai.TypeInteger,
				Description: "A score from 1 (poor) to 5 (excellent).",
			},
			"feedback": {
				Type:        genai.TypeString,
				Description: "Concise, constructive feedback on the user's answer, explaining what was right and wrong.",
			},
		},
		Required: []string{"score", "feedback"},
	}
}

// VideoGradeSchema constrains video-answer grading: one score and two
// feedback sections, technical and body language.
func VideoGradeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score": {
				Type:        genai.TypeInteger,
				Description: "A score from 1 (poor) to 5 (excellent).",
			},
			"technical_feedback": {
				Type:        genai.TypeString,
				Description: "Feedback on the technical accuracy and completeness of the spoken answer.",
			},
			"body_language_feedback": {
				Type:        genai.TypeString,
				Description: "Feedback on posture, eye contact and delivery.",
			},
		},
		Required: []string{"score", "technical_feedback", "body_language_feedback"},
	}
}

// InterviewGrade is a validated text-grading payload.
type InterviewGrade struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// VideoGrade is a validated video-grading payload.
type VideoGrade struct {
	Score                int    `json:"score"`
	TechnicalFeedback    string `json:"technical_feedback"`
	BodyLanguageFeedback string `json:"body_language_feedback"`
}

// ParseQuiz decodes and validates a quiz payload. An empty question set is
// a failure: the caller's fallback path must never be skipped because the
// backend returned valid-but-useless JSON.
func ParseQuiz(raw []byte) ([]model.QuizQuestion, error) {
	var payload struct {
		Questions []struct {
			ID                  *int    `json:"id"`
			Question            *string `json:"question"`
			OptionA             *string `json:"option_a"`
			OptionB             *string `json:"option_b"`
			OptionC             *string `json:"option_c"`
			OptionD             *string `json:"option_d"`
			CorrectAnswerLetter *string `json:"correct_answer_letter"`
		} `json:"questions"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrSchemaViolation, err)
	}
	if len(payload.Questions) == 0 {
		return nil, util.ErrEmptyQuiz
	}

	questions := make([]model.QuizQuestion, 0, len(payload.Questions))
	for i, q := range payload.Questions {
		if q.ID == nil || q.Question == nil || q.OptionA == nil || q.OptionB == nil ||
			q.OptionC == nil || q.OptionD == nil || q.CorrectAnswerLetter == nil {
			return nil, fmt.Errorf("%w: question %d is missing required fields", util.ErrSchemaViolation, i+1)
		}
		if *q.Question == "" {
			return nil, fmt.Errorf("%w: question %d has empty text", util.ErrSchemaViolation, i+1)
		}
		if !validLetter(*q.CorrectAnswerLetter) {
			return nil, fmt.Errorf("%w: question %d has invalid answer letter %q", util.ErrSchemaViolation, i+1, *q.CorrectAnswerLetter)
		}
		questions = append(questions, model.QuizQuestion{
			ID:                  *q.ID,
			Question:            *q.Question,
			OptionA:             *q.OptionA,
			OptionB:             *q.OptionB,
			OptionC:             *q.OptionC,
			OptionD:             *q.OptionD,
			CorrectAnswerLetter: *q.CorrectAnswerLetter,
		})
	}

	return questions, nil
}

// ParseInterviewGrade decodes and validates a text-grading payload.
func ParseInterviewGrade(raw []byte) (*InterviewGrade, error) {
	var payload struct {
		Score    *int    `json:"score"`
		Feedback *string `json:"feedback"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrSchemaViolation, err)
	}
	if payload.Score == nil || payload.Feedback == nil {
		return nil, fmt.Errorf("%w: grade is missing required fields", util.ErrSchemaViolation)
	}
	if *payload.Feedback == "" {
		return nil, fmt.Errorf("%w: grade has empty feedback", util.ErrSchemaViolation)
	}
	return &InterviewGrade{
		Score:    clampScore(*payload.Score),
		Feedback: *payload.Feedback,
	}, nil
}

// ParseVideoGrade decodes and validates a video-grading payload.
func ParseVideoGrade(raw []byte) (*VideoGrade, error) {
	var payload struct {
		Score                *int    `json:"score"`
		TechnicalFeedback    *string `json:"technical_feedback"`
		BodyLanguageFeedback *string `json:"body_language_feedback"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrSchemaViolation, err)
	}
	if payload.Score == nil || payload.TechnicalFeedback == nil || payload.BodyLanguageFeedback == nil {
		return nil, fmt.Errorf("%w: video grade is missing required fields", util.ErrSchemaViolation)
	}
	return &VideoGrade{
		Score:                clampScore(*payload.Score),
		TechnicalFeedback:    *payload.TechnicalFeedback,
		BodyLanguageFeedback: *payload.BodyLanguageFeedback,
	}, nil
}

func validLetter(letter string) bool {
	for _, l := range AnswerLetters {
		if letter == l {
			return true
		}
	}
	return false
}

// clampScore forces a score into the contractual 1-5 range. The schema
// asks for it, but the backend occasionally drifts.
func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}
