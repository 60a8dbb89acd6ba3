package schema

import (
	"prepmate_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuizValidPayload(t *testing.T) {
	raw := []byte(`{"questions":[
		{"id":1,"question":"What does CPU stand for?","option_a":"Central Processing Unit","option_b":"Computer Personal Unit","option_c":"Central Program Utility","option_d":"Core Processing Unit","correct_answer_letter":"A"},
		{"id":2,"question":"Which is a compiled language?","option_a":"Python","option_b":"Go","option_c":"JavaScript","option_d":"Ruby","correct_answer_letter":"B"}
	]}`)

	questions, err := ParseQuiz(raw)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 1, questions[0].ID)
	assert.Equal(t, "What does CPU stand for?", questions[0].Question)
	assert.Equal(t, "A", questions[0].CorrectAnswerLetter)
	assert.Equal(t, "Go", questions[1].OptionB)
}

func TestParseQuizEmptyQuestions(t *testing.T) {
	_, err := ParseQuiz([]byte(`{"questions":[]}`))
	assert.ErrorIs(t, err, util.ErrEmptyQuiz)

	_, err = ParseQuiz([]byte(`{}`))
	assert.ErrorIs(t, err, util.ErrEmptyQuiz)
}

func TestParseQuizMissingField(t *testing.T) {
	// option_c absent entirely, not just empty.
	raw := []byte(`{"questions":[
		{"id":1,"question":"Q?","option_a":"a","option_b":"b","option_d":"d","correct_answer_letter":"A"}
	]}`)

	_, err := ParseQuiz(raw)
	assert.ErrorIs(t, err, util.ErrSchemaViolation)
}

func TestParseQuizInvalidAnswerLetter(t *testing.T) {
	raw := []byte(`{"questions":[
		{"id":1,"question":"Q?","option_a":"a","option_b":"b","option_c":"c","option_d":"d","correct_answer_letter":"E"}
	]}`)

	_, err := ParseQuiz(raw)
	assert.ErrorIs(t, err, util.ErrSchemaViolation)
}

func TestParseQuizEmptyQuestionText(t *testing.T) {
	raw := []byte(`{"questions":[
		{"id":1,"question":"","option_a":"a","option_b":"b","option_c":"c","option_d":"d","correct_answer_letter":"A"}
	]}`)

	_, err := ParseQuiz(raw)
	assert.ErrorIs(t, err, util.ErrSchemaViolation)
}

func TestParseQuizMalformedJSON(t *testing.T) {
	_, err := ParseQuiz([]byte(`not json at all`))
	assert.ErrorIs(t, err, util.ErrSchemaViolation)
}

func TestParseInterviewGrade(t *testing.T) {
	grade, err := ParseInterviewGrade([]byte(`{"score":4,"feedback":"Solid answer, missed the edge case."}`))
	require.NoError(t, err)
	assert.Equal(t, 4, grade.Score)
	assert.Equal(t, "Solid answer, missed the edge case.", grade.Feedback)
}

func TestParseInterviewGradeClampsScore(t *testing.T) {
	grade, err := ParseInterviewGrade([]byte(`{"score":9,"feedback":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, 5, grade.Score)

	grade, err = ParseInterviewGrade([]byte(`{"score":-2,"feedback":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, grade.Score)
}

func TestParseInterviewGradeMissingFields(t *testing.T) {
	_, err := ParseInterviewGrade([]byte(`{"score":3}`))
	assert.ErrorIs(t, err, util.ErrSchemaViolation)

	_, err = ParseInterviewGrade([]byte(`{"feedback":"good"}`))
	assert.ErrorIs(t, err, util.ErrSchemaViolation)

	_, err = ParseInterviewGrade([]byte(`{"score":3,"feedback":""}`))
	assert.ErrorIs(t, err, util.ErrSchemaViolation)
}

func TestParseVideoGrade(t *testing.T) {
	raw := []byte(`{"score":3,"technical_feedback":"Accurate but shallow.","body_language_feedback":"Good eye contact."}`)
	grade, err := ParseVideoGrade(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, grade.Score)
	assert.Equal(t, "Accurate but shallow.", grade.TechnicalFeedback)
	assert.Equal(t, "Good eye contact.", grade.BodyLanguageFeedback)
}

func TestParseVideoGradeMissingSection(t *testing.T) {
	_, err := ParseVideoGrade([]byte(`{"score":3,"technical_feedback":"fine"}`))
	assert.ErrorIs(t, err, util.ErrSchemaViolation)
}
