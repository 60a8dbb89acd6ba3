package service

import (
	"context"
	"errors"
	"prepmate_backend/internal/util"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeBackend scripts backend behavior per test and records every call.
type fakeBackend struct {
	generateFunc func(model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	uploadFunc   func(path, mimeType string) (*genai.File, error)
	getFunc      func(name string) (*genai.File, error)
	deleteErr    error

	generateCalls int
	getCalls      int
	deleted       []string
}

func (f *fakeBackend) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.generateCalls++
	return f.generateFunc(model, contents, cfg)
}

func (f *fakeBackend) UploadFile(_ context.Context, path, mimeType string) (*genai.File, error) {
	return f.uploadFunc(path, mimeType)
}

func (f *fakeBackend) GetFile(_ context.Context, name string) (*genai.File, error) {
	f.getCalls++
	return f.getFunc(name)
}

func (f *fakeBackend) DeleteFile(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return f.deleteErr
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func newTestGemini(backend GenerativeBackend) *GeminiService {
	return NewGeminiServiceWithBackend(backend, "test-model", time.Millisecond, 3)
}

func TestGenerateQuizParsesStructuredResponse(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			require.NotNil(t, cfg)
			assert.Equal(t, "application/json", cfg.ResponseMIMEType)
			require.NotNil(t, cfg.ResponseSchema)
			return textResponse(`{"questions":[{"id":1,"question":"Q1?","option_a":"a","option_b":"b","option_c":"c","option_d":"d","correct_answer_letter":"C"}]}`), nil
		},
	}

	questions := newTestGemini(backend).GenerateQuiz(context.Background(), "Go", "Beginner", 1)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q1?", questions[0].Question)
	assert.Equal(t, "C", questions[0].CorrectAnswerLetter)
}

func TestGenerateQuizFallsBackOnBackendError(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("rate limited")
		},
	}

	questions := newTestGemini(backend).GenerateQuiz(context.Background(), "Go", "Beginner", 10)
	require.Len(t, questions, 1)
	assert.Equal(t, "A", questions[0].CorrectAnswerLetter)
	assert.Contains(t, questions[0].Question, "Could not generate quiz")
	assert.Contains(t, questions[0].Question, "rate limited")
}

func TestGenerateQuizFallsBackWhenUnconfigured(t *testing.T) {
	questions := newTestGemini(nil).GenerateQuiz(context.Background(), "Go", "Beginner", 10)
	require.Len(t, questions, 1)
	assert.Equal(t, "A", questions[0].CorrectAnswerLetter)
	assert.Contains(t, questions[0].Question, "Could not generate quiz")
}

func TestGenerateQuizFallsBackOnEmptyQuestionSet(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"questions":[]}`), nil
		},
	}

	questions := newTestGemini(backend).GenerateQuiz(context.Background(), "Go", "Beginner", 10)
	require.Len(t, questions, 1)
	assert.Contains(t, questions[0].Question, "Could not generate quiz")
}

func TestGenerateInterviewQuestionSurfacesErrors(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("backend down")
		},
	}

	_, err := newTestGemini(backend).GenerateInterviewQuestion(context.Background(), "Go", "Senior")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestGenerateInterviewQuestionTrimsWhitespace(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("\n  Explain goroutine scheduling.  \n"), nil
		},
	}

	question, err := newTestGemini(backend).GenerateInterviewQuestion(context.Background(), "Go", "Senior")
	require.NoError(t, err)
	assert.Equal(t, "Explain goroutine scheduling.", question)
}

func TestGradeTextAnswer(t *testing.T) {
	backend := &fakeBackend{
		generateFunc: func(_ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			require.Len(t, contents, 1)
			assert.True(t, strings.Contains(contents[0].Parts[0].Text, "What is a channel?"))
			return textResponse(`{"score":4,"feedback":"Clear and mostly complete."}`), nil
		},
	}

	grade, err := newTestGemini(backend).GradeTextAnswer(context.Background(), "Go", "Mid", "What is a channel?", "A typed conduit.")
	require.NoError(t, err)
	assert.Equal(t, 4, grade.Score)
	assert.Equal(t, "Clear and mostly complete.", grade.Feedback)
}

func TestGradeVideoAnswerHappyPath(t *testing.T) {
	backend := &fakeBackend{
		uploadFunc: func(path, mimeType string) (*genai.File, error) {
			assert.Equal(t, "video/webm", mimeType)
			return &genai.File{Name: "files/abc", URI: "uri://abc", MIMEType: mimeType, State: genai.FileStateActive}, nil
		},
		generateFunc: func(_ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			require.Len(t, contents, 1)
			require.NotNil(t, contents[0].Parts[0].FileData)
			assert.Equal(t, "uri://abc", contents[0].Parts[0].FileData.FileURI)
			return textResponse(`{"score":5,"technical_feedback":"Excellent depth.","body_language_feedback":"Confident delivery."}`), nil
		},
	}

	grade, err := newTestGemini(backend).GradeVideoAnswer(context.Background(), "/tmp/a.webm", "video/webm", "Q?", "Go", "Senior")
	require.NoError(t, err)
	assert.Equal(t, 5, grade.Score)
	assert.Equal(t, []string{"files/abc"}, backend.deleted)
}

func TestGradeVideoAnswerWaitsForProcessing(t *testing.T) {
	backend := &fakeBackend{
		uploadFunc: func(_, mimeType string) (*genai.File, error) {
			return &genai.File{Name: "files/abc", URI: "uri://abc", MIMEType: mimeType, State: genai.FileStateProcessing}, nil
		},
		getFunc: func(name string) (*genai.File, error) {
			return &genai.File{Name: name, URI: "uri://abc", MIMEType: "video/webm", State: genai.FileStateActive}, nil
		},
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"score":3,"technical_feedback":"t","body_language_feedback":"b"}`), nil
		},
	}

	grade, err := newTestGemini(backend).GradeVideoAnswer(context.Background(), "/tmp/a.webm", "video/webm", "Q?", "Go", "Mid")
	require.NoError(t, err)
	assert.Equal(t, 3, grade.Score)
	assert.Equal(t, 1, backend.getCalls)
}

func TestGradeVideoAnswerProcessingFailed(t *testing.T) {
	backend := &fakeBackend{
		uploadFunc: func(_, mimeType string) (*genai.File, error) {
			return &genai.File{Name: "files/abc", State: genai.FileStateFailed}, nil
		},
	}

	_, err := newTestGemini(backend).GradeVideoAnswer(context.Background(), "/tmp/a.webm", "video/webm", "Q?", "Go", "Mid")
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrVideoProcessing)
	assert.Zero(t, backend.generateCalls)
	assert.Equal(t, []string{"files/abc"}, backend.deleted, "uploaded file is still deleted on failure")
}

func TestGradeVideoAnswerPollTimeout(t *testing.T) {
	backend := &fakeBackend{
		uploadFunc: func(_, mimeType string) (*genai.File, error) {
			return &genai.File{Name: "files/abc", State: genai.FileStateProcessing}, nil
		},
		getFunc: func(name string) (*genai.File, error) {
			return &genai.File{Name: name, State: genai.FileStateProcessing}, nil
		},
	}

	_, err := newTestGemini(backend).GradeVideoAnswer(context.Background(), "/tmp/a.webm", "video/webm", "Q?", "Go", "Mid")
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrVideoPollTimeout)
	assert.Zero(t, backend.generateCalls)
}

func TestGradeVideoAnswerDeleteFailureIsBestEffort(t *testing.T) {
	backend := &fakeBackend{
		uploadFunc: func(_, mimeType string) (*genai.File, error) {
			return &genai.File{Name: "files/abc", URI: "uri://abc", MIMEType: mimeType, State: genai.FileStateActive}, nil
		},
		generateFunc: func(_ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"score":2,"technical_feedback":"t","body_language_feedback":"b"}`), nil
		},
		deleteErr: errors.New("delete denied"),
	}

	grade, err := newTestGemini(backend).GradeVideoAnswer(context.Background(), "/tmp/a.webm", "video/webm", "Q?", "Go", "Mid")
	require.NoError(t, err)
	assert.Equal(t, 2, grade.Score)
}

func TestTutorTipFillsNameFallback(t *testing.T) {
	var prompt string
	backend := &fakeBackend{
		generateFunc: func(_ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			prompt = contents[0].Parts[0].Text
			return textResponse("You've got this!"), nil
		},
	}

	tip, err := newTestGemini(backend).TutorTip(context.Background(), "", "History", 42)
	require.NoError(t, err)
	assert.Equal(t, "You've got this!", tip)
	assert.Contains(t, prompt, "My student, there,")
	assert.Contains(t, prompt, "'History'")
	assert.Contains(t, prompt, "42%")
}

func TestSetModelSwapsModelName(t *testing.T) {
	var usedModel string
	backend := &fakeBackend{
		generateFunc: func(model string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			usedModel = model
			return textResponse("q"), nil
		},
	}

	s := newTestGemini(backend)
	s.SetModel("updated-model")
	s.SetModel("")

	_, err := s.GenerateInterviewQuestion(context.Background(), "Go", "Mid")
	require.NoError(t, err)
	assert.Equal(t, "updated-model", usedModel)
}
