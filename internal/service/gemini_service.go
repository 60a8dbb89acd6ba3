package service

import (
	"context"
	"fmt"
	"prepmate_backend/internal/config"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/schema"
	"prepmate_backend/internal/util"
	"prepmate_backend/pkg/logger"
	"prepmate_backend/pkg/monitoring"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenerativeBackend is the narrow slice of the Gemini client the service
// needs. Tests inject a fake; production wraps *genai.Client.
type GenerativeBackend interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	UploadFile(ctx context.Context, path string, mimeType string) (*genai.File, error)
	GetFile(ctx context.Context, name string) (*genai.File, error)
	DeleteFile(ctx context.Context, name string) error
}

type genaiBackend struct {
	client *genai.Client
}

func (b *genaiBackend) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return b.client.Models.GenerateContent(ctx, model, contents, config)
}

func (b *genaiBackend) UploadFile(ctx context.Context, path string, mimeType string) (*genai.File, error) {
	return b.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: mimeType})
}

func (b *genaiBackend) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return b.client.Files.Get(ctx, name, nil)
}

func (b *genaiBackend) DeleteFile(ctx context.Context, name string) error {
	_, err := b.client.Files.Delete(ctx, name, nil)
	return err
}

// GeminiService is the single gateway to the generative backend. It is
// constructed once at startup and injected into every service that needs
// generation; a missing API key leaves the backend nil, which every
// operation checks before calling out.
type GeminiService struct {
	backend GenerativeBackend

	mu              sync.RWMutex
	model           string
	pollInterval    time.Duration
	maxPollAttempts int
}

func NewGeminiService(cfg *config.Config) *GeminiService {
	s := &GeminiService{
		model:           cfg.Gemini.Model,
		pollInterval:    cfg.Interview.PollInterval,
		maxPollAttempts: cfg.Interview.MaxPollAttempts,
	}

	if cfg.Gemini.APIKey == "" {
		logger.Log.Warn("Gemini API key not configured, generation disabled")
		return s
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Log.Error("Failed to initialize Gemini client, generation disabled", zap.Error(err))
		return s
	}

	s.backend = &genaiBackend{client: client}
	logger.Log.Info("Gemini client initialized", zap.String("model", s.model))
	return s
}

// NewGeminiServiceWithBackend wires an explicit backend; used by tests.
func NewGeminiServiceWithBackend(backend GenerativeBackend, modelName string, pollInterval time.Duration, maxPollAttempts int) *GeminiService {
	return &GeminiService{
		backend:         backend,
		model:           modelName,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
	}
}

func (s *GeminiService) Available() bool {
	return s.backend != nil
}

// SetModel swaps the model name at runtime (config hot reload).
func (s *GeminiService) SetModel(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	s.model = name
	s.mu.Unlock()
}

func (s *GeminiService) modelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func textContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

// generate runs one backend round-trip and records metrics. The returned
// text is the raw model output; structured callers parse and validate it.
func (s *GeminiService) generate(ctx context.Context, operation string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	if !s.Available() {
		return "", util.ErrModelUnavailable
	}

	start := time.Now()
	result, err := s.backend.GenerateContent(ctx, s.modelName(), contents, cfg)
	monitoring.ObserveGeneration(operation, start, err)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return result.Text(), nil
}

// GenerateQuiz asks for count multiple-choice questions on subject at
// level, constrained to the quiz schema. It never returns an error: any
// failure collapses into a single-question fallback quiz so the quiz page
// always has something to render.
func (s *GeminiService) GenerateQuiz(ctx context.Context, subject, level string, count int) []model.QuizQuestion {
	prompt := fmt.Sprintf(`You are an expert quiz creator.
Generate a %d-question multiple-choice quiz on the topic of "%s"
at a "%s" difficulty level.

For each question, provide:
1. "id": A unique integer ID for the question (e.g., 1, 2, 3...).
2. "question": The full text of the question.
3. "option_a": The text for option A.
4. "option_b": The text for option B.
5. "option_c": The text for option C.
6. "option_d": The text for option D.
7. "correct_answer_letter": The *letter* of the correct answer (e.g., 'A', 'B', 'C', or 'D').

Do NOT include 'A)', 'B)', etc. prefixes in the option_a, option_b... strings.
Adhere *strictly* to the JSON schema provided.`, count, subject, level)

	text, err := s.generate(ctx, "generate_quiz", textContents(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema.QuizSchema(),
	})
	if err != nil {
		logger.Log.Error("Quiz generation failed, serving fallback quiz",
			zap.String("subject", subject), zap.Error(err))
		return FallbackQuiz(err)
	}

	questions, err := schema.ParseQuiz([]byte(text))
	if err != nil {
		logger.Log.Error("Quiz response rejected, serving fallback quiz",
			zap.String("subject", subject), zap.Error(err))
		return FallbackQuiz(err)
	}

	return questions
}

// FallbackQuiz is the single-question placeholder served when generation
// fails. The error explanation goes into the question text so the page
// still renders something actionable.
func FallbackQuiz(cause error) []model.QuizQuestion {
	return []model.QuizQuestion{{
		ID: 1,
		Question: fmt.Sprintf("Error: Could not generate quiz. The AI model may be temporarily unavailable or rate limits exceeded. Please try again later. (Error: %v)",
			cause),
		OptionA:             "Sorry, please try again.",
		OptionB:             "Option B",
		OptionC:             "Option C",
		OptionD:             "Option D",
		CorrectAnswerLetter: "A",
	}}
}

// GenerateInterviewQuestion returns one open-ended question. Failures
// surface to the caller; the interview endpoint reports them as errors.
func (s *GeminiService) GenerateInterviewQuestion(ctx context.Context, subject, level string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert interviewer.
Generate one concise, open-ended interview question for a candidate
at a "%s" level on the topic of "%s".
Do not add any preamble, just return the question text.`, level, subject)

	text, err := s.generate(ctx, "interview_question", textContents(prompt), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GradeTextAnswer grades a typed interview answer against the interview
// grade schema.
func (s *GeminiService) GradeTextAnswer(ctx context.Context, subject, level, question, userAnswer string) (*schema.InterviewGrade, error) {
	prompt := fmt.Sprintf(`You are an expert tech interviewer. A candidate was asked the following question
on the topic of "%s" at a "%s" level:
"%s"

The candidate provided this answer:
"%s"

Please grade their answer. Provide a score from 1 (poor) to 5 (excellent)
and concise, constructive feedback on their answer's accuracy and completeness.
Adhere *strictly* to the JSON schema.`, subject, level, question, userAnswer)

	text, err := s.generate(ctx, "grade_answer", textContents(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema.InterviewGradeSchema(),
	})
	if err != nil {
		return nil, err
	}

	return schema.ParseInterviewGrade([]byte(text))
}

// GradeVideoAnswer uploads a recorded answer, waits for the backend to
// finish processing it, then requests combined technical and body-language
// feedback. The uploaded file is deleted afterwards on a best-effort
// basis; a failed delete never fails the grading.
func (s *GeminiService) GradeVideoAnswer(ctx context.Context, videoPath, mimeType, question, subject, level string) (*schema.VideoGrade, error) {
	if !s.Available() {
		return nil, util.ErrModelUnavailable
	}

	start := time.Now()
	file, err := s.backend.UploadFile(ctx, videoPath, mimeType)
	monitoring.ObserveGeneration("upload_video", start, err)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}

	defer func() {
		if err := s.backend.DeleteFile(context.Background(), file.Name); err != nil {
			logger.Log.Warn("Failed to delete uploaded video from backend",
				zap.String("file", file.Name), zap.Error(err))
		}
	}()

	file, err = s.waitForProcessing(ctx, file)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are an expert interview coach reviewing a recorded video answer.
The candidate was asked the following question on the topic of "%s" at a "%s" level:
"%s"

Watch the video and grade the answer. Provide:
- "score": 1 (poor) to 5 (excellent), considering both content and delivery.
- "technical_feedback": concise feedback on the accuracy and completeness of what was said.
- "body_language_feedback": concise feedback on posture, eye contact and delivery.
Adhere *strictly* to the JSON schema.`, subject, level, question)

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{FileData: &genai.FileData{FileURI: file.URI, MIMEType: file.MIMEType}},
			{Text: prompt},
		},
	}}

	text, err := s.generate(ctx, "grade_video", contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema.VideoGradeSchema(),
	})
	if err != nil {
		return nil, err
	}

	return schema.ParseVideoGrade([]byte(text))
}

// waitForProcessing polls the uploaded file until it leaves the PROCESSING
// state. The loop is bounded: maxPollAttempts polls at pollInterval, then
// an explicit timeout error.
func (s *GeminiService) waitForProcessing(ctx context.Context, file *genai.File) (*genai.File, error) {
	for attempt := 0; attempt < s.maxPollAttempts; attempt++ {
		switch file.State {
		case genai.FileStateFailed:
			return nil, fmt.Errorf("%w: file %s", util.ErrVideoProcessing, file.Name)
		case genai.FileStateProcessing:
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pollInterval):
			}

			refreshed, err := s.backend.GetFile(ctx, file.Name)
			if err != nil {
				return nil, fmt.Errorf("poll video state: %w", err)
			}
			file = refreshed
		default:
			return file, nil
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", util.ErrVideoPollTimeout, s.maxPollAttempts)
}

// ExplainAnswer powers the "why was I wrong" feature on the review page.
func (s *GeminiService) ExplainAnswer(ctx context.Context, question, userAnswer, correctAnswer string) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful tutor. My student was answering a quiz question.
The question was: "%s"
They answered: "%s"
The correct answer is: "%s"

Please provide a concise, friendly explanation (2-3 sentences)
about why their answer was incorrect and why the correct answer is correct.`,
		question, userAnswer, correctAnswer)

	return s.generate(ctx, "explain_answer", textContents(prompt), nil)
}

// GenerateStudyGuide produces a freeform study guide for a subject.
func (s *GeminiService) GenerateStudyGuide(ctx context.Context, subject, level string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert tutor. Generate a concise study guide
for the topic "%s" at a "%s" level.
The guide should help a student who has never taken this course study for this subject.
Suggest key topics and subtopics to cover, along with recommended videos and website links.`,
		subject, level)

	return s.generate(ctx, "study_guide", textContents(prompt), nil)
}

// TutorTip asks for a short encouragement naming the student's weakest
// subject, constrained to suggest exactly one of three fixed actions.
func (s *GeminiService) TutorTip(ctx context.Context, displayName, subject string, avgPercent float64) (string, error) {
	if displayName == "" {
		displayName = "there"
	}
	prompt := fmt.Sprintf(`You are a friendly, encouraging tutor. My student, %s, is struggling with '%s' (average score: %.0f%%).
Give them one short (2-3 sentence) piece of encouragement and suggest *one* specific action from this list to improve: ['Take a Beginner quiz', 'Get a Study Guide', 'Try a Mock Interview'].
Be friendly and concise.`, displayName, subject, avgPercent)

	text, err := s.generate(ctx, "tutor_tip", textContents(prompt), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
