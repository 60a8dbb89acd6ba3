package model

import "time"

// VideoAnswerSentinel is stored as the user answer for video submissions,
// where there is no transcript to keep.
const VideoAnswerSentinel = "[Video Submission]"

// InterviewResult stores one graded mock-interview turn, text or video.
type InterviewResult struct {
	BaseModel
	UserID       uint      `gorm:"index;not null" json:"userId"`
	Subject      string    `gorm:"size:150;not null" json:"subject"`
	Level        string    `gorm:"size:50" json:"level"`
	QuestionText string    `gorm:"type:text;not null" json:"questionText"`
	UserAnswer   string    `gorm:"type:text" json:"userAnswer"`
	AIFeedback   string    `gorm:"type:text" json:"aiFeedback"`
	AIScore      int       `json:"aiScore"`
	VideoURL     string    `gorm:"size:255" json:"videoUrl,omitempty"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
}

func (InterviewResult) TableName() string {
	return "interview_results"
}
