package model

// SubjectAggregate is the per-(user, subject) breakdown shown on the
// profile page. Percentages use the mean of per-test percentages, so every
// test weighs the same regardless of its question count.
type SubjectAggregate struct {
	Subject          string  `json:"name"`
	TestCount        int64   `json:"testCount"`
	AvgScorePercent  float64 `json:"avgScorePercent"`
	BestScorePercent float64 `json:"bestScorePercent"`
}

// ProfileStats bundles everything the profile page needs.
type ProfileStats struct {
	TotalTests        int64              `json:"totalTests"`
	AvgScorePercent   float64            `json:"avgScorePercent"`
	BestScorePercent  float64            `json:"bestScorePercent"`
	SubjectsAttempted int64              `json:"subjectsAttempted"`
	Subjects          []SubjectAggregate `json:"subjects"`
}

// LeaderboardEntry is one ranked row of the global leaderboard.
type LeaderboardEntry struct {
	DisplayName     string  `json:"displayName"`
	TestCount       int64   `json:"testCount"`
	AvgScorePercent float64 `json:"avgScorePercent"`
}
