package domain

// Difficulty tags a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyMixed is only meaningful as a request filter.
const DifficultyMixed Difficulty = "mixed"

// Question models an MCQ question with exactly one correct option.
// Any int is a valid ID, including 0; ids only need to be unique within a
// question set.
type Question struct {
	ID           int        `json:"id"`
	Text         string     `json:"question" validate:"required"`
	Options      []string   `json:"options" validate:"min=2,dive,required"`
	CorrectIndex int        `json:"correctAnswer" validate:"gte=0"`
	Difficulty   Difficulty `json:"difficulty" validate:"oneof=easy medium hard"`
}

// AnswerRecord is the immutable outcome of one resolved question.
type AnswerRecord struct {
	QuestionID    int      `json:"questionId"`
	SelectedIndex *int     `json:"selectedAnswer"`
	CorrectIndex  int      `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	QuestionText  string   `json:"question"`
	Options       []string `json:"options"`
	Skipped       bool     `json:"skipped"`
	TimedOut      bool     `json:"timeUp"`
}

// Phase is the coarse state of a quiz session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// TimerState is the countdown as seen by clients.
type TimerState struct {
	Remaining int  `json:"remaining"`
	Active    bool `json:"active"`
}

// SessionState is a snapshot of one quiz attempt.
type SessionState struct {
	ID           string         `json:"id"`
	Phase        Phase          `json:"phase"`
	Questions    []Question     `json:"questions"`
	CurrentIndex int            `json:"currentIndex"`
	Answers      []AnswerRecord `json:"answers"`
	Score        int            `json:"score"`
	Started      bool           `json:"started"`
	Completed    bool           `json:"completed"`
	Locked       bool           `json:"locked"`
	Timer        TimerState     `json:"timer"`
}

// HighScoreEntry is one persisted leaderboard row. Field names match the stored JSON payload.
type HighScoreEntry struct {
	Score             int    `json:"score"`
	TotalQuestions    int    `json:"totalQuestions"`
	AnsweredQuestions int    `json:"answeredQuestions"`
	Percentage        int    `json:"percentage"`
	Date              string `json:"date"`
	Timestamp         int64  `json:"timestamp"`
}

// Summary is the results view of a finished session.
type Summary struct {
	Score                int    `json:"score"`
	TotalQuestions       int    `json:"totalQuestions"`
	AnsweredQuestions    int    `json:"answeredQuestions"`
	Incorrect            int    `json:"incorrect"`
	Skipped              int    `json:"skipped"`
	TimedOut             int    `json:"timedOut"`
	Percentage           int    `json:"percentage"`
	CompletionPercentage int    `json:"completionPercentage"`
	FinishedEarly        bool   `json:"finishedEarly"`
	Message              string `json:"message"`
}

// SourceKind selects where questions come from.
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceRemote SourceKind = "remote"
)

// QuestionRequest describes the question set a session wants.
type QuestionRequest struct {
	Source     SourceKind `json:"source" validate:"omitempty,oneof=local remote"`
	Count      int        `json:"count" validate:"gte=0,lte=50"`
	Difficulty Difficulty `json:"difficulty" validate:"omitempty,oneof=mixed easy medium hard"`
	Category   string     `json:"category"`
}
