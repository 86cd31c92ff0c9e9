package app

import (
	"fmt"

	"trivia-quiz-service/internal/domain"
)

// Engine is the state machine of a single quiz attempt:
// NotStarted -> InProgress(locked) -> Completed.
//
// Engine is not safe for concurrent use; callers serialize events (see Session).
type Engine struct {
	questions []domain.Question
	index     int
	answers   []domain.AnswerRecord
	answered  map[int]int // question id -> position in answers
	score     int
	phase     domain.Phase
	locked    bool
	timer     *Countdown
}

// NewEngine returns an engine whose questions each get timeLimit ticks.
func NewEngine(timeLimit int) *Engine {
	e := &Engine{phase: domain.PhaseNotStarted}
	e.timer = NewCountdown(timeLimit, e.expire)
	return e
}

// Start loads the question set and opens the first question.
func (e *Engine) Start(questions []domain.Question) error {
	if e.phase != domain.PhaseNotStarted {
		return fmt.Errorf("%w: session already started", domain.ErrInvalidState)
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", domain.ErrInvalidInput)
	}
	if err := domain.ValidateQuestions(questions); err != nil {
		return err
	}

	e.questions = make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		e.questions[i] = q
	}
	e.index = 0
	e.answers = nil
	e.answered = make(map[int]int, len(questions))
	e.score = 0
	e.phase = domain.PhaseInProgress
	e.enter()
	return nil
}

// RecordAnswer resolves the current question. selected may be nil for a skip or timeout.
func (e *Engine) RecordAnswer(selected *int, skipped bool) (domain.AnswerRecord, error) {
	return e.resolve(selected, skipped, false)
}

// Submit records selected as the answer to the current question.
func (e *Engine) Submit(selected int) (domain.AnswerRecord, error) {
	if err := e.checkOpen(); err != nil {
		return domain.AnswerRecord{}, err
	}
	if n := len(e.questions[e.index].Options); selected < 0 || selected >= n {
		return domain.AnswerRecord{}, fmt.Errorf("%w: option %d out of range [0,%d)", domain.ErrInvalidInput, selected, n)
	}
	return e.resolve(&selected, false, false)
}

// Skip resolves the current question without an answer.
func (e *Engine) Skip() (domain.AnswerRecord, error) {
	return e.resolve(nil, true, false)
}

// Timeout resolves the current question as unanswered in time.
func (e *Engine) Timeout() (domain.AnswerRecord, error) {
	return e.resolve(nil, false, true)
}

// Tick advances the current question's countdown by one unit and reports
// whether it expired, in which case a timed-out answer has been recorded.
func (e *Engine) Tick() bool {
	if e.phase != domain.PhaseInProgress {
		return false
	}
	return e.timer.Tick()
}

// Advance moves past a locked question. On the last question it completes the session.
func (e *Engine) Advance() error {
	if e.phase != domain.PhaseInProgress {
		return fmt.Errorf("%w: session is %s", domain.ErrInvalidState, e.phase)
	}
	if !e.locked {
		return fmt.Errorf("%w: current question is not answered", domain.ErrInvalidState)
	}
	if e.index == len(e.questions)-1 {
		e.complete()
		return nil
	}
	e.index++
	e.enter()
	return nil
}

// Retreat moves back one question. Recorded answers are never touched.
func (e *Engine) Retreat() error {
	if e.phase != domain.PhaseInProgress {
		return fmt.Errorf("%w: session is %s", domain.ErrInvalidState, e.phase)
	}
	if e.index == 0 {
		return fmt.Errorf("%w: already at the first question", domain.ErrInvalidState)
	}
	e.index--
	e.enter()
	return nil
}

// FinishEarly completes the session with the answers recorded so far.
func (e *Engine) FinishEarly() error {
	if e.phase != domain.PhaseInProgress {
		return fmt.Errorf("%w: session is %s", domain.ErrInvalidState, e.phase)
	}
	e.complete()
	return nil
}

// Completed reports whether the session reached its terminal state.
func (e *Engine) Completed() bool {
	return e.phase == domain.PhaseCompleted
}

// Current returns the question at the current index.
func (e *Engine) Current() (domain.Question, bool) {
	if e.phase == domain.PhaseNotStarted || len(e.questions) == 0 {
		return domain.Question{}, false
	}
	return e.questions[e.index], true
}

// State returns a snapshot that shares no memory with the engine.
func (e *Engine) State() domain.SessionState {
	answers := make([]domain.AnswerRecord, len(e.answers))
	copy(answers, e.answers)
	questions := make([]domain.Question, len(e.questions))
	copy(questions, e.questions)
	return domain.SessionState{
		Phase:        e.phase,
		Questions:    questions,
		CurrentIndex: e.index,
		Answers:      answers,
		Score:        e.score,
		Started:      e.phase != domain.PhaseNotStarted,
		Completed:    e.phase == domain.PhaseCompleted,
		Locked:       e.locked,
		Timer: domain.TimerState{
			Remaining: e.timer.Remaining(),
			Active:    e.timer.Active(),
		},
	}
}

func (e *Engine) checkOpen() error {
	if e.phase != domain.PhaseInProgress {
		return fmt.Errorf("%w: session is %s", domain.ErrInvalidState, e.phase)
	}
	if e.locked {
		return fmt.Errorf("%w: question %d is locked", domain.ErrInvalidState, e.questions[e.index].ID)
	}
	return nil
}

func (e *Engine) resolve(selected *int, skipped, timedOut bool) (domain.AnswerRecord, error) {
	if err := e.checkOpen(); err != nil {
		return domain.AnswerRecord{}, err
	}
	q := e.questions[e.index]

	var sel *int
	if selected != nil {
		v := *selected
		sel = &v
	}
	correct := !skipped && !timedOut && sel != nil && *sel == q.CorrectIndex
	record := domain.AnswerRecord{
		QuestionID:    q.ID,
		SelectedIndex: sel,
		CorrectIndex:  q.CorrectIndex,
		IsCorrect:     correct,
		QuestionText:  q.Text,
		Options:       append([]string(nil), q.Options...),
		Skipped:       skipped,
		TimedOut:      timedOut,
	}
	e.answers = append(e.answers, record)
	e.answered[q.ID] = len(e.answers) - 1
	if correct {
		e.score++
	}
	e.locked = true
	e.timer.Cancel()
	return record, nil
}

// enter opens the question at the current index. A question that already has
// a record stays locked with its timer stopped, so it can never be recorded twice.
func (e *Engine) enter() {
	if _, done := e.answered[e.questions[e.index].ID]; done {
		e.locked = true
		e.timer.Cancel()
		return
	}
	e.locked = false
	e.timer.Reset()
}

func (e *Engine) complete() {
	e.phase = domain.PhaseCompleted
	e.locked = true
	e.timer.Cancel()
}

// expire is the countdown's expiry hook; the countdown only runs while the
// current question is open, so the timeout cannot be rejected here.
func (e *Engine) expire() {
	_, _ = e.resolve(nil, false, true)
}
