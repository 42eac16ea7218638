package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func quizBackend(t *testing.T, view QuizView) *fakeBackend {
	t.Helper()

	backend := newFakeBackend(t)
	backend.handle("GET /api/lessons/3/quiz", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, view)
	})
	return backend
}

func openQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			ID:           1,
			QuestionText: "q1",
			Points:       10,
			Answers:      []QuizAnswer{{ID: 11, AnswerText: "a"}, {ID: 12, AnswerText: "b"}},
		},
		{
			ID:           2,
			QuestionText: "q2",
			Points:       10,
			Answers:      []QuizAnswer{{ID: 21, AnswerText: "a"}, {ID: 22, AnswerText: "b"}},
		},
	}
}

func TestQuizFlow_OpenFresh(t *testing.T) {
	backend := quizBackend(t, QuizView{LessonID: 3, Questions: openQuestions()})

	flow, err := backend.client().OpenQuiz(t.Context(), 3)
	if err != nil {
		t.Fatalf("OpenQuiz() error = %v", err)
	}
	if flow.State() != QuizNotStarted {
		t.Errorf("State = %v, want not_started", flow.State())
	}
	if len(flow.Questions()) != 2 {
		t.Errorf("Questions = %d, want 2", len(flow.Questions()))
	}
	if flow.Unanswered() != 2 {
		t.Errorf("Unanswered = %d, want 2", flow.Unanswered())
	}
}

func TestQuizFlow_OpenCompletedShortCircuits(t *testing.T) {
	score := 80
	completedAt := time.Now().UTC().Truncate(time.Second)
	backend := quizBackend(t, QuizView{
		LessonID:    3,
		Completed:   true,
		Score:       &score,
		CompletedAt: &completedAt,
	})

	flow, err := backend.client().OpenQuiz(t.Context(), 3)
	if err != nil {
		t.Fatalf("OpenQuiz() error = %v", err)
	}
	if flow.State() != QuizCompleted {
		t.Fatalf("State = %v, want completed", flow.State())
	}
	if flow.Score() == nil || *flow.Score() != 80 {
		t.Errorf("Score = %v, want 80", flow.Score())
	}
	if len(flow.Questions()) != 0 {
		t.Error("completed quiz should not carry questions")
	}

	// 已完成后继续作答被拒绝
	err = flow.SelectAnswer(1, 11)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("SelectAnswer() on completed = %v, want *ValidationError", err)
	}
}

func TestQuizFlow_SelectAnswer(t *testing.T) {
	backend := quizBackend(t, QuizView{LessonID: 3, Questions: openQuestions()})
	flow, _ := backend.client().OpenQuiz(t.Context(), 3)

	if err := flow.SelectAnswer(1, 11); err != nil {
		t.Fatalf("SelectAnswer() error = %v", err)
	}
	if flow.State() != QuizInProgress {
		t.Errorf("State = %v, want in_progress", flow.State())
	}
	if flow.Unanswered() != 1 {
		t.Errorf("Unanswered = %d, want 1", flow.Unanswered())
	}

	// 换选覆盖之前的选择
	if err := flow.SelectAnswer(1, 12); err != nil {
		t.Fatalf("reselect error = %v", err)
	}
	if flow.Unanswered() != 1 {
		t.Errorf("Unanswered after reselect = %d, want 1", flow.Unanswered())
	}

	if err := flow.SelectAnswer(9, 11); err == nil {
		t.Error("unknown question should be rejected")
	}
	if err := flow.SelectAnswer(1, 21); err == nil {
		t.Error("answer from another question should be rejected")
	}
}

func TestQuizFlow_SubmitRequiresAllAnswered(t *testing.T) {
	backend := quizBackend(t, QuizView{LessonID: 3, Questions: openQuestions()})
	flow, _ := backend.client().OpenQuiz(t.Context(), 3)
	flow.SelectAnswer(1, 11)

	before := len(backend.requests)
	_, err := flow.Submit(t.Context())
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Submit() = %v, want *ValidationError", err)
	}
	if validationErr.Message != "1 questions are still unanswered" {
		t.Errorf("message = %q", validationErr.Message)
	}
	if len(backend.requests) != before {
		t.Error("partial submission should not reach the backend")
	}
}

func TestQuizFlow_SubmitRecoversFromLostResponse(t *testing.T) {
	score := 50
	completedAt := time.Now().UTC().Truncate(time.Second)
	completed := false

	backend := newFakeBackend(t)
	backend.handle("GET /api/lessons/3/quiz", func(w http.ResponseWriter, r *http.Request) {
		if completed {
			writeOK(w, QuizView{LessonID: 3, Completed: true, Score: &score, CompletedAt: &completedAt})
			return
		}
		writeOK(w, QuizView{LessonID: 3, Questions: openQuestions()})
	})
	// 服务端判分落库成功，但响应以 500 丢失
	backend.handle("POST /api/lessons/3/quiz/submit", func(w http.ResponseWriter, r *http.Request) {
		completed = true
		writeFail(w, http.StatusInternalServerError, "Internal server error")
	})

	flow, _ := backend.client().OpenQuiz(t.Context(), 3)
	flow.SelectAnswer(1, 11)
	flow.SelectAnswer(2, 22)

	result, err := flow.Submit(t.Context())
	if err != nil {
		t.Fatalf("Submit() error = %v, want recovered result", err)
	}
	if result.Score != 50 {
		t.Errorf("Score = %d, want 50", result.Score)
	}
	if flow.State() != QuizCompleted {
		t.Errorf("State = %v, want completed", flow.State())
	}
}

func TestQuizFlow_SubmitErrorWithoutServerCompletionSurfaces(t *testing.T) {
	backend := quizBackend(t, QuizView{LessonID: 3, Questions: openQuestions()})
	backend.handle("POST /api/lessons/3/quiz/submit", func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusInternalServerError, "Internal server error")
	})

	flow, _ := backend.client().OpenQuiz(t.Context(), 3)
	flow.SelectAnswer(1, 11)
	flow.SelectAnswer(2, 22)

	_, err := flow.Submit(t.Context())
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("Submit() = %v, want *BackendError", err)
	}
	if flow.State() != QuizInProgress {
		t.Errorf("State = %v, want in_progress", flow.State())
	}
}

func TestQuizFlow_SubmitAndRepeat(t *testing.T) {
	backend := quizBackend(t, QuizView{LessonID: 3, Questions: openQuestions()})

	submits := 0
	backend.handle("POST /api/lessons/3/quiz/submit", func(w http.ResponseWriter, r *http.Request) {
		submits++
		var body struct {
			Answers map[uint]uint `json:"answers"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Answers[1] != 11 || body.Answers[2] != 22 {
			t.Errorf("unexpected answers payload: %v", body.Answers)
		}

		now := time.Now()
		writeOK(w, QuizResult{LessonID: 3, Score: 50, CompletedAt: &now})
	})

	flow, _ := backend.client().OpenQuiz(t.Context(), 3)
	flow.SelectAnswer(1, 11)
	flow.SelectAnswer(2, 22)

	result, err := flow.Submit(t.Context())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Score != 50 {
		t.Errorf("Score = %d, want 50", result.Score)
	}
	if flow.State() != QuizCompleted {
		t.Errorf("State = %v, want completed", flow.State())
	}

	// 重复提交直接返回本地已记录的结果
	again, err := flow.Submit(t.Context())
	if err != nil {
		t.Fatalf("repeat Submit() error = %v", err)
	}
	if !again.AlreadyCompleted || again.Score != 50 {
		t.Errorf("repeat result = %+v", again)
	}
	if submits != 1 {
		t.Errorf("backend submits = %d, want 1", submits)
	}
}
