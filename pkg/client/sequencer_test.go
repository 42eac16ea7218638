package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
)

// lessonStore 服务端课时状态的内存模型
type lessonStore struct {
	mu      sync.Mutex
	lessons map[uint]*Lesson
	failPut map[uint]bool // 指定课时的更新请求返回 500
}

func newLessonStore(orders ...int) *lessonStore {
	s := &lessonStore{
		lessons: make(map[uint]*Lesson),
		failPut: make(map[uint]bool),
	}
	for i, order := range orders {
		id := uint(i + 1)
		s.lessons[id] = &Lesson{
			ID:          id,
			CourseID:    1,
			Title:       "lesson",
			Description: "desc",
			Order:       order,
		}
	}
	return s
}

func (s *lessonStore) sorted() []Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		out = append(out, *l)
	}
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].Order < out[i].Order || (out[j].Order == out[i].Order && out[j].ID < out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func setupSequencerBackend(t *testing.T, store *lessonStore) *fakeBackend {
	t.Helper()

	backend := newFakeBackend(t)
	backend.handle("/api/courses/1/lessons", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, store.sorted())
	})
	backend.handle("PUT /api/instructor/lessons/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Order *int `json:"order"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		store.mu.Lock()
		defer store.mu.Unlock()
		for id, lesson := range store.lessons {
			if r.PathValue("id") == itoa(id) {
				if store.failPut[id] {
					writeFail(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				if body.Order != nil {
					lesson.Order = *body.Order
				}
				writeOK(w, lesson)
				return
			}
		}
		writeFail(w, http.StatusNotFound, "Resource not found")
	})
	return backend
}

func itoa(v uint) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func TestSequencer_MoveDownSwapsAndPersists(t *testing.T) {
	store := newLessonStore(0, 1, 2)
	backend := setupSequencerBackend(t, store)

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	if err := seq.MoveDown(t.Context(), 1); err != nil {
		t.Fatalf("MoveDown() error = %v", err)
	}

	lessons := seq.Lessons()
	if lessons[0].ID != 2 || lessons[1].ID != 1 {
		t.Errorf("local order = [%d %d], want [2 1]", lessons[0].ID, lessons[1].ID)
	}

	// 服务端两条课时的 order 已互换
	stored := store.sorted()
	if stored[0].ID != 2 || stored[1].ID != 1 {
		t.Errorf("server order = [%d %d], want [2 1]", stored[0].ID, stored[1].ID)
	}

	// 一次 GET 加两次独立的 PUT
	wantRequests := []string{
		"GET /api/courses/1/lessons",
		"PUT /api/instructor/lessons/2",
		"PUT /api/instructor/lessons/1",
	}
	if len(backend.requests) != len(wantRequests) {
		t.Fatalf("requests = %v", backend.requests)
	}
	for i, want := range wantRequests {
		if backend.requests[i] != want {
			t.Errorf("requests[%d] = %q, want %q", i, backend.requests[i], want)
		}
	}
}

func TestSequencer_MoveUpAtTopIsNoop(t *testing.T) {
	store := newLessonStore(0, 1)
	backend := setupSequencerBackend(t, store)

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	before := len(backend.requests)
	if err := seq.MoveUp(t.Context(), 1); err != nil {
		t.Fatalf("MoveUp() error = %v", err)
	}
	if len(backend.requests) != before {
		t.Errorf("no-op move should not issue requests, got %v", backend.requests[before:])
	}
}

func TestSequencer_UnknownLessonRejectedLocally(t *testing.T) {
	store := newLessonStore(0, 1)
	backend := setupSequencerBackend(t, store)

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	before := len(backend.requests)
	err = seq.MoveDown(t.Context(), 99)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("MoveDown(99) = %v, want *ValidationError", err)
	}
	if len(backend.requests) != before {
		t.Errorf("rejected move should not issue requests, got %v", backend.requests[before:])
	}
}

func TestSequencer_FailedPersistRefetchesServerOrder(t *testing.T) {
	store := newLessonStore(0, 1)
	store.failPut[1] = true // 第二条 PUT（课时 1）会失败
	backend := setupSequencerBackend(t, store)

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	err = seq.MoveDown(t.Context(), 1)
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("MoveDown() = %v, want *BackendError", err)
	}

	// 本地顺序已回读服务端：课时 2 的 order 已写成 0，课时 1 仍是 0 之外的旧值
	lessons := seq.Lessons()
	if len(lessons) != 2 {
		t.Fatalf("lessons = %d, want 2", len(lessons))
	}
	stored := store.sorted()
	for i := range stored {
		if lessons[i].ID != stored[i].ID || lessons[i].Order != stored[i].Order {
			t.Errorf("local[%d] = %+v, server %+v", i, lessons[i], stored[i])
		}
	}
}

func TestSequencer_ReorderSwapsNonAdjacent(t *testing.T) {
	store := newLessonStore(0, 1, 2)
	backend := setupSequencerBackend(t, store)

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	// 首尾互换，中间项不动
	if err := seq.Reorder(t.Context(), 1, 3); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	lessons := seq.Lessons()
	if lessons[0].ID != 3 || lessons[1].ID != 2 || lessons[2].ID != 1 {
		t.Errorf("local order = [%d %d %d], want [3 2 1]", lessons[0].ID, lessons[1].ID, lessons[2].ID)
	}
	stored := store.sorted()
	if stored[0].ID != 3 || stored[1].ID != 2 || stored[2].ID != 1 {
		t.Errorf("server order = [%d %d %d], want [3 2 1]", stored[0].ID, stored[1].ID, stored[2].ID)
	}

	// 再换一次回到初始顺序
	if err := seq.Reorder(t.Context(), 1, 3); err != nil {
		t.Fatalf("second Reorder() error = %v", err)
	}
	lessons = seq.Lessons()
	if lessons[0].ID != 1 || lessons[1].ID != 2 || lessons[2].ID != 3 {
		t.Errorf("after double swap = [%d %d %d], want [1 2 3]", lessons[0].ID, lessons[1].ID, lessons[2].ID)
	}
}

func TestSequencer_ReorderSameLessonIsNoop(t *testing.T) {
	store := newLessonStore(0, 1)
	backend := setupSequencerBackend(t, store)

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	before := len(backend.requests)
	if err := seq.Reorder(t.Context(), 2, 2); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if len(backend.requests) != before {
		t.Errorf("self swap should not issue requests, got %v", backend.requests[before:])
	}
}

func TestSequencer_CreateLessonValidatesLocally(t *testing.T) {
	store := newLessonStore(0)
	backend := setupSequencerBackend(t, store)

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	before := len(backend.requests)
	_, err = seq.CreateLesson(t.Context(), LessonDraft{Description: "d"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("CreateLesson() = %v, want *ValidationError", err)
	}
	if len(backend.requests) != before {
		t.Errorf("invalid draft should not issue requests")
	}
}

func TestSequencer_CreateLessonAppends(t *testing.T) {
	store := newLessonStore(0, 1)
	backend := setupSequencerBackend(t, store)
	backend.handle("POST /api/instructor/courses/1/lessons", func(w http.ResponseWriter, r *http.Request) {
		var draft LessonDraft
		json.NewDecoder(r.Body).Decode(&draft)

		store.mu.Lock()
		defer store.mu.Unlock()
		id := uint(len(store.lessons) + 1)
		lesson := &Lesson{
			ID:          id,
			CourseID:    1,
			Title:       draft.Title,
			Description: draft.Description,
			Order:       len(store.lessons),
		}
		store.lessons[id] = lesson
		writeOK(w, lesson)
	})

	seq, err := backend.client().NewLessonSequencer(t.Context(), 1)
	if err != nil {
		t.Fatalf("NewLessonSequencer() error = %v", err)
	}

	lesson, err := seq.CreateLesson(t.Context(), LessonDraft{Title: "新课时", Description: "d"})
	if err != nil {
		t.Fatalf("CreateLesson() error = %v", err)
	}
	if lesson.Order != 2 {
		t.Errorf("Order = %d, want 2", lesson.Order)
	}
	if seq.Len() != 3 {
		t.Errorf("Len() = %d, want 3", seq.Len())
	}
}
