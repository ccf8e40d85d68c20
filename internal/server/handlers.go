package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/sadopc/campustasks/internal/assistant"
	"github.com/sadopc/campustasks/internal/store"
	"github.com/sadopc/campustasks/internal/task"
)

const maxLimit = 1000

type listResponse struct {
	Success bool        `json:"success"`
	Data    []task.Task `json:"data"`
	Total   int         `json:"total"`
	Message string      `json:"message"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := task.ParseQuery(q, s.now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	limit, offset, err := parsePaging(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	tasks, ok := s.loadTasks(w, r)
	if !ok {
		return
	}
	matched := task.Filter(tasks, c, s.now())
	total := len(matched)

	page := matched[min(offset, total):]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Data:    page,
		Total:   total,
		Message: fmt.Sprintf("找到 %d 个任务", total),
	})
}

type optionsResponse struct {
	Categories   []string `json:"categories"`
	Difficulties []string `json:"difficulties"`
	Statuses     []string `json:"statuses"`
	Courses      []string `json:"courses"`
	Ranges       []string `json:"ranges"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	tasks, ok := s.loadTasks(w, r)
	if !ok {
		return
	}
	ranges := make([]string, 0, len(task.Ranges()))
	for _, tr := range task.Ranges() {
		ranges = append(ranges, string(tr))
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		Categories:   nonNil(task.UniqueValues(tasks, task.FieldCategory)),
		Difficulties: nonNil(task.UniqueValues(tasks, task.FieldDifficulty)),
		Statuses:     nonNil(task.UniqueValues(tasks, task.FieldStatus)),
		Courses:      nonNil(task.Courses(tasks)),
		Ranges:       ranges,
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": t})
}

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "request body must be JSON with a question")
		return
	}
	if err := assistant.ValidateQuestion(req.Question); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	catalog, ok := s.loadTasks(w, r)
	if !ok {
		return
	}
	reply := s.canned.Reply(assistant.Question{Task: *t, Text: req.Question, Catalog: catalog})
	writeJSON(w, http.StatusOK, reply)
}

// StatsSummary counts tasks per enumerated value.
type StatsSummary struct {
	Total        int            `json:"total"`
	ByCategory   map[string]int `json:"by_category"`
	ByDifficulty map[string]int `json:"by_difficulty"`
	ByStatus     map[string]int `json:"by_status"`
	WithCourse   int            `json:"with_course"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c, err := task.ParseQuery(r.URL.Query(), s.now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	tasks, ok := s.loadTasks(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Stats(task.Filter(tasks, c, s.now())))
}

// Stats tallies tasks by each enumerated field.
func Stats(tasks []task.Task) StatsSummary {
	st := StatsSummary{
		Total:        len(tasks),
		ByCategory:   make(map[string]int),
		ByDifficulty: make(map[string]int),
		ByStatus:     make(map[string]int),
	}
	for _, t := range tasks {
		st.ByCategory[string(t.Category)]++
		st.ByDifficulty[string(t.Difficulty)]++
		st.ByStatus[string(t.Status)]++
		if t.CourseName() != "" {
			st.WithCourse++
		}
	}
	return st
}

func (s *Server) loadTasks(w http.ResponseWriter, r *http.Request) ([]task.Task, bool) {
	tasks, err := s.catalog.ListTasks()
	if err != nil {
		s.logger.Error("list tasks", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load tasks")
		return nil, false
	}
	return tasks, true
}

func (s *Server) lookupTask(w http.ResponseWriter, r *http.Request) (*task.Task, bool) {
	id := r.PathValue("id")
	t, err := s.catalog.GetTask(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("task %q not found", id))
		return nil, false
	}
	if err != nil {
		s.logger.Error("get task", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load task")
		return nil, false
	}
	return t, true
}

func parsePaging(q url.Values) (limit, offset int, err error) {
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 || limit > maxLimit {
			return 0, 0, fmt.Errorf("limit must be between 0 and %d", maxLimit)
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
