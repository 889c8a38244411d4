package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Entry is one decoded line of a JSON log.
type Entry struct {
	Level   string
	Message string
	Session string
	Fields  map[string]interface{}
}

// String returns field key as a string, or "" if it's missing.
func (e *Entry) String(key string) string {
	v, ok := e.Fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var fields map[string]interface{}
		if err := decoder.Decode(&fields); err != nil {
			return err
		}

		le := &Entry{Fields: fields}
		le.Level = le.String(LevelKey)
		le.Message = le.String(MessageKey)
		le.Session = le.String(SessionKey)
		handler(le)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int        `json:"log_entries"`
	Sessions   StrCounter `json:"sessions"`
	Levels     StrCounter `json:"levels"`
	Events     StrCounter `json:"events"`

	Pipelines  PipelineReport `json:"pipeline_report"`
	Background JobReport      `json:"background_report"`
	Failures   *PathCounter   `json:"failures"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		Failures: NewPathCounter("event", "error"),
	}
}

// Update adds an entry to the report.
func (r *Report) Update(le *Entry) {
	r.LogEntries++
	if le.Session != "" {
		r.Sessions.Increment(le.Session)
	}
	r.Levels.Increment(le.Level)
	r.Events.Increment(le.Message)

	switch le.Message {
	case "pipeline start":
		r.Pipelines.update(le)
	case "stage launched":
		r.Pipelines.Kinds.Increment(le.String("kind"))
	case "background job started":
		r.Background.Started++
	case "background job complete":
		r.Background.Completed++
		r.Background.Statuses.Increment(le.String("status"))
	case "signal sent":
		r.Background.Signals.Increment(le.String("signal"))
	}

	if le.Level == "warn" || le.Level == "error" {
		r.Failures.Increment(le.Message, le.String("error"))
	}
}

type PipelineReport struct {
	Count    int        `json:"count"`
	Commands StrCounter `json:"commands"`
	Kinds    StrCounter `json:"stage_kinds"`
	Stages   StrCounter `json:"stage_counts"`
}

func (r *PipelineReport) update(le *Entry) {
	r.Count++
	r.Commands.Increment(le.String("cmd"))
	r.Stages.Increment(le.String("stages"))
}

type JobReport struct {
	Started   int        `json:"started"`
	Completed int        `json:"completed"`
	Statuses  StrCounter `json:"exit_statuses"`
	Signals   StrCounter `json:"signals"`
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implements a custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
