package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tradeGuard/internal/model"
)

// JsonlStorage appends decisions and rejections to two JSONL files. Both
// stay open and buffered until Close.
type JsonlStorage struct {
	mu         sync.Mutex
	decisions  *jsonlStream
	rejections *jsonlStream
}

type jsonlStream struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJsonlStorage opens (creating if needed) both output files in append mode.
func NewJsonlStorage(decisionsPath, rejectionsPath string) (*JsonlStorage, error) {
	decisions, err := openStream(decisionsPath)
	if err != nil {
		return nil, fmt.Errorf("decisions: %w", err)
	}
	rejections, err := openStream(rejectionsPath)
	if err != nil {
		decisions.file.Close()
		return nil, fmt.Errorf("rejections: %w", err)
	}
	return &JsonlStorage{decisions: decisions, rejections: rejections}, nil
}

func openStream(path string) (*jsonlStream, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	buf := bufio.NewWriter(file)
	return &jsonlStream{file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// PutDecisionBatch writes the batch and flushes the decisions file.
func (s *JsonlStorage) PutDecisionBatch(decisions []model.Decision) error {
	if len(decisions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, decision := range decisions {
		if err := s.decisions.enc.Encode(decision); err != nil {
			return fmt.Errorf("write decision %s: %w", decision.ID, err)
		}
	}
	if err := s.decisions.buf.Flush(); err != nil {
		return fmt.Errorf("flush decisions: %w", err)
	}
	return nil
}

// PutRejection buffers one rejection; it reaches disk on Close or when
// the buffer fills.
func (s *JsonlStorage) PutRejection(rejection model.Rejection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rejections.enc.Encode(rejection); err != nil {
		return fmt.Errorf("write rejection %s: %w", rejection.ID, err)
	}
	return nil
}

// Close flushes and closes both files.
func (s *JsonlStorage) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Join(s.decisions.close(), s.rejections.close())
}

func (st *jsonlStream) close() error {
	if st == nil || st.file == nil {
		return nil
	}
	flushErr := st.buf.Flush()
	closeErr := st.file.Close()
	st.file = nil
	return errors.Join(flushErr, closeErr)
}
