package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/restalytics/restalytics/internal/models"
)

// ErrInvalidInputFormat marks a payload that cannot be parsed as structured
// data at all. Callers treat it as "no metrics available", never as a partial
// dataset.
var ErrInvalidInputFormat = errors.New("invalid order log format")

// ParseOrderLog parses the persisted order payload. A missing restaurant or
// orders section is not an error: the result defaults to an empty name and an
// empty order slice.
func ParseOrderLog(payload []byte) (*models.OrderLog, error) {
	var log models.OrderLog
	if err := json.Unmarshal(payload, &log); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputFormat, err)
	}
	if log.Orders == nil {
		log.Orders = []models.Order{}
	}
	return &log, nil
}

// FileStore reads the order log from a JSON file on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*models.OrderLog, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order log %s: %w", s.path, err)
	}
	return ParseOrderLog(payload)
}
