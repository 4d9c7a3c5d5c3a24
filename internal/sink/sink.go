package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

// MetricsSink receives serialized metrics snapshots for hand-off to whatever
// is listening: a file, a Kafka topic, or stdout.
type MetricsSink interface {
	WriteSnapshot(topic string, snapshot []byte) error
	Close() error
}

// ConsoleSink prints snapshots to stdout.
type ConsoleSink struct{}

func (c *ConsoleSink) WriteSnapshot(topic string, snapshot []byte) error {
	_, err := fmt.Printf("%s: %s\n", topic, snapshot)
	return err
}

func (c *ConsoleSink) Close() error {
	return nil
}

// JSONFileSink appends one snapshot per line to a file per topic.
type JSONFileSink struct {
	basePath string
	files    map[string]*os.File
}

func NewJSONFileSink(basePath string) *JSONFileSink {
	return &JSONFileSink{
		basePath: basePath,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONFileSink) WriteSnapshot(topic string, snapshot []byte) error {
	file, ok := j.files[topic]
	if !ok {
		if err := os.MkdirAll(j.basePath, 0o755); err != nil {
			return err
		}
		var err error
		file, err = os.OpenFile(
			filepath.Join(j.basePath, topic+".jsonl"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0o644,
		)
		if err != nil {
			return err
		}
		j.files[topic] = file
	}

	if _, err := file.Write(append(snapshot, '\n')); err != nil {
		return fmt.Errorf("failed to append snapshot to %s: %w", topic, err)
	}
	return nil
}

// Close closes every open topic file. All files are closed even when one
// fails; the first error wins.
func (j *JSONFileSink) Close() error {
	var firstErr error
	for topic, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %s sink: %w", topic, err)
		}
	}
	j.files = make(map[string]*os.File)
	return firstErr
}
