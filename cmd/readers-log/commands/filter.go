package commands

import (
	"fmt"
	"io"

	"github.com/mobile-access/readers-go/pkg/log"
)

// RunFilter copies matching events into a new log file and returns how
// many were written.
func RunFilter(path, output string, filter log.Filter) (int, error) {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}

	if _, failed := logger.Stats(); failed > 0 {
		return count - failed, fmt.Errorf("failed to write %d events", failed)
	}
	return count, nil
}
