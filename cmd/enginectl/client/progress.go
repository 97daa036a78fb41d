// Package client - progress.go implements progress stream handling.
//
// Pull and build report progress as a stream of JSON records written back
// to back. The dispatcher repairs the stream into an array; this file walks
// the records, forwards them to a callback, and turns an error record into
// a Go error.
package client

import (
	"fmt"

	"github.com/tsingmao/enginectl/internal/api"
	"github.com/tsingmao/enginectl/internal/logger"
)

// ProgressFunc receives each record of a progress stream in order.
type ProgressFunc func(msg *api.ImageStatus)

// processProgress walks the decoded progress records.
//
// Parameters:
//   - op: Operation name used in error messages ("pull", "build")
//   - msgs: Records in stream order
//   - progress: Optional callback for each record
//
// Returns:
//   - The records up to and including the last one
//   - Error if the stream carries an error record; records after it are
//     not delivered
func processProgress(op string, msgs []api.ImageStatus, progress ProgressFunc) ([]api.ImageStatus, error) {
	for i := range msgs {
		msg := &msgs[i]
		if msg.Error != nil {
			logger.Error("%s failed: %s", op, msg.Error.Message)
			return msgs[:i], fmt.Errorf("%s failed: %w", op, msg.Error)
		}
		if msg.ErrorMessage != "" {
			logger.Error("%s failed: %s", op, msg.ErrorMessage)
			return msgs[:i], fmt.Errorf("%s failed: %s", op, msg.ErrorMessage)
		}
		if progress != nil {
			progress(msg)
		}
	}
	logger.Debug("%s stream finished after %d record(s)", op, len(msgs))
	return msgs, nil
}
