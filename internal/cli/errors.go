package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/oas2types/internal/errs"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// contractError turns load failures into usage errors naming the source.
func contractError(err error, source string) error {
	var ge *errs.Error
	if !errors.As(err, &ge) {
		return err
	}
	msg := fmt.Sprintf("contract: %s", ge.Error())
	if source != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, source)
	}
	return newUsageError(msg)
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "was not generated") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}
