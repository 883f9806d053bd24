// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/launchgate/launchgate/pkg/handshake"
)

// refusalExitBase offsets refusal codes into the process exit status, so a
// refused launch exits with 10 + code.
const refusalExitBase = 10

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

func refusalExit(err *handshake.RefusalError) *ExitError {
	return &ExitError{Code: refusalExitBase + int(err.Code), Err: err}
}
