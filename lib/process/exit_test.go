// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantOutput string
	}{
		{"plain", errors.New("socket busy"), 1, "error: socket busy\n"},
		{"exit code", fmt.Errorf("status: %w", &ExitError{Code: 3, Err: errors.New("not running")}), 3, "error: status: not running\n"},
		{"silent", &ExitError{Code: 2}, 2, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var output bytes.Buffer
			if code := report(&output, test.err); code != test.wantCode {
				t.Errorf("code = %d, want %d", code, test.wantCode)
			}
			if output.String() != test.wantOutput {
				t.Errorf("output = %q, want %q", output.String(), test.wantOutput)
			}
		})
	}
}
