// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{syscall.ENOSPC, true},
		{syscall.EMFILE, true},
		{syscall.ENFILE, true},
		{fmt.Errorf("inotify: %w", syscall.ENOSPC), true},
		{syscall.EACCES, false},
		{errors.New("queue overflow"), false},
	}

	for _, tt := range tests {
		if got := isFatal(tt.err); got != tt.want {
			t.Errorf("isFatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
