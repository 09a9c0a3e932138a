package models

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid argument", NewError(ErrInvalidArgument, "pages", errors.New("must be positive")), ErrInvalidArgument},
		{"missing source", NewError(ErrSourceMissing, "a.pdf", nil), ErrSourceMissing},
		{"wrapped twice", fmt.Errorf("split: %w", NewError(ErrWriteFailure, "out/a_part_1.pdf", fs.ErrPermission)), ErrWriteFailure},
		{"bare sentinel", ErrEmptyInputSet, ErrEmptyInputSet},
		{"foreign error", errors.New("boom"), nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOperationError(t *testing.T) {
	err := NewError(ErrSourceUnreadable, "scan.pdf", fs.ErrPermission)
	if got, want := err.Error(), "source unreadable: scan.pdf: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("Cause should stay reachable through errors.Is")
	}
	if errors.Is(err, ErrWriteFailure) {
		t.Error("Error should not match other kinds")
	}
}
