package operations

import (
	"errors"
	"testing"

	"github.com/Epistemic-Technology/pdfsplit/models"
)

func TestSelectPolicy(t *testing.T) {
	tests := []struct {
		name     string
		pages    int
		mb       float64
		expected models.SplitPolicy
		wantErr  bool
	}{
		{"pages", 4, 0, models.ByPageCount(4), false},
		{"whole megabytes", 0, 5, models.ByMaxSize(5 * models.BytesPerMegabyte), false},
		{"fractional megabytes", 0, 0.5, models.ByMaxSize(512 * 1024), false},
		{"both", 4, 5, models.SplitPolicy{}, true},
		{"neither", 0, 0, models.SplitPolicy{}, true},
		{"negative pages", -1, 0, models.SplitPolicy{}, true},
		{"negative size", 0, -2, models.SplitPolicy{}, true},
		{"size rounds to zero bytes", 0, 1e-9, models.SplitPolicy{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectPolicy(tt.pages, tt.mb)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidArgument) {
					t.Errorf("Expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectPolicy failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("SelectPolicy() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}
