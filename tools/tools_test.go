package tools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Epistemic-Technology/pdfsplit/internal/config"
	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/pdf/pdftest"
	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

func newStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:", logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestToolDefinitions(t *testing.T) {
	for _, tool := range []struct {
		name string
		got  string
	}{
		{"pdf-split", PDFSplitTool().Name},
		{"pdf-merge", PDFMergeTool().Name},
		{"run-history", RunHistoryTool().Name},
	} {
		if tool.got != tool.name {
			t.Errorf("Tool name = %q, want %q", tool.got, tool.name)
		}
	}
}

func TestPDFSplitAndMergeToolHandlers(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newStore(t)
	ctx := context.Background()
	dir := t.TempDir()
	input := pdftest.WriteFile(t, dir, "paper.pdf", 5, 128)
	defaults := config.SplitConfig{DefaultOutputDir: filepath.Join(dir, "parts")}

	_, splitResp, err := PDFSplitToolHandler(ctx, nil, PDFSplitQuery{InputPath: input, PagesPerPart: 2}, store, defaults, log)
	if err != nil {
		t.Fatalf("PDFSplitToolHandler failed: %v", err)
	}
	if len(splitResp.Parts) != 3 || splitResp.TotalPages != 5 {
		t.Fatalf("Unexpected split response: %+v", splitResp)
	}
	if filepath.Dir(splitResp.Parts[0].Path) != defaults.DefaultOutputDir {
		t.Errorf("Part written to %s, want the configured directory", splitResp.Parts[0].Path)
	}
	if splitResp.RunID == "" {
		t.Error("Split run was not recorded")
	}

	var parts []string
	for _, p := range splitResp.Parts {
		parts = append(parts, p.Path)
	}
	_, mergeResp, err := PDFMergeToolHandler(ctx, nil, PDFMergeQuery{InputPaths: parts, OutputDir: dir}, store, log)
	if err != nil {
		t.Fatalf("PDFMergeToolHandler failed: %v", err)
	}
	if mergeResp.TotalPages != 5 {
		t.Errorf("Merged %d pages, want 5", mergeResp.TotalPages)
	}
	if filepath.Base(mergeResp.OutputPath) != "paper_part_1_merge.pdf" {
		t.Errorf("Unexpected merge output %s", mergeResp.OutputPath)
	}

	_, history, err := RunHistoryToolHandler(ctx, nil, RunHistoryQuery{}, store, log)
	if err != nil {
		t.Fatalf("RunHistoryToolHandler failed: %v", err)
	}
	if history.Count != 2 || history.Runs[0].Operation != "merge" {
		t.Errorf("Unexpected history: %+v", history)
	}
}

func TestPDFSplitToolHandler_Errors(t *testing.T) {
	log := logger.NewNoOpLogger()
	store := newStore(t)
	ctx := context.Background()

	_, _, err := PDFSplitToolHandler(ctx, nil, PDFSplitQuery{InputPath: "x.pdf", PagesPerPart: 2, MaxSizeMB: 1}, store, config.SplitConfig{}, log)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("Expected invalid argument for both policies, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	_, _, err = PDFSplitToolHandler(ctx, nil, PDFSplitQuery{InputPath: missing, PagesPerPart: 2}, store, config.SplitConfig{}, log)
	if !errors.Is(err, models.ErrSourceUnreadable) {
		t.Errorf("Expected source unreadable, got %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Success {
		t.Errorf("Expected one failed run recorded, got %+v", runs)
	}
}

func TestRunHistoryToolHandler_Disabled(t *testing.T) {
	_, _, err := RunHistoryToolHandler(context.Background(), nil, RunHistoryQuery{}, nil, logger.NewNoOpLogger())
	if err == nil {
		t.Error("Expected error without a store")
	}
}
