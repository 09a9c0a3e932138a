package operations

import (
	"context"
	"fmt"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/storage"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

// DescribePolicy renders a split policy for status lines and the history
func DescribePolicy(policy models.SplitPolicy) string {
	switch policy.Kind {
	case models.PolicyPageCount:
		return fmt.Sprintf("pages=%d", policy.Pages)
	case models.PolicyMaxSize:
		return fmt.Sprintf("max_size=%s", FormatMegabytes(policy.MaxBytes))
	default:
		return string(policy.Kind)
	}
}

// SplitRecord describes a finished split. result may be partial or nil when err is set.
func SplitRecord(req models.SplitRequest, result *models.SplitResult, err error) *models.RunRecord {
	run := &models.RunRecord{
		Operation: "split",
		Inputs:    []string{req.InputPath},
		OutputDir: req.OutputDir,
		Policy:    DescribePolicy(req.Policy),
		Success:   err == nil,
	}
	if result != nil {
		run.Message = result.Message
		for _, c := range result.Chunks {
			run.Outputs = append(run.Outputs, models.OutputFile{Path: c.Path, Pages: c.Pages(), Size: c.Size})
		}
	}
	if err != nil {
		run.Message = err.Error()
	}
	return run
}

// MergeRecord describes a finished merge
func MergeRecord(req models.MergeRequest, result *models.MergeResult, err error) *models.RunRecord {
	run := &models.RunRecord{
		Operation: "merge",
		Inputs:    req.InputPaths,
		OutputDir: req.OutputDir,
		Success:   err == nil,
	}
	if result != nil {
		run.Message = result.Message
		run.Outputs = []models.OutputFile{{Path: result.OutputPath, Pages: result.TotalPages, Size: result.Size}}
	}
	if err != nil {
		run.Message = err.Error()
	}
	return run
}

// RecordRun stores run when a store is configured. History is advisory, so
// a failure to record is logged and never fails the operation itself.
func RecordRun(ctx context.Context, store storage.Store, run *models.RunRecord, log logger.Logger) string {
	if store == nil {
		return ""
	}
	runID, err := store.RecordRun(ctx, run)
	if err != nil {
		log.Warn("Failed to record %s run: %v", run.Operation, err)
		return ""
	}
	return runID
}
