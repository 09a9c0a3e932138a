package operations

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/pdf"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

// Merge concatenates the pages of req.InputPaths, in order, into one
// document. Every input is checked before anything is read or written, so
// a missing path leaves no output behind.
func Merge(req models.MergeRequest, progress ProgressFunc, log logger.Logger) (*models.MergeResult, error) {
	if len(req.InputPaths) == 0 {
		return nil, models.NewError(models.ErrEmptyInputSet, "", errors.New("no PDF files provided to merge"))
	}
	for _, path := range req.InputPaths {
		if err := checkSource(path); err != nil {
			log.Error("Merge input rejected: %v", err)
			return nil, err
		}
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(req.InputPaths[0])
	}
	if err := ensureOutputDir(outDir); err != nil {
		return nil, err
	}
	outPath := filepath.Join(outDir, MergeFileName(req.InputPaths[0], req.OutputName))

	merged := pdf.New()
	for i, path := range req.InputPaths {
		doc, err := pdf.Open(path)
		if err != nil {
			log.Error("Failed to open %s: %v", path, err)
			return nil, models.NewError(models.ErrSourceUnreadable, path, err)
		}
		merged.Extend(doc.Pages())
		log.Debug("Appended %s (%d pages), %d pages so far", path, doc.PageCount(), merged.PageCount())
		report(progress, i+1, len(req.InputPaths))
	}

	size, err := merged.SaveFile(outPath)
	if err != nil {
		log.Error("Failed to write %s: %v", outPath, err)
		return nil, models.NewError(models.ErrWriteFailure, outPath, err)
	}
	log.Info("Merged %d files into %s (%d pages, %s)", len(req.InputPaths), outPath, merged.PageCount(), FormatMegabytes(size))

	return &models.MergeResult{
		InputPaths: req.InputPaths,
		OutputPath: outPath,
		TotalPages: merged.PageCount(),
		Size:       size,
		Message:    fmt.Sprintf("PDF merge succeeded. Output file: %s (size: %s)", outPath, FormatMegabytes(size)),
	}, nil
}

func checkSource(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewError(models.ErrSourceMissing, path, nil)
	}
	if err != nil {
		return models.NewError(models.ErrSourceUnreadable, path, err)
	}
	if info.IsDir() {
		return models.NewError(models.ErrSourceUnreadable, path, errors.New("is a directory"))
	}
	return nil
}
