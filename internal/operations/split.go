package operations

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/internal/pdf"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

// pageRanger is what the splitters need from a source document
type pageRanger interface {
	PageCount() int
	// SizeOf serializes pages [start, end) in memory and returns the byte count
	SizeOf(start, end int) (int64, error)
	// WriteRange serializes pages [start, end) to path and returns the byte count
	WriteRange(start, end int, path string) (int64, error)
}

type documentRanger struct {
	doc *pdf.Document
}

func (r documentRanger) PageCount() int {
	return r.doc.PageCount()
}

func (r documentRanger) SizeOf(start, end int) (int64, error) {
	part, err := r.doc.Slice(start, end)
	if err != nil {
		return 0, err
	}
	return part.Size()
}

func (r documentRanger) WriteRange(start, end int, path string) (int64, error) {
	part, err := r.doc.Slice(start, end)
	if err != nil {
		return 0, err
	}
	return part.SaveFile(path)
}

// Split dispatches on the request's policy
func Split(req models.SplitRequest, progress ProgressFunc, log logger.Logger) (*models.SplitResult, error) {
	switch req.Policy.Kind {
	case models.PolicyPageCount:
		return SplitByPageCount(req, progress, log)
	case models.PolicyMaxSize:
		return SplitBySize(req, progress, log)
	default:
		return nil, models.NewError(models.ErrInvalidArgument, "policy", fmt.Errorf("unknown split policy %q", req.Policy.Kind))
	}
}

// SplitByPageCount writes consecutive runs of req.Policy.Pages pages to
// {base}_part_{k}.pdf. Outputs written before a failure are left on disk
// and listed in the returned result.
func SplitByPageCount(req models.SplitRequest, progress ProgressFunc, log logger.Logger) (*models.SplitResult, error) {
	n := req.Policy.Pages
	if n <= 0 {
		return nil, models.NewError(models.ErrInvalidArgument, "pages", fmt.Errorf("pages per part must be a positive integer, got %d", n))
	}
	src, outDir, err := prepareSplit(req, log)
	if err != nil {
		return nil, err
	}
	return splitByPageCount(src, req.InputPath, outDir, n, progress, log)
}

// SplitBySize writes chunks whose serialized size stays within
// req.Policy.MaxBytes. A page that alone exceeds the budget becomes its
// own chunk.
func SplitBySize(req models.SplitRequest, progress ProgressFunc, log logger.Logger) (*models.SplitResult, error) {
	maxBytes := req.Policy.MaxBytes
	if maxBytes <= 0 {
		return nil, models.NewError(models.ErrInvalidArgument, "max size", fmt.Errorf("maximum size must be positive, got %d bytes", maxBytes))
	}
	src, outDir, err := prepareSplit(req, log)
	if err != nil {
		return nil, err
	}
	return splitBySize(src, req.InputPath, outDir, maxBytes, progress, log)
}

func prepareSplit(req models.SplitRequest, log logger.Logger) (pageRanger, string, error) {
	doc, err := pdf.Open(req.InputPath)
	if err != nil {
		log.Error("Failed to open %s: %v", req.InputPath, err)
		return nil, "", models.NewError(models.ErrSourceUnreadable, req.InputPath, err)
	}
	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(req.InputPath)
	}
	if err := ensureOutputDir(outDir); err != nil {
		return nil, "", err
	}
	log.Info("Splitting %s (%d pages) into %s", req.InputPath, doc.PageCount(), outDir)
	return documentRanger{doc: doc}, outDir, nil
}

func ensureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return models.NewError(models.ErrWriteFailure, dir, err)
	}
	return nil
}

func splitByPageCount(src pageRanger, inputPath, outDir string, n int, progress ProgressFunc, log logger.Logger) (*models.SplitResult, error) {
	total := src.PageCount()
	result := &models.SplitResult{InputPath: inputPath, TotalPages: total}

	for start, index := 0, 1; start < total; start, index = start+n, index+1 {
		end := min(start+n, total)
		chunk, err := writeChunk(src, inputPath, outDir, index, start, end, log)
		if err != nil {
			return result, err
		}
		result.Chunks = append(result.Chunks, chunk)
		report(progress, end, total)
	}

	result.Message = splitMessage(result)
	return result, nil
}

func splitBySize(src pageRanger, inputPath, outDir string, maxBytes int64, progress ProgressFunc, log logger.Logger) (*models.SplitResult, error) {
	total := src.PageCount()
	result := &models.SplitResult{InputPath: inputPath, TotalPages: total}

	if total == 0 {
		log.Info("%s has no pages, nothing to split", inputPath)
		result.Message = splitMessage(result)
		return result, nil
	}

	for current, index := 0, 1; current < total; index++ {
		best, err := nextSizeBoundary(src, current, maxBytes, log)
		if err != nil {
			return result, err
		}
		chunk, err := writeChunk(src, inputPath, outDir, index, current, best, log)
		if err != nil {
			return result, err
		}
		if chunk.Size > maxBytes {
			log.Warn("Part %d (%d pages) is %s, over the %s limit", index, chunk.Pages(),
				humanize.IBytes(uint64(chunk.Size)), humanize.IBytes(uint64(maxBytes)))
		}
		result.Chunks = append(result.Chunks, chunk)
		report(progress, best, total)
		current = best
	}

	result.Message = splitMessage(result)
	return result, nil
}

// nextSizeBoundary returns the largest end such that [current, end)
// serializes within maxBytes, assuming size never shrinks as pages are
// added. The result is at least current+1 so the caller always advances,
// even when one page alone is over budget or the assumption fails.
func nextSizeBoundary(src pageRanger, current int, maxBytes int64, log logger.Logger) (int, error) {
	low, high := current+1, src.PageCount()
	best := current + 1

	for low <= high {
		mid := (low + high) / 2
		size, err := src.SizeOf(current, mid)
		if err != nil {
			return 0, models.NewError(models.ErrWriteFailure, fmt.Sprintf("pages %d-%d", current+1, mid), err)
		}
		log.Debug("Pages %d-%d measure %s", current+1, mid, humanize.IBytes(uint64(size)))
		if size <= maxBytes {
			best = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return best, nil
}

func writeChunk(src pageRanger, inputPath, outDir string, index, start, end int, log logger.Logger) (models.Chunk, error) {
	path := filepath.Join(outDir, PartFileName(inputPath, index))
	size, err := src.WriteRange(start, end, path)
	if err != nil {
		log.Error("Failed to write %s: %v", path, err)
		return models.Chunk{}, models.NewError(models.ErrWriteFailure, path, err)
	}
	log.Info("Generated %s (pages %d-%d, %s)", path, start+1, end, FormatMegabytes(size))
	return models.Chunk{Index: index, Start: start, End: end, Path: path, Size: size}, nil
}

func splitMessage(result *models.SplitResult) string {
	return fmt.Sprintf("PDF split succeeded: %d pages into %d parts", result.TotalPages, len(result.Chunks))
}
