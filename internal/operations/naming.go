package operations

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Epistemic-Technology/pdfsplit/models"
)

const (
	partSuffix  = "_part_"
	mergeSuffix = "_merge"
	pdfExt      = ".pdf"
)

// baseName strips the directory and the last extension from path
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PartFileName returns the name of the index-th (1-based) split output,
// e.g. report_part_3.pdf for report.pdf.
func PartFileName(inputPath string, index int) string {
	return fmt.Sprintf("%s%s%d%s", baseName(inputPath), partSuffix, index, pdfExt)
}

// MergeFileName returns the explicit name if given, otherwise
// {first input base name}_merge.pdf.
func MergeFileName(firstInput, explicit string) string {
	if explicit == "" {
		return baseName(firstInput) + mergeSuffix + pdfExt
	}
	if !strings.EqualFold(filepath.Ext(explicit), pdfExt) {
		return explicit + pdfExt
	}
	return explicit
}

// FormatMegabytes renders a byte count the way status lines show it
func FormatMegabytes(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/models.BytesPerMegabyte)
}
