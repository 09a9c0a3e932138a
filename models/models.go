package models

import "time"

// PolicyKind selects how a document is partitioned
type PolicyKind string

const (
	PolicyPageCount PolicyKind = "pages"
	PolicyMaxSize   PolicyKind = "size"
)

// BytesPerMegabyte converts the megabyte figures users type into byte budgets
const BytesPerMegabyte = 1024 * 1024

type SplitPolicy struct {
	Kind     PolicyKind `json:"kind"`
	Pages    int        `json:"pages,omitempty"`
	MaxBytes int64      `json:"max_bytes,omitempty"`
}

// ByPageCount splits into chunks of n consecutive pages
func ByPageCount(n int) SplitPolicy {
	return SplitPolicy{Kind: PolicyPageCount, Pages: n}
}

// ByMaxSize splits into chunks whose serialized size stays within maxBytes
func ByMaxSize(maxBytes int64) SplitPolicy {
	return SplitPolicy{Kind: PolicyMaxSize, MaxBytes: maxBytes}
}

// ByMaxMegabytes accepts fractional megabytes, as typed on the command line
func ByMaxMegabytes(mb float64) SplitPolicy {
	return ByMaxSize(int64(mb * BytesPerMegabyte))
}

type SplitRequest struct {
	InputPath string      `json:"input_path"`
	OutputDir string      `json:"output_dir"`
	Policy    SplitPolicy `json:"policy"`
}

type MergeRequest struct {
	InputPaths []string `json:"input_paths"`
	OutputDir  string   `json:"output_dir"`
	OutputName string   `json:"output_name,omitempty"`
}

// Chunk is the half-open page range [Start, End) of a source document.
// Index is 1-based and matches the _part_ suffix of the written file.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Path  string `json:"path"`
	Size  int64  `json:"size"`
}

// Pages returns the number of pages in the chunk
func (c Chunk) Pages() int {
	return c.End - c.Start
}

type SplitResult struct {
	InputPath  string  `json:"input_path"`
	TotalPages int     `json:"total_pages"`
	Chunks     []Chunk `json:"chunks"`
	Message    string  `json:"message"`
}

type MergeResult struct {
	InputPaths []string `json:"input_paths"`
	OutputPath string   `json:"output_path"`
	TotalPages int      `json:"total_pages"`
	Size       int64    `json:"size"`
	Message    string   `json:"message"`
}

// OutputFile is a file written by a recorded run
type OutputFile struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Size  int64  `json:"size"`
}

// RunRecord describes a split or merge invocation kept in the history store
type RunRecord struct {
	RunID     string       `json:"run_id"`
	Operation string       `json:"operation"`
	Inputs    []string     `json:"inputs"`
	OutputDir string       `json:"output_dir"`
	Policy    string       `json:"policy,omitempty"`
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Outputs   []OutputFile `json:"outputs,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
