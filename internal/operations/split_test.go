package operations

import (
	"errors"
	"math/bits"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

// fakeRanger sizes a range as overhead plus the sum of its page sizes,
// unless sizeFn overrides it.
type fakeRanger struct {
	pageSizes []int64
	overhead  int64
	sizeFn    func(start, end int) int64
	failWrite int // 1-based write number that fails, 0 for never

	sizeCalls int
	writes    [][2]int
	paths     []string
}

func (f *fakeRanger) PageCount() int {
	return len(f.pageSizes)
}

func (f *fakeRanger) size(start, end int) int64 {
	if f.sizeFn != nil {
		return f.sizeFn(start, end)
	}
	total := f.overhead
	for _, s := range f.pageSizes[start:end] {
		total += s
	}
	return total
}

func (f *fakeRanger) SizeOf(start, end int) (int64, error) {
	f.sizeCalls++
	return f.size(start, end), nil
}

func (f *fakeRanger) WriteRange(start, end int, path string) (int64, error) {
	if f.failWrite > 0 && len(f.writes)+1 == f.failWrite {
		return 0, errors.New("disk full")
	}
	f.writes = append(f.writes, [2]int{start, end})
	f.paths = append(f.paths, path)
	return f.size(start, end), nil
}

func uniformPages(n int, size int64) []int64 {
	pages := make([]int64, n)
	for i := range pages {
		pages[i] = size
	}
	return pages
}

func assertPartition(t *testing.T, chunks []models.Chunk, total int) {
	t.Helper()
	next := 0
	for i, c := range chunks {
		if c.Index != i+1 {
			t.Errorf("Chunk %d has index %d", i, c.Index)
		}
		if c.Start != next {
			t.Errorf("Chunk %d starts at %d, expected %d", c.Index, c.Start, next)
		}
		if c.End <= c.Start {
			t.Errorf("Chunk %d is empty: [%d, %d)", c.Index, c.Start, c.End)
		}
		next = c.End
	}
	if next != total {
		t.Errorf("Chunks cover [0, %d), expected [0, %d)", next, total)
	}
}

func TestSplitByPageCount_TenPagesByFour(t *testing.T) {
	src := &fakeRanger{pageSizes: uniformPages(10, 100)}
	result, err := splitByPageCount(src, "/in/report.pdf", "/out", 4, nil, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("splitByPageCount failed: %v", err)
	}

	expected := []models.Chunk{
		{Index: 1, Start: 0, End: 4, Path: filepath.Join("/out", "report_part_1.pdf")},
		{Index: 2, Start: 4, End: 8, Path: filepath.Join("/out", "report_part_2.pdf")},
		{Index: 3, Start: 8, End: 10, Path: filepath.Join("/out", "report_part_3.pdf")},
	}
	if len(result.Chunks) != len(expected) {
		t.Fatalf("Expected %d chunks, got %d", len(expected), len(result.Chunks))
	}
	for i, want := range expected {
		got := result.Chunks[i]
		if got.Index != want.Index || got.Start != want.Start || got.End != want.End || got.Path != want.Path {
			t.Errorf("Chunk %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestSplitByPageCount_ChunkCountProperty(t *testing.T) {
	log := logger.NewNoOpLogger()
	for total := 0; total <= 13; total++ {
		for n := 1; n <= 5; n++ {
			src := &fakeRanger{pageSizes: uniformPages(total, 10)}
			result, err := splitByPageCount(src, "doc.pdf", "out", n, nil, log)
			if err != nil {
				t.Fatalf("P=%d n=%d: %v", total, n, err)
			}
			want := (total + n - 1) / n
			if len(result.Chunks) != want {
				t.Errorf("P=%d n=%d: got %d chunks, want %d", total, n, len(result.Chunks), want)
			}
			assertPartition(t, result.Chunks, total)
		}
	}
}

func TestSplitByPageCount_Progress(t *testing.T) {
	src := &fakeRanger{pageSizes: uniformPages(10, 1)}
	var seen []float64
	_, err := splitByPageCount(src, "doc.pdf", "out", 4, func(p float64) { seen = append(seen, p) }, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("splitByPageCount failed: %v", err)
	}
	expected := []float64{40, 80, 100}
	if len(seen) != len(expected) {
		t.Fatalf("Progress calls = %v, want %v", seen, expected)
	}
	for i := range expected {
		if seen[i] != expected[i] {
			t.Errorf("Progress[%d] = %v, want %v", i, seen[i], expected[i])
		}
	}
}

func TestSplitByPageCount_PartialWriteFailure(t *testing.T) {
	src := &fakeRanger{pageSizes: uniformPages(10, 1), failWrite: 3}
	result, err := splitByPageCount(src, "doc.pdf", "out", 2, nil, logger.NewNoOpLogger())
	if !errors.Is(err, models.ErrWriteFailure) {
		t.Fatalf("Expected write failure, got %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Errorf("Expected the 2 chunks written before the failure, got %d", len(result.Chunks))
	}
}

func TestSplitBySize_TwoMegabytePages(t *testing.T) {
	const mb = models.BytesPerMegabyte
	src := &fakeRanger{pageSizes: uniformPages(5, 2*mb)}

	var seen []float64
	result, err := splitBySize(src, "big.pdf", "out", 5*mb, func(p float64) { seen = append(seen, p) }, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("splitBySize failed: %v", err)
	}

	wantPages := []int{2, 2, 1}
	if len(result.Chunks) != len(wantPages) {
		t.Fatalf("Expected %d chunks, got %d", len(wantPages), len(result.Chunks))
	}
	for i, want := range wantPages {
		if got := result.Chunks[i].Pages(); got != want {
			t.Errorf("Chunk %d has %d pages, want %d", i+1, got, want)
		}
	}
	assertPartition(t, result.Chunks, 5)

	if seen[len(seen)-1] != 100 {
		t.Errorf("Final progress = %v, want 100", seen[len(seen)-1])
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Errorf("Progress decreased: %v", seen)
		}
	}
}

func TestSplitBySize_OversizedPage(t *testing.T) {
	src := &fakeRanger{pageSizes: []int64{100, 900, 100, 100}}
	result, err := splitBySize(src, "doc.pdf", "out", 300, nil, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("splitBySize failed: %v", err)
	}
	wantRanges := [][2]int{{0, 1}, {1, 2}, {2, 4}}
	if len(result.Chunks) != len(wantRanges) {
		t.Fatalf("Expected %d chunks, got %+v", len(wantRanges), result.Chunks)
	}
	for i, r := range wantRanges {
		c := result.Chunks[i]
		if c.Start != r[0] || c.End != r[1] {
			t.Errorf("Chunk %d = [%d, %d), want [%d, %d)", i+1, c.Start, c.End, r[0], r[1])
		}
	}
}

func TestSplitBySize_EmptyDocument(t *testing.T) {
	src := &fakeRanger{}
	result, err := splitBySize(src, "empty.pdf", "out", 100, nil, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("splitBySize failed: %v", err)
	}
	if len(result.Chunks) != 0 || len(src.writes) != 0 || src.sizeCalls != 0 {
		t.Errorf("Expected no work for an empty document, got %d chunks, %d writes, %d size measurements",
			len(result.Chunks), len(src.writes), src.sizeCalls)
	}
}

func TestSplitBySize_PartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	log := logger.NewNoOpLogger()

	for trial := 0; trial < 200; trial++ {
		total := 1 + rng.Intn(40)
		pages := make([]int64, total)
		for i := range pages {
			pages[i] = 1 + rng.Int63n(500)
		}
		maxBytes := 1 + rng.Int63n(2000)
		src := &fakeRanger{pageSizes: pages, overhead: rng.Int63n(50)}

		result, err := splitBySize(src, "doc.pdf", "out", maxBytes, nil, log)
		if err != nil {
			t.Fatalf("Trial %d: %v", trial, err)
		}
		assertPartition(t, result.Chunks, total)

		for _, c := range result.Chunks {
			if c.Size > maxBytes && c.Pages() != 1 {
				t.Errorf("Trial %d: chunk %d has %d pages and %d bytes, over %d", trial, c.Index, c.Pages(), c.Size, maxBytes)
			}
			// Maximality: one more page would not have fit
			if c.End < total && c.Size <= maxBytes && src.size(c.Start, c.End+1) <= maxBytes {
				t.Errorf("Trial %d: chunk %d stopped at %d although page %d fits", trial, c.Index, c.End, c.End+1)
			}
		}

		// Binary search bound: at most floor(log2 P)+1 size measurements per chunk
		limit := len(result.Chunks) * (bits.Len(uint(total)) + 1)
		if src.sizeCalls > limit {
			t.Errorf("Trial %d: %d size measurements for %d chunks of a %d-page document", trial, src.sizeCalls, len(result.Chunks), total)
		}
	}
}

func TestSplitBySize_NonMonotonicSizes(t *testing.T) {
	// Size alternates with range parity, so the monotonic assumption fails
	src := &fakeRanger{
		pageSizes: uniformPages(9, 0),
		sizeFn: func(start, end int) int64 {
			if (end-start)%2 == 0 {
				return 1000
			}
			return 10
		},
	}
	result, err := splitBySize(src, "odd.pdf", "out", 100, nil, logger.NewNoOpLogger())
	if err != nil {
		t.Fatalf("splitBySize failed: %v", err)
	}
	assertPartition(t, result.Chunks, 9)
}

func TestSplitBySize_SizingFailure(t *testing.T) {
	src := &failingSizer{fakeRanger{pageSizes: uniformPages(3, 10)}}
	_, err := splitBySize(src, "doc.pdf", "out", 100, nil, logger.NewNoOpLogger())
	if !errors.Is(err, models.ErrWriteFailure) {
		t.Errorf("Expected write failure, got %v", err)
	}
}

type failingSizer struct {
	fakeRanger
}

func (f *failingSizer) SizeOf(start, end int) (int64, error) {
	return 0, errors.New("serialization failed")
}

func TestSplit_InvalidArguments(t *testing.T) {
	log := logger.NewNoOpLogger()
	tests := []struct {
		name   string
		policy models.SplitPolicy
	}{
		{"zero pages", models.ByPageCount(0)},
		{"negative pages", models.ByPageCount(-3)},
		{"zero size", models.ByMaxSize(0)},
		{"negative size", models.ByMaxMegabytes(-1.5)},
		{"unknown policy", models.SplitPolicy{Kind: "chapters"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(models.SplitRequest{InputPath: "whatever.pdf", Policy: tt.policy}, nil, log)
			if !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("Expected invalid argument, got %v", err)
			}
		})
	}
}
