package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrNoPages = errors.New("document has no pages")

func init() {
	// Keep pdfcpu from creating a config directory under the user's home.
	api.DisableConfigDir()
}

// Page is a reference to a page inside the pdfcpu context it was read from.
// Pages are never copied; a document holding a Page serializes it by
// extracting it from its source context.
type Page struct {
	src *model.Context
	nr  int
}

// Number returns the 1-based page number within the source document
func (p Page) Number() int {
	return p.nr
}

// Document is an ordered list of page references
type Document struct {
	conf  *model.Configuration
	pages []Page
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// New returns an empty document
func New() *Document {
	return &Document{conf: newConfiguration()}
}

// Open reads, validates and optimizes the PDF at path
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenBytes(data)
}

// OpenBytes parses an in-memory PDF
func OpenBytes(data []byte) (*Document, error) {
	if !IsPDF(data) {
		return nil, errors.New("missing %PDF header")
	}
	conf := newConfiguration()
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	doc := &Document{conf: conf, pages: make([]Page, 0, pdfContext.PageCount)}
	for pageNum := 1; pageNum <= pdfContext.PageCount; pageNum++ {
		doc.pages = append(doc.pages, Page{src: pdfContext, nr: pageNum})
	}
	return doc, nil
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Pages returns a copy of the page list
func (d *Document) Pages() []Page {
	pages := make([]Page, len(d.pages))
	copy(pages, d.pages)
	return pages
}

// Page returns the page at the 0-based index i
func (d *Document) Page(i int) Page {
	return d.pages[i]
}

func (d *Document) Append(p Page) {
	d.pages = append(d.pages, p)
}

func (d *Document) Extend(pages []Page) {
	d.pages = append(d.pages, pages...)
}

// Slice returns a new document holding the pages [start, end)
func (d *Document) Slice(start, end int) (*Document, error) {
	if start < 0 || end > len(d.pages) || start >= end {
		return nil, fmt.Errorf("invalid page range [%d, %d) for %d pages", start, end, len(d.pages))
	}
	out := &Document{conf: d.conf}
	out.Extend(d.pages[start:end])
	return out, nil
}

// segment is a run of consecutive pages taken from the same source context
type segment struct {
	src     *model.Context
	pageNrs []int
}

func (d *Document) segments() []segment {
	var segs []segment
	for _, p := range d.pages {
		if n := len(segs); n > 0 && segs[n-1].src == p.src {
			segs[n-1].pageNrs = append(segs[n-1].pageNrs, p.nr)
			continue
		}
		segs = append(segs, segment{src: p.src, pageNrs: []int{p.nr}})
	}
	return segs
}

// Save serializes the document to w and returns the number of bytes written
func (d *Document) Save(w io.Writer) (int64, error) {
	if len(d.pages) == 0 {
		return 0, ErrNoPages
	}
	cw := &countingWriter{w: w}
	segs := d.segments()

	if len(segs) == 1 {
		ctxNew, err := pdfcpu.ExtractPages(segs[0].src, segs[0].pageNrs, false)
		if err != nil {
			return 0, fmt.Errorf("failed to extract pages: %w", err)
		}
		if err := api.WriteContext(ctxNew, cw); err != nil {
			return cw.n, err
		}
		return cw.n, nil
	}

	parts := make([]io.ReadSeeker, 0, len(segs))
	for i, seg := range segs {
		ctxNew, err := pdfcpu.ExtractPages(seg.src, seg.pageNrs, false)
		if err != nil {
			return 0, fmt.Errorf("failed to extract pages of part %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		if err := api.WriteContext(ctxNew, &buf); err != nil {
			return 0, fmt.Errorf("failed to write part %d: %w", i+1, err)
		}
		parts = append(parts, bytes.NewReader(buf.Bytes()))
	}
	if err := api.MergeRaw(parts, cw, false, d.conf); err != nil {
		return cw.n, fmt.Errorf("failed to merge parts: %w", err)
	}
	return cw.n, nil
}

// Size serializes the document into memory and returns its length
func (d *Document) Size() (int64, error) {
	var buf bytes.Buffer
	return d.Save(&buf)
}

// SaveFile writes the document to path, replacing any existing file
func (d *Document) SaveFile(path string) (n int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return d.Save(f)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
