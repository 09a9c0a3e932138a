// Package pdftest builds small, valid PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Build returns a PDF with the given number of pages. Each page carries a
// distinct content stream padded with roughly padding bytes, so serialized
// size grows with the page count.
func Build(pages, padding int) []byte {
	return BuildNumbered(1, pages, padding)
}

// BuildNumbered is Build with pages marked first, first+1, ... so that
// pages from different fixtures can be told apart after a merge.
func BuildNumbered(first, pages, padding int) []byte {
	var buf bytes.Buffer
	objCount := 2 + 2*pages
	offsets := make([]int, objCount+1)

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [")
	for i := 0; i < pages; i++ {
		fmt.Fprintf(&buf, " %d 0 R", 3+2*i)
	}
	fmt.Fprintf(&buf, " ] /Count %d >>\nendobj\n", pages)

	for i := 0; i < pages; i++ {
		pageObj, contentObj := 3+2*i, 4+2*i
		content := pageContent(first+i, padding)

		offsets[pageObj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents %d 0 R >>\nendobj\n", pageObj, contentObj)

		offsets[contentObj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n", contentObj, len(content))
		buf.Write(content)
		buf.WriteString("\nendstream\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= objCount; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", objCount+1, xref)
	return buf.Bytes()
}

// pageContent draws a line whose position depends on the page number and
// appends pseudo-random comment lines that do not compress away.
func pageContent(pageNum, padding int) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "q 1 w %d %d m %d %d l S Q\n", 10+pageNum, 10, 300+pageNum, 700)
	seed := uint32(pageNum)*2654435761 + 1
	for buf.Len() < padding {
		buf.WriteString("%")
		for j := 0; j < 64; j++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			buf.WriteByte("0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"[seed%62])
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// WriteFile writes a generated PDF named name into dir and returns its path
func WriteFile(t testing.TB, dir, name string, pages, padding int) string {
	t.Helper()
	return WriteNumberedFile(t, dir, name, 1, pages, padding)
}

// WriteNumberedFile writes a BuildNumbered PDF into dir and returns its path
func WriteNumberedFile(t testing.TB, dir, name string, first, pages, padding int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildNumbered(first, pages, padding), 0644); err != nil {
		t.Fatalf("Failed to write test PDF %s: %v", path, err)
	}
	return path
}

var markerRe = regexp.MustCompile(`q 1 w (\d+) 10 m`)

// PageNumbers reads the PDF at path and returns the marker of every page
// in document order.
func PageNumbers(t testing.TB, path string) []int {
	t.Helper()
	api.DisableConfigDir()
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}

	numbers := make([]int, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		content, err := pageContentOf(ctx, pageNr)
		if err != nil {
			t.Fatalf("%s page %d: %v", path, pageNr, err)
		}
		m := markerRe.FindSubmatch(content)
		if m == nil {
			t.Fatalf("%s page %d: no page marker in content stream", path, pageNr)
		}
		n, _ := strconv.Atoi(string(m[1]))
		numbers = append(numbers, n-10)
	}
	return numbers
}

func pageContentOf(ctx *model.Context, pageNr int) ([]byte, error) {
	d, _, _, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, err
	}
	obj, found := d.Find("Contents")
	if !found {
		return nil, fmt.Errorf("no contents")
	}
	obj, err = ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}

	refs := []types.Object{obj}
	if arr, ok := obj.(types.Array); ok {
		refs = arr
	}
	var content []byte
	for _, ref := range refs {
		sd, _, err := ctx.DereferenceStreamDict(ref)
		if err != nil {
			return nil, err
		}
		if sd == nil {
			continue
		}
		if err := sd.Decode(); err != nil {
			return nil, err
		}
		content = append(content, sd.Content...)
	}
	return content, nil
}
