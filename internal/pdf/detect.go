package pdf

import "bytes"

// headerWindow is how far into a file the %PDF- marker may appear.
// Some producers emit junk (BOMs, mail headers) ahead of it.
const headerWindow = 1024

// IsPDF reports whether data carries a PDF header near its start
func IsPDF(data []byte) bool {
	if len(data) < 5 {
		return false
	}
	return bytes.Contains(data[:min(len(data), headerWindow)], []byte("%PDF-"))
}
