package report

import (
	"bufio"
	"io"
	"strings"

	"gradebook-extract/internal/model"
)

// Writer renders report rows to one destination. WriteHeader is called
// once before any row; Flush must be called before the destination is
// published.
type Writer interface {
	WriteHeader() error
	WriteRow(row model.ReportRow) error
	Flush() error
}

// Delimited writes one delimiter-separated line per row. Field values
// pass through unquoted and unescaped, matching the feed contract.
type Delimited struct {
	w         *bufio.Writer
	delimiter string
}

func NewDelimited(w io.Writer, delimiter string) *Delimited {
	return &Delimited{
		w:         bufio.NewWriter(w),
		delimiter: delimiter,
	}
}

func (d *Delimited) WriteHeader() error {
	return d.writeLine(Header)
}

func (d *Delimited) WriteRow(row model.ReportRow) error {
	return d.writeLine(Fields(row))
}

func (d *Delimited) Flush() error {
	return d.w.Flush()
}

func (d *Delimited) writeLine(fields []string) error {
	if _, err := d.w.WriteString(strings.Join(fields, d.delimiter)); err != nil {
		return err
	}
	return d.w.WriteByte('\n')
}
