package report

import (
	"fmt"
	"io"

	"gradebook-extract/internal/model"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// XLSX renders the report as a single-sheet workbook. Rows go through
// an excelize stream writer so a large extraction is not held in
// worksheet memory; the workbook itself is only serialized to the
// destination on Flush.
type XLSX struct {
	out     io.Writer
	file    *excelize.File
	stream  *excelize.StreamWriter
	nextRow int
}

func NewXLSX(out io.Writer) (*XLSX, error) {
	file := excelize.NewFile()
	stream, err := file.NewStreamWriter(sheetName)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open stream writer: %w", err)
	}
	return &XLSX{
		out:     out,
		file:    file,
		stream:  stream,
		nextRow: 1,
	}, nil
}

func (x *XLSX) WriteHeader() error {
	return x.writeRow(Header)
}

func (x *XLSX) WriteRow(row model.ReportRow) error {
	return x.writeRow(Fields(row))
}

func (x *XLSX) Flush() error {
	defer x.file.Close()

	if err := x.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush worksheet: %w", err)
	}
	if err := x.file.Write(x.out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (x *XLSX) writeRow(fields []string) error {
	cell, err := excelize.CoordinatesToCellName(1, x.nextRow)
	if err != nil {
		return err
	}

	// Everything is written as text so the workbook matches the
	// delimited rendering cell for cell.
	values := make([]interface{}, len(fields))
	for i, field := range fields {
		values[i] = field
	}

	if err := x.stream.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", x.nextRow, err)
	}
	x.nextRow++
	return nil
}
