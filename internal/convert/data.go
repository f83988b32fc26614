package convert

import (
	"bytes"
	"encoding/json"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	"fileforge/internal/formats"
)

func (c *Converter) convertData(input []byte, inputFormat, outputFormat string, opts formats.Options, report Progress) (Result, error) {
	in := formats.Normalize(inputFormat)
	out := formats.Normalize(outputFormat)

	if report != nil {
		report(10, "Reading "+in+" file")
	}

	var df dataframe.DataFrame
	switch in {
	case "csv":
		df = dataframe.ReadCSV(bytes.NewReader(input))
	case "json":
		df = dataframe.ReadJSON(bytes.NewReader(input))
	case "xlsx", "xls":
		records, err := readWorkbook(input)
		if err != nil {
			return Result{}, err
		}
		df = dataframe.LoadRecords(records)
	default:
		return Result{}, failed(nil, "no data reader for format %q", in)
	}
	if df.Err != nil {
		return Result{}, failed(df.Err, "failed to parse %s input", in)
	}

	if df.Nrow() > c.limits.MaxRows {
		return Result{}, failed(nil, "data has %d rows, exceeds maximum of %d", df.Nrow(), c.limits.MaxRows)
	}
	if df.Ncol() > c.limits.MaxColumns {
		return Result{}, failed(nil, "data has %d columns, exceeds maximum of %d", df.Ncol(), c.limits.MaxColumns)
	}

	if report != nil {
		report(50, "Processing data")
		report(75, "Writing "+out+" file")
	}

	var buf bytes.Buffer
	switch out {
	case "csv":
		if err := df.WriteCSV(&buf); err != nil {
			return Result{}, failed(err, "writing csv output failed")
		}
	case "json":
		if err := df.WriteJSON(&buf); err != nil {
			return Result{}, failed(err, "writing json output failed")
		}
		if opts.Pretty {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, bytes.TrimSpace(buf.Bytes()), "", "  "); err != nil {
				return Result{}, failed(err, "formatting json output failed")
			}
			buf = pretty
		}
	case "xlsx":
		data, err := writeWorkbook(df.Records())
		if err != nil {
			return Result{}, err
		}
		buf = *bytes.NewBuffer(data)
	default:
		return Result{}, failed(nil, "no data writer for format %q", out)
	}

	if report != nil {
		report(100, "Conversion complete")
	}
	return Result{Data: buf.Bytes()}, nil
}

// readWorkbook loads the first sheet of an xlsx/xls workbook as string
// records, padding short rows so every record matches the header width.
func readWorkbook(input []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(input))
	if err != nil {
		return nil, failed(err, "invalid or corrupted workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, failed(nil, "workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, failed(err, "reading sheet %q failed", sheets[0])
	}
	if len(rows) < 2 {
		return nil, failed(nil, "workbook has no data rows")
	}

	width := len(rows[0])
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row[:width]
	}
	return rows, nil
}

func writeWorkbook(records [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for r, row := range records {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, failed(err, "cell addressing failed at row %d", r+1)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, failed(err, "writing cell %s failed", cell)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, failed(err, "writing workbook failed")
	}
	if buf.Len() == 0 {
		return nil, failed(nil, "empty workbook output")
	}
	return buf.Bytes(), nil
}
