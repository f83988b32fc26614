package convert

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"fileforge/internal/formats"
)

const csvFixture = "name,age,city\nalice,30,berlin\nbob,25,lisbon\ncarol,41,osaka\n"

func TestConvertData_CSVToPrettyJSON(t *testing.T) {
	c := New(DefaultLimits())
	res, err := c.convertData([]byte(csvFixture), "csv", "json", formats.Options{Pretty: true}, nil)
	if err != nil {
		t.Fatalf("convertData error: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(res.Data, &rows); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, res.Data)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(rows))
	}
	for _, row := range rows {
		for _, key := range []string{"name", "age", "city"} {
			if _, ok := row[key]; !ok {
				t.Fatalf("expected key %q in row %v", key, row)
			}
		}
	}
	if !bytes.Contains(res.Data, []byte("\n  ")) {
		t.Fatalf("pretty output should be indented:\n%s", res.Data)
	}
}

func TestConvertData_CSVToJSONCompactByDefault(t *testing.T) {
	c := New(DefaultLimits())
	res, err := c.convertData([]byte(csvFixture), "csv", "json", formats.Options{}, nil)
	if err != nil {
		t.Fatalf("convertData error: %v", err)
	}
	if bytes.Contains(bytes.TrimSpace(res.Data), []byte("\n ")) {
		t.Fatalf("compact output should not be indented:\n%s", res.Data)
	}
}

func TestConvertData_JSONToCSV(t *testing.T) {
	c := New(DefaultLimits())
	input := `[{"name":"alice","age":30},{"name":"bob","age":25}]`

	res, err := c.convertData([]byte(input), "json", "csv", formats.Options{}, nil)
	if err != nil {
		t.Fatalf("convertData error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(res.Data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), res.Data)
	}
}

func TestConvertData_CSVToXLSXRoundTrip(t *testing.T) {
	c := New(DefaultLimits())
	res, err := c.convertData([]byte(csvFixture), "csv", "xlsx", formats.Options{}, nil)
	if err != nil {
		t.Fatalf("convertData error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "name" || rows[0][2] != "city" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
}

func TestConvertData_XLSXToCSV(t *testing.T) {
	f := excelize.NewFile()
	cells := map[string]string{
		"A1": "id", "B1": "label",
		"A2": "1", "B2": "first",
		"A3": "2", "B3": "second",
	}
	for cell, val := range cells {
		if err := f.SetCellValue("Sheet1", cell, val); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("writing fixture workbook: %v", err)
	}
	f.Close()

	c := New(DefaultLimits())
	res, err := c.convertData(buf.Bytes(), "xlsx", "csv", formats.Options{}, nil)
	if err != nil {
		t.Fatalf("convertData error: %v", err)
	}
	out := strings.TrimSpace(string(res.Data))
	if !strings.HasPrefix(out, "id,label") {
		t.Fatalf("expected header id,label, got:\n%s", out)
	}
	if len(strings.Split(out, "\n")) != 3 {
		t.Fatalf("expected header + 2 rows:\n%s", out)
	}
}

func TestConvertData_MalformedJSON(t *testing.T) {
	c := New(DefaultLimits())
	if _, err := c.convertData([]byte("{not json"), "json", "csv", formats.Options{}, nil); err == nil {
		t.Fatalf("expected error for malformed json input")
	}
}

func TestConvertData_RowLimit(t *testing.T) {
	c := New(Limits{MaxRows: 2})
	if _, err := c.convertData([]byte(csvFixture), "csv", "json", formats.Options{}, nil); err == nil {
		t.Fatalf("expected rejection for row count over limit")
	}
}
