package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/Hanaasagi/labgrade/pkg/ctcae"
	"github.com/Hanaasagi/labgrade/pkg/megaoak"
)

func sampleFindings() []ctcae.Finding {
	return []ctcae.Finding{
		{
			Record:  megaoak.LabRecord{Line: 2, Name: "hb.", RawName: "Hb.", Value: 10.1, RawValue: "10.1 L", Flag: "L"},
			LabID:   "HB",
			Display: "Hb",
			Unit:    "g/dL",
			Term:    "Anemia",
			Result:  ctcae.GradeResult{Grade: 1, Reason: "< LLN - 10.0 g/dL"},
		},
		{
			Record:       megaoak.LabRecord{Line: 5, Name: "ast (got)", RawName: "AST (GOT)", Value: 45, RawValue: "45 H", Flag: "H"},
			LabID:        "AST",
			Display:      "AST",
			Unit:         "U/L",
			Term:         "Aspartate aminotransferase increased",
			Result:       ctcae.GradeResult{Grade: 1, Reason: "> ULN - 3.0 x ULN"},
			Approximated: true,
		},
		{
			Record:  megaoak.LabRecord{Line: 7, Name: "k", RawName: "K", Value: 2.5, Comparator: "<", RawValue: "<2.5"},
			LabID:   "K",
			Display: "K",
			Term:    "Hypokalemia",
			Result:  ctcae.GradeResult{Grade: 3, Reason: "< 3.0 - 2.5 mmol/L"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"table", FormatTable, false},
		{"TSV", FormatTSV, false},
		{" json ", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr || got != tt.expected {
			t.Errorf("ParseFormat(%q): expected (%q, err=%v), got (%q, %v)", tt.input, tt.expected, tt.wantErr, got, err)
		}
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(nil); got != "no gradeable items" {
		t.Errorf("Expected empty summary, got %q", got)
	}
	if got := Summary(sampleFindings()[:1]); got != "1 finding" {
		t.Errorf("Expected singular summary, got %q", got)
	}
	if got := Summary(sampleFindings()); got != "3 findings" {
		t.Errorf("Expected plural summary, got %q", got)
	}
}

func TestNewRow(t *testing.T) {
	rows := make([]Row, 0, 3)
	for _, f := range sampleFindings() {
		rows = append(rows, NewRow(f))
	}

	if rows[0].Value != "10.1" || rows[0].Grade != "G1" {
		t.Errorf("Unexpected Hb row %+v", rows[0])
	}
	if rows[1].Grade != "G1"+ApproximatedMarker {
		t.Errorf("Expected approximated marker, got %q", rows[1].Grade)
	}
	if rows[2].Value != "<2.5" {
		t.Errorf("Expected comparator to be kept, got %q", rows[2].Value)
	}
}

func TestNewRow_FallsBackToRecordUnit(t *testing.T) {
	f := sampleFindings()[2]
	f.Record.Unit = "mEq/L"
	if got := NewRow(f).Unit; got != "mEq/L" {
		t.Errorf("Expected record unit, got %q", got)
	}

	f.Unit = "mmol/L"
	if got := NewRow(f).Unit; got != "mmol/L" {
		t.Errorf("Expected configured unit to win, got %q", got)
	}
}

func TestWriteTSV(t *testing.T) {
	findings := sampleFindings()[:1]
	findings[0].Result.Reason = "tab\there"

	var buf bytes.Buffer
	if err := WriteTSV(&buf, findings, Options{}); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}

	expected := "項目\t値\t単位\tCTCAE用語\tGrade\t根拠\n" +
		"Hb\t10.1\tg/dL\tAnemia\tG1\ttab here\n"
	if buf.String() != expected {
		t.Errorf("Expected:\n%q\ngot:\n%q", expected, buf.String())
	}
}

func TestWriteTSV_CustomHeader(t *testing.T) {
	header := []string{"Item", "Value", "Unit", "CTCAE term", "Grade", "Reason\tnote"}

	var buf bytes.Buffer
	if err := WriteTSV(&buf, sampleFindings()[:1], Options{Header: header}); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}

	first, _, _ := strings.Cut(buf.String(), "\n")
	if first != "Item\tValue\tUnit\tCTCAE term\tGrade\tReason note" {
		t.Errorf("Expected the custom header, got %q", first)
	}
	if header[5] != "Reason\tnote" {
		t.Errorf("Expected the caller's header to be left untouched, got %q", header[5])
	}

	buf.Reset()
	if err := WriteTSV(&buf, nil, Options{Header: []string{"only", "two"}}); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "項目\t") {
		t.Errorf("Expected a short header to fall back to the default, got %q", buf.String())
	}
}

func TestWriteTSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, nil, Options{}); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("Expected only the header row, got %q", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleFindings(), Options{}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var doc struct {
		Items []struct {
			LabID  string `json:"lab_id"`
			Record struct {
				Line int `json:"line"`
			} `json:"record"`
			Result struct {
				Grade int `json:"grade"`
			} `json:"result"`
			Approximated bool `json:"approximated"`
		} `json:"items"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if doc.Count != 3 || len(doc.Items) != 3 {
		t.Fatalf("Expected 3 items, got count=%d len=%d", doc.Count, len(doc.Items))
	}
	if doc.Items[1].LabID != "AST" || doc.Items[1].Record.Line != 5 || !doc.Items[1].Approximated {
		t.Errorf("Unexpected AST item %+v", doc.Items[1])
	}
	if doc.Items[2].Result.Grade != 3 {
		t.Errorf("Expected K grade 3, got %d", doc.Items[2].Result.Grade)
	}
}

func TestWriteJSON_EmptyItemsNotNull(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"items": []`) {
		t.Errorf("Expected an empty items array, got %s", buf.String())
	}
}

func TestWriteTable(t *testing.T) {
	findings := sampleFindings()
	findings[0].Display = "ヘモグロビン"

	var buf bytes.Buffer
	if err := Write(&buf, FormatTable, findings, Options{}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// header, three rows, blank, summary, footnote
	if len(lines) != 7 {
		t.Fatalf("Expected 7 lines, got %d:\n%s", len(lines), buf.String())
	}

	// The value column starts at the same cell offset on every row.
	offset := runewidth.StringWidth("ヘモグロビン") + len(columnGap)
	for _, line := range lines[:4] {
		prefix := runewidth.Truncate(line, offset, "")
		if runewidth.StringWidth(prefix) != offset {
			t.Errorf("Misaligned row %q", line)
		}
		if !strings.HasSuffix(prefix, " ") {
			t.Errorf("Expected padding before the value column in %q", line)
		}
	}

	if lines[5] != "3 findings" {
		t.Errorf("Expected summary line, got %q", lines[5])
	}
	if !strings.HasPrefix(lines[6], ApproximatedMarker) {
		t.Errorf("Expected footnote, got %q", lines[6])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("Expected no escape codes without Color")
	}
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil, Options{Color: true}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if !strings.Contains(buf.String(), "no gradeable items") {
		t.Errorf("Expected the empty summary, got %q", buf.String())
	}
	if strings.Contains(buf.String(), DefaultHeader[0]) {
		t.Errorf("Expected no header for an empty table, got %q", buf.String())
	}
}
