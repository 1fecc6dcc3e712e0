package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

// mustOpenWorkbook reopens generated workbook bytes for in-test edits.
func mustOpenWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	return f
}
