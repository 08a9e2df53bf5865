package parsers

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVParser parses products from CSV. The header row names the fields and the
// separator is "," or ";", whichever the header uses more.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed products.
func (p *CSVParser) Parse(r io.Reader) ([]RawProduct, error) {
	br := bufio.NewReader(r)
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.Comma = sniffSeparator(br)

	header, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, header)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if col == "" {
			return nil, fmt.Errorf("empty column name at position %d", i+1)
		}
		if seen[col] {
			return nil, fmt.Errorf("duplicate column: %s", col)
		}
		seen[col] = true
		header[i] = col
	}

	return header, nil
}

// readRecords reads all data rows and converts them to RawProducts.
func (p *CSVParser) readRecords(reader *csv.Reader, header []string) ([]RawProduct, error) {
	var products []RawProduct
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("line %d: %d values for %d columns", lineNum, len(record), len(header))
		}

		products = append(products, p.parseRecord(record, header, lineNum))
	}

	return products, nil
}

// parseRecord converts a CSV record to a RawProduct. Short rows leave the
// trailing columns out, so they surface as missing fields on import.
func (p *CSVParser) parseRecord(record, header []string, lineNum int) RawProduct {
	values := make(map[string]string, len(record))
	for i, v := range record {
		values[header[i]] = v
	}
	return RawProduct{Values: values, LineNum: lineNum}
}

// sniffSeparator peeks at the first line without consuming it.
func sniffSeparator(br *bufio.Reader) rune {
	line, _ := br.Peek(br.Size())
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(string(line), ";") > strings.Count(string(line), ",") {
		return ';'
	}
	return ','
}
