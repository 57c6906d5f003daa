package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
)

// Expected CSV header columns. Order in the file does not matter,
// columns are matched by name.
const (
	columnCustomer     = "customer"
	columnID           = "id"
	columnAmount       = "amount"
	columnCategory     = "category"
	columnLastMovement = "last_movement"
)

// ReadRecordsCSV reads a batch ingestion file with one customer record per
// row. The file must have a header naming the columns customer, id,
// amount, category and last_movement.
func ReadRecordsCSV(path string) ([]model.SourceRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("open batch file", err)
	}
	defer file.Close()

	return ReadRecords(file)
}

// ReadRecords reads customer records from CSV data.
func ReadRecords(r io.Reader) ([]model.SourceRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, helper.NewError("read header", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{columnCustomer, columnID, columnAmount, columnCategory, columnLastMovement} {
		if _, ok := index[required]; !ok {
			return nil, helper.NewError("validate header", fmt.Errorf("missing column %q", required))
		}
	}

	var records []model.SourceRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, helper.NewError("read row", fmt.Errorf("line %d: %w", line, err))
		}

		ownerID, err := strconv.Atoi(strings.TrimSpace(row[index[columnID]]))
		if err != nil {
			return nil, helper.NewError("parse owner id", fmt.Errorf("line %d: %w", line, err))
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(row[index[columnAmount]]), 64)
		if err != nil {
			return nil, helper.NewError("parse amount", fmt.Errorf("line %d: %w", line, err))
		}

		records = append(records, model.SourceRecord{
			Customer:     strings.TrimSpace(row[index[columnCustomer]]),
			OwnerID:      ownerID,
			Amount:       amount,
			Category:     strings.TrimSpace(row[index[columnCategory]]),
			LastMovement: strings.TrimSpace(row[index[columnLastMovement]]),
		})
	}

	return records, nil
}
