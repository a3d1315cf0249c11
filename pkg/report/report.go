// Package report serializes association records to a spreadsheet with a fixed
// column schema: the security group columns first, then one column per service
// type.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
)

const (
	FormatXlsx = "xlsx"
	FormatCsv  = "csv"
)

// Headers returns the report's column headers in output order.
func Headers() []string {
	headers := []string{"Security Group ID", "Security Group Name", "Security Group Region"}
	for _, kind := range coreTypes.AllServiceKinds() {
		headers = append(headers, kind.String())
	}
	return headers
}

// Row flattens one association record following the Headers order. Kinds with
// no attachment yield empty cells.
func Row(record coreTypes.AssociationRecord) []string {
	row := []string{record.GroupID, record.GroupName, record.Region}
	for _, kind := range coreTypes.AllServiceKinds() {
		row = append(row, record.Services[kind])
	}
	return row
}

// DefaultFileName builds the report name convention: the account label first,
// the format as extension.
func DefaultFileName(accountLabel string, format string) string {
	return fmt.Sprintf("%s security groups and associated services.%s", accountLabel, format)
}

// Write serializes the records to path in the requested format.
func Write(records []coreTypes.AssociationRecord, path string, format string) error {
	switch format {
	case FormatXlsx:
		return writeXlsx(records, path)
	case FormatCsv:
		return writeCsv(records, path)
	}
	return fmt.Errorf("unknown report format %q (expected %q or %q)", format, FormatXlsx, FormatCsv)
}

func writeXlsx(records []coreTypes.AssociationRecord, path string) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)

	headers := Headers()
	if err := workbook.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(record)
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing report row for %s: %w", record.GroupID, err)
		}
	}

	return workbook.SaveAs(path)
}

func writeCsv(records []coreTypes.AssociationRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(Headers()); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(Row(record)); err != nil {
			return fmt.Errorf("writing report row for %s: %w", record.GroupID, err)
		}
	}
	writer.Flush()

	return writer.Error()
}
