package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreTypes "github.com/ashStableLogic/security-group-mapper/pkg/core/types"
)

func sampleRecord() coreTypes.AssociationRecord {
	return coreTypes.AssociationRecord{
		GroupID:   "sg-0123456789abcdef0",
		GroupName: "web-tier",
		Region:    "eu-west-1",
		Services: map[coreTypes.ServiceKind]string{
			coreTypes.Ec2:    "web-1\nweb-2",
			coreTypes.Lambda: "thumbnailer",
		},
	}
}

func TestHeadersFollowTheColumnSchema(t *testing.T) {
	assert.Equal(t, []string{
		"Security Group ID",
		"Security Group Name",
		"Security Group Region",
		"EC2",
		"ECS",
		"ALB",
		"RDS",
		"Redshift",
		"Lambda",
		"ElastiCache",
		"DMS",
		"EMR",
	}, Headers())
}

func TestRowMatchesHeaderOrder(t *testing.T) {
	row := Row(sampleRecord())

	require.Len(t, row, len(Headers()))
	assert.Equal(t, "sg-0123456789abcdef0", row[0])
	assert.Equal(t, "web-tier", row[1])
	assert.Equal(t, "eu-west-1", row[2])
	assert.Equal(t, "web-1\nweb-2", row[3])
	assert.Equal(t, "thumbnailer", row[8])

	// Kinds without attachments serialize as empty cells.
	assert.Equal(t, "", row[4])
	assert.Equal(t, "", row[11])
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "acme-prod security groups and associated services.xlsx",
		DefaultFileName("acme-prod", FormatXlsx))
	assert.Equal(t, "123456789012 security groups and associated services.csv",
		DefaultFileName("123456789012", FormatCsv))
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	err := Write(nil, filepath.Join(t.TempDir(), "report.txt"), "txt")
	assert.ErrorContains(t, err, "unknown report format")
}

func TestWriteCsvRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, Write([]coreTypes.AssociationRecord{sampleRecord()}, path, FormatCsv))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, Row(sampleRecord()), rows[1])
}

func TestWriteXlsxRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, Write([]coreTypes.AssociationRecord{sampleRecord()}, path, FormatXlsx))

	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows(workbook.GetSheetName(0))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "sg-0123456789abcdef0", rows[1][0])
	assert.Equal(t, "web-1\nweb-2", rows[1][3])
}
