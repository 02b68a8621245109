package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample(t *testing.T) []dataset.Record {
	t.Helper()
	return dataset.Parse(dataset.SampleCSV(), dataset.DefaultOptions()).Records
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)
	_, err = ParseFormat("parquet")
	assert.Error(t, err)
	assert.Equal(t, JSON, FormatFromPath("out/records.JSON"))
	assert.Equal(t, CSV, FormatFromPath("records"))
}

func TestCSVParsesBackToSameRecords(t *testing.T) {
	records := sample(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	back := dataset.Parse(buf.String(), dataset.DefaultOptions())
	require.True(t, back.HeaderDetected)
	assert.Zero(t, back.Dropped)
	assert.Equal(t, records, back.Records)
}

func TestJSONUsesNullForMissing(t *testing.T) {
	records := sample(t)[:1] // Afghanistan
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Len(t, raw, 1)
	speeds := raw[0]["speeds"].(map[string]any)
	assert.Nil(t, speeds["2017"])
	assert.Equal(t, 3.63, speeds["2024"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestXLSXRoundTrip(t *testing.T) {
	records := sample(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, dataset.Header(), rows[0])
	assert.Equal(t, "Afghanistan", rows[1][0])
	assert.Equal(t, "", rows[1][3])
	assert.Equal(t, "3.63", rows[1][10])
}
