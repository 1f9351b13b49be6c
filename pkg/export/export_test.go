package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster() Dataset {
	return Dataset{
		Title:   "Roster 10A1",
		Headers: []string{"Code", "Name", "Grade"},
		Rows: [][]string{
			{"HS001", "Trần Thị B", "8.50"},
			{"HS002", "Le, Minh", ""},
		},
	}
}

func TestRenderCSV(t *testing.T) {
	doc, err := Render(FormatCSV, "roster-1", roster())
	require.NoError(t, err)
	assert.Equal(t, "roster-1.csv", doc.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", doc.ContentType)
	require.True(t, bytes.HasPrefix(doc.Body, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(doc.Body[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"HS002", "Le, Minh", ""}, records[2])
}

func TestRenderPDF(t *testing.T) {
	doc, err := Render(FormatPDF, "roster-1", roster())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	data := roster()
	data.Rows = append(data.Rows, []string{"only one"})
	_, err := Render(FormatCSV, "x", data)
	assert.Error(t, err)

	_, err = Render(FormatPDF, "x", Dataset{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
