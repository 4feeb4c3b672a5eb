package helper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadContactsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	payload := `[
		{"number": "081111111111", "name": "Budi"},
		{"number": "6282222222222", "name": "Sari", "message": "Halo khusus"},
		{"number": "  "},
		{"number": "083333333333"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	contacts, err := LoadContacts(path, "62", "s.whatsapp.net")
	require.NoError(t, err)
	require.Len(t, contacts, 3, "blank numbers are skipped")

	assert.Equal(t, "6281111111111@s.whatsapp.net", contacts[0].Number)
	assert.Equal(t, "Budi", contacts[0].Name)
	assert.Equal(t, "6282222222222@s.whatsapp.net", contacts[1].Number)
	assert.Equal(t, "Halo khusus", contacts[1].Message)
	assert.Equal(t, "6283333333333@s.whatsapp.net", contacts[2].Number)
}

func TestLoadContactsJSONBadRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"number":"0811"}`), 0o644))

	_, err := LoadContacts(path, "62", "s.whatsapp.net")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root must be an array")
}

func TestLoadContactsExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "number"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "name"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "message"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "081111111111"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "Budi"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "6282222222222"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "Sari"))
	require.NoError(t, f.SetCellValue(sheet, "C3", "Pesan khusus"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	contacts, err := LoadContacts(path, "62", "s.whatsapp.net")
	require.NoError(t, err)
	require.Len(t, contacts, 2, "header row is skipped")

	assert.Equal(t, "6281111111111@s.whatsapp.net", contacts[0].Number)
	assert.Equal(t, "Budi", contacts[0].Name)
	assert.Equal(t, "6282222222222@s.whatsapp.net", contacts[1].Number)
	assert.Equal(t, "Pesan khusus", contacts[1].Message)
}

func TestLoadContactsExcelNoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "081111111111"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	contacts, err := LoadContacts(path, "62", "s.whatsapp.net")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "6281111111111@s.whatsapp.net", contacts[0].Number)
}

func TestLoadContactsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte("0811"), 0o644))

	_, err := LoadContacts(path, "62", "s.whatsapp.net")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported contact file type")
}

func TestLoadContactsMissingFile(t *testing.T) {
	_, err := LoadContacts(filepath.Join(t.TempDir(), "nope.json"), "62", "s.whatsapp.net")
	assert.Error(t, err)
}
