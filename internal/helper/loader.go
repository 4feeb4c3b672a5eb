package helper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"gowa-blast/internal/model"
)

// LoadContacts reads a contact list from a .json or .xlsx file and
// returns contacts with numbers already normalized.
//
// JSON files hold an array of {number, name?, message?}. Excel files
// use the first sheet with columns number / name / message; a header
// row is skipped when the first cell says "number".
func LoadContacts(path, countryPrefix, suffix string) ([]model.Contact, error) {
	var contacts []model.Contact
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		contacts, err = loadContactsJSON(path)
	case ".xlsx":
		contacts, err = loadContactsExcel(path)
	default:
		return nil, fmt.Errorf("unsupported contact file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}

	out := make([]model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if strings.TrimSpace(c.Number) == "" {
			continue
		}
		c.Number = NormalizeNumber(c.Number, countryPrefix, suffix)
		out = append(out, c)
	}
	return out, nil
}

func loadContactsJSON(path string) ([]model.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var contacts []model.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("invalid format, root must be an array: %w", err)
	}
	return contacts, nil
}

func loadContactsExcel(path string) ([]model.Contact, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var contacts []model.Contact
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "number") {
			continue
		}

		c := model.Contact{Number: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			c.Name = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			c.Message = strings.TrimSpace(row[2])
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}
