package export

import (
	"finder/pkg/domain"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// LeadsSheet is the name of the worksheet holding the leads.
const LeadsSheet = "Leads"

// WriteLeadsXLSX writes leads as a single-sheet workbook with the same
// columns as the leads CSV. Numbers are stored as numeric cells.
func WriteLeadsXLSX(w io.Writer, leads []domain.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), LeadsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, 0, len(LeadColumns()))
	for _, c := range LeadColumns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(LeadsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, l := range leads {
		row := []any{
			l.BusinessName,
			l.BusinessCategory,
			l.Phone,
			l.WebsiteURL,
			l.WebsiteStatus,
			l.StatusReason,
			l.Address,
			l.Rating,
			l.RatingsTotal,
			l.PlaceID,
		}
		if err := f.SetSheetRow(LeadsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(LeadsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
