package export

import (
	"fmt"
	"io"

	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Worklist"

var headers = []string{
	"Recommendation ID", "Invoice", "Customer", "Tier", "Model", "Fallback",
	"Confidence", "Action", "Tone", "Timing", "Revenue at Risk", "Churn Probability",
	"Review Level", "Status", "Created",
}

// WorklistExporter renders recommendations as an xlsx worklist for reviewers
type WorklistExporter struct {
	logger *zap.Logger
}

// NewWorklistExporter creates a new exporter
func NewWorklistExporter(logger *zap.Logger) *WorklistExporter {
	return &WorklistExporter{logger: logger}
}

// Write streams the workbook to w
func (e *WorklistExporter) Write(w io.Writer, recs []*entity.CollectionRecommendation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	for i, rec := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			rec.ID,
			rec.InvoiceNumber,
			rec.CustomerID,
			string(rec.ModelTier),
			rec.ModelUsed,
			rec.FallbackUsed,
			rec.Confidence,
			rec.RecommendedAction,
			string(rec.Tone),
			string(rec.Timing),
			rec.BusinessImpact.RevenueAtRisk,
			rec.BusinessImpact.ChurnProbability,
			string(rec.ReviewLevel),
			string(rec.Status),
			rec.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(sheetName, "H", "H", 48); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Worklist exported", zap.Int("rows", len(recs)))
	return nil
}
