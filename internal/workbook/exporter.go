package workbook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/asset-management/internal/asset"
	"github.com/frahmantamala/asset-management/internal/scope"
)

// Exporter writes the scoped asset register back into the legacy workbook
// layout.
type Exporter struct {
	assets asset.RepositoryAPI
	logger *slog.Logger
}

func NewExporter(assets asset.RepositoryAPI, logger *slog.Logger) *Exporter {
	return &Exporter{assets: assets, logger: logger}
}

var assetColumns = []string{
	"id", "name", "tagNumber", "type", "branchCode", "branchName", "status",
	"purchaseDate", "warrantyEnd", "amcStart", "amcEnd", "amcWarranty",
	"fromBranch", "fromBranchCode", "transferStatus", "createdBy",
}

func (ex *Exporter) Export(ctx context.Context, sc scope.Scope, path string) (int, error) {
	assets, err := ex.assets.List(ctx, sc, "")
	if err != nil {
		return 0, fmt.Errorf("list assets: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, SheetAssets); err != nil {
		return 0, err
	}

	headerRow := make([]interface{}, len(assetColumns))
	for i, c := range assetColumns {
		headerRow[i] = c
	}
	if err := f.SetSheetRow(SheetAssets, "A1", &headerRow); err != nil {
		return 0, err
	}

	for i, a := range assets {
		row := []interface{}{
			a.ID, a.Name, a.TagNumber, a.Type, a.BranchCode, a.BranchName, a.Status,
			a.PurchaseDate, a.WarrantyEnd, a.AmcStart, a.AmcEnd, a.AmcWarranty,
			a.FromBranch, a.FromBranchCode, a.TransferStatus, a.CreatedBy,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(SheetAssets, cell, &row); err != nil {
			return 0, err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save workbook: %w", err)
	}

	ex.logger.Info("asset register exported", "path", path, "rows", len(assets))
	return len(assets), nil
}
