package service

import (
	"bytes"
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/pagination"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ExportService renders inventory and invoice listings as downloadable
// spreadsheets and PDFs. Cost columns (base price, earn) only appear when
// the caller's capability set carries "create".
type ExportService interface {
	InventoryXLSX(ctx context.Context, warehouseID uuid.UUID, perms model.PermissionSet) ([]byte, error)
	InventoryPDF(ctx context.Context, warehouseID uuid.UUID, perms model.PermissionSet) ([]byte, error)
	InvoicesXLSX(ctx context.Context, storeID uuid.UUID, perms model.PermissionSet) ([]byte, error)
	InvoicesPDF(ctx context.Context, storeID uuid.UUID, perms model.PermissionSet) ([]byte, error)
}

type exportService struct {
	productRepo repository.ProductRepository
	invoiceRepo repository.InvoiceRepository
}

func NewExportService(productRepo repository.ProductRepository, invoiceRepo repository.InvoiceRepository) ExportService {
	return &exportService{productRepo: productRepo, invoiceRepo: invoiceRepo}
}

// inventoryRow flattens a product into one line per physical barcode, the
// shape both the spreadsheet and the label printer consume.
type inventoryRow struct {
	Barcode   string
	Brand     string
	Reference string
	Color     string
	Gender    string
	Size      string
	SalePrice string
	BasePrice string
}

func (s *exportService) inventoryRows(ctx context.Context, warehouseID uuid.UUID) ([]inventoryRow, error) {
	var rows []inventoryRow

	for _, kind := range []string{model.KindProduct, model.KindShirt} {
		products, err := s.productRepo.ListByWarehouse(ctx, warehouseID, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s inventory: %w", kind, err)
		}
		for i := range products {
			p := &products[i]
			for size, entry := range p.Sizes {
				for _, barcode := range entry.Barcodes {
					rows = append(rows, inventoryRow{
						Barcode:   barcode,
						Brand:     p.Brand,
						Reference: p.Reference,
						Color:     p.Color,
						Gender:    p.Gender,
						Size:      size,
						SalePrice: p.SalePrice.StringFixed(0),
						BasePrice: p.BasePrice.StringFixed(0),
					})
				}
			}
			if p.IsBox && p.Barcode != "" {
				rows = append(rows, inventoryRow{
					Barcode:   p.Barcode,
					Brand:     p.Brand,
					Reference: p.Reference,
					Color:     p.Color,
					Gender:    p.Gender,
					Size:      fmt.Sprintf("box x%d", p.Total2),
					SalePrice: p.SalePrice.StringFixed(0),
					BasePrice: p.BasePrice.StringFixed(0),
				})
			}
		}
	}
	return rows, nil
}

func (s *exportService) InventoryXLSX(ctx context.Context, warehouseID uuid.UUID, perms model.PermissionSet) ([]byte, error) {
	rows, err := s.inventoryRows(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Inventory"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Barcode", "Brand", "Reference", "Color", "Gender", "Size", "Sale Price"}
	withCosts := perms.Has("create")
	if withCosts {
		headers = append(headers, "Base Price")
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	for i, row := range rows {
		values := []interface{}{row.Barcode, row.Brand, row.Reference, row.Color, row.Gender, row.Size, row.SalePrice}
		if withCosts {
			values = append(values, row.BasePrice)
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) InventoryPDF(ctx context.Context, warehouseID uuid.UUID, perms model.PermissionSet) ([]byte, error) {
	rows, err := s.inventoryRows(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Warehouse Inventory", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	withCosts := perms.Has("create")
	headers := []string{"Barcode", "Brand", "Reference", "Color", "Gender", "Size", "Sale Price"}
	widths := []float64{0.18, 0.15, 0.17, 0.12, 0.10, 0.12, 0.16}
	if withCosts {
		headers = append(headers, "Base Price")
		widths = []float64{0.16, 0.13, 0.15, 0.11, 0.09, 0.10, 0.13, 0.13}
	}

	pdf.SetFont("Helvetica", "B", 8)
	for i, header := range headers {
		pdf.CellFormat(contentW*widths[i], 6, header, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		values := []string{row.Barcode, row.Brand, row.Reference, row.Color, row.Gender, row.Size, row.SalePrice}
		if withCosts {
			values = append(values, row.BasePrice)
		}
		for i, value := range values {
			pdf.CellFormat(contentW*widths[i], 5, value, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: write: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) closedInvoices(ctx context.Context, storeID uuid.UUID) ([]model.Invoice, error) {
	invoices, _, err := s.invoiceRepo.ListByStore(ctx, storeID, model.InvoiceClosed, 1, pagination.ExportLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (s *exportService) InvoicesXLSX(ctx context.Context, storeID uuid.UUID, perms model.PermissionSet) ([]byte, error) {
	invoices, err := s.closedInvoices(ctx, storeID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Invoices"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Code", "Customer", "Phone", "Date", "Items", "Total Sold"}
	withCosts := perms.Has("create")
	if withCosts {
		headers = append(headers, "Total Earn")
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	for i, invoice := range invoices {
		values := []interface{}{
			invoice.InvoiceCode,
			invoice.CustomerName,
			invoice.CustomerPhone,
			invoice.UpdatedAt.Format("2006-01-02"),
			len(invoice.Items),
			invoice.TotalSold.StringFixed(0),
		}
		if withCosts {
			values = append(values, invoice.TotalEarn.StringFixed(0))
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) InvoicesPDF(ctx context.Context, storeID uuid.UUID, perms model.PermissionSet) ([]byte, error) {
	invoices, err := s.closedInvoices(ctx, storeID)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Closed Invoices", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	withCosts := perms.Has("create")
	headers := []string{"Code", "Customer", "Date", "Items", "Total Sold"}
	widths := []float64{0.18, 0.32, 0.18, 0.12, 0.20}
	if withCosts {
		headers = append(headers, "Total Earn")
		widths = []float64{0.16, 0.28, 0.16, 0.10, 0.15, 0.15}
	}

	pdf.SetFont("Helvetica", "B", 9)
	for i, header := range headers {
		pdf.CellFormat(contentW*widths[i], 6, header, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, invoice := range invoices {
		values := []string{
			invoice.InvoiceCode,
			invoice.CustomerName,
			invoice.UpdatedAt.Format("2006-01-02"),
			fmt.Sprintf("%d", len(invoice.Items)),
			invoice.TotalSold.StringFixed(0),
		}
		if withCosts {
			values = append(values, invoice.TotalEarn.StringFixed(0))
		}
		for i, value := range values {
			pdf.CellFormat(contentW*widths[i], 5, value, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: write: %w", err)
	}
	return buf.Bytes(), nil
}
