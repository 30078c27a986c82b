package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"
	"fleet-backend/internal/storage"
	"fleet-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// Receipt is a rendered PDF plus where it was archived, if anywhere.
type Receipt struct {
	Filename   string
	Data       []byte
	ArchiveURL string
}

// ReceiptService renders payment and bill receipts and archives each one to
// object storage when an archive is configured.
type ReceiptService struct {
	Payments    PaymentStore
	Bills       BillStore
	Archive     storage.Archive
	CompanyName string
}

func NewReceiptService(payments PaymentStore, bills BillStore, archive storage.Archive, companyName string) *ReceiptService {
	return &ReceiptService{Payments: payments, Bills: bills, Archive: archive, CompanyName: companyName}
}

type receiptDoc struct {
	title   string
	number  string
	date    time.Time
	details [][2]string
	account ledger.Account
}

func (s *ReceiptService) PaymentReceipt(ctx context.Context, id int) (*Receipt, error) {
	p, err := s.Payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := receiptDoc{
		title:  "Payment Receipt",
		number: p.ReceiptCode,
		date:   p.PaymentDate,
		details: [][2]string{
			{"Type", string(p.PaymentType)},
			{"Payer", p.Payer},
			{"Payee", p.Payee},
			{"Vehicle", strings.TrimSpace(p.VehicleType + " " + p.PlateNo)},
			{"Route", routeLabel(p.FromLocation, p.ToLocation)},
			{"Notes", p.Notes},
		},
		account: p.Account,
	}
	return s.render(ctx, "payments", p.ReceiptCode, doc)
}

func (s *ReceiptService) BillReceipt(ctx context.Context, id int) (*Receipt, error) {
	b, err := s.Bills.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("BILL-%06d", b.ID)
	doc := receiptDoc{
		title:  billTitle(b.Type),
		number: number,
		date:   b.Date,
		details: [][2]string{
			{"Name", b.Name},
			{"Notes", b.Notes},
		},
		account: b.Account,
	}
	return s.render(ctx, "bills", number, doc)
}

func billTitle(t models.BillType) string {
	if t == models.BillIncome {
		return "Income Bill"
	}
	return "Expense Bill"
}

func routeLabel(from, to string) string {
	if from == "" && to == "" {
		return ""
	}
	return from + " -> " + to
}

func (s *ReceiptService) render(ctx context.Context, kind, number string, doc receiptDoc) (*Receipt, error) {
	data, err := s.receiptPDF(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt %s: %w", number, err)
	}
	r := &Receipt{Filename: number + ".pdf", Data: data}

	if s.Archive != nil {
		key := fmt.Sprintf("%s/%s.pdf", kind, number)
		url, err := s.Archive.Put(ctx, key, "application/pdf", data)
		if err != nil {
			// The receipt is still served when archiving fails.
			log.Printf("[Receipt] archive %s failed: %v", key, err)
		} else {
			r.ArchiveURL = url
		}
	}
	return r, nil
}

func (s *ReceiptService) receiptPDF(doc receiptDoc) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(128, 9, s.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(128, 7, doc.title, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(64, 6, "No: "+doc.number, "", 0, "L", false, 0, "")
	pdf.CellFormat(64, 6, "Date: "+doc.date.In(timeutil.Local).Format(timeutil.ReceiptLayout), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.SetFillColor(240, 240, 240)
	for _, d := range doc.details {
		if d[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(30, 7, d[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(98, 7, truncate(d[1], 55), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	acc := doc.account
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(32, 7, "Total", "1", 0, "C", true, 0, "")
	pdf.CellFormat(32, 7, "Paid", "1", 0, "C", true, 0, "")
	pdf.CellFormat(32, 7, "Due", "1", 0, "C", true, 0, "")
	pdf.CellFormat(32, 7, "Status", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(32, 7, acc.TotalAmount.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 7, acc.PaidAmount.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 7, acc.DueAmount.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 7, strings.ToUpper(string(acc.Status)), "1", 1, "C", false, 0, "")

	if len(acc.Installments) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(128, 7, "Installments", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(12, 7, "#", "1", 0, "C", true, 0, "")
		pdf.CellFormat(36, 7, "Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(32, 7, "Amount", "1", 0, "C", true, 0, "")
		pdf.CellFormat(48, 7, "Notes", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for i, in := range acc.Installments {
			pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
			pdf.CellFormat(36, 6, in.PaidDate.In(timeutil.Local).Format(timeutil.ReceiptLayout), "1", 0, "C", false, 0, "")
			pdf.CellFormat(32, 6, in.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(48, 6, truncate(in.Notes, 25), "1", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(128, 5, fmt.Sprintf("Generated %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
