package memstore

import (
	"context"
	"sort"
	"time"

	"fleet-backend/internal/ledger"
	"fleet-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Reports implements services.ReportStore over the in-memory tables.
type Reports struct{ s *Store }

func (s *Store) Reports() *Reports { return &Reports{s} }

func (r *Reports) MonthlyPaymentTotals(_ context.Context, year int, loc *time.Location) ([]models.MonthlyTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type key struct {
		pt    models.PaymentType
		month int
	}
	sums := map[key]decimal.Decimal{}
	for _, p := range r.s.d.payments {
		if p.DeletedAt != nil {
			continue
		}
		local := p.PaymentDate.In(loc)
		if local.Year() != year {
			continue
		}
		k := key{p.PaymentType, int(local.Month())}
		sums[k] = sums[k].Add(p.TotalAmount)
	}

	out := []models.MonthlyTotal{}
	for k, v := range sums {
		out = append(out, models.MonthlyTotal{PaymentType: k.pt, Month: k.month, Total: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].PaymentType < out[j].PaymentType
	})
	return out, nil
}

func (r *Reports) ProfitLossRows(_ context.Context, from, to *time.Time) ([]models.ProfitLossRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []models.ProfitLossRow{}
	for _, l := range r.s.d.loads {
		if !inRange(l.CreatedAt, from, to) {
			continue
		}
		row := models.ProfitLossRow{
			LoadID:        l.ID,
			RentalCode:    l.RentalCode,
			LoadStatus:    l.Status,
			VehicleType:   l.VehicleType,
			PlateNo:       l.PlateNo,
			FromLocation:  l.FromLocation,
			ToLocation:    l.ToLocation,
			CreatedAt:     l.CreatedAt,
			RevenueStatus: ledger.StatusUnpaid,
			CostStatus:    ledger.StatusUnpaid,
		}
		if l.CompanyID != nil {
			if c, ok := r.s.d.companies[*l.CompanyID]; ok {
				row.CompanyName = c.Name
			}
		}
		if l.DriverID != nil {
			if d, ok := r.s.d.drivers[*l.DriverID]; ok {
				row.DriverName = d.Name
			}
		}
		for _, p := range r.s.d.payments {
			if p.DeletedAt != nil || p.LoadID == nil || *p.LoadID != l.ID {
				continue
			}
			switch p.PaymentType {
			case models.PaymentVehicleAcquisition:
				row.Revenue, row.RevenuePaid, row.RevenueDue, row.RevenueStatus = p.TotalAmount, p.PaidAmount, p.DueAmount, p.Status
			case models.PaymentDriverRental:
				row.Cost, row.CostPaid, row.CostDue, row.CostStatus = p.TotalAmount, p.PaidAmount, p.DueAmount, p.Status
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].LoadID > out[j].LoadID
	})
	return out, nil
}

func (r *Reports) BillTotals(_ context.Context, from, to *time.Time) ([]models.BillTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byType := map[models.BillType]*models.BillTotals{}
	for _, b := range r.s.d.bills {
		if b.DeletedAt != nil || !inRange(b.Date, from, to) {
			continue
		}
		t, ok := byType[b.Type]
		if !ok {
			t = &models.BillTotals{Type: b.Type}
			byType[b.Type] = t
		}
		t.Count++
		t.Total = t.Total.Add(b.TotalAmount)
		t.Paid = t.Paid.Add(b.PaidAmount)
	}
	out := []models.BillTotals{}
	for _, t := range byType {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (r *Reports) DashboardSummary(_ context.Context) (*models.DashboardSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s := &models.DashboardSummary{
		LoadsByStatus:     map[models.LoadStatus]int{},
		OutstandingByType: map[models.PaymentType]decimal.Decimal{},
		VehiclesByStatus:  map[models.VehicleStatus]int{},
	}
	for _, l := range r.s.d.loads {
		s.LoadsByStatus[l.Status]++
	}
	for _, p := range r.s.d.payments {
		if p.DeletedAt == nil {
			s.OutstandingByType[p.PaymentType] = s.OutstandingByType[p.PaymentType].Add(p.DueAmount)
		}
	}
	for _, v := range r.s.d.vehicles {
		s.VehiclesByStatus[v.Status]++
	}
	for _, b := range r.s.d.bills {
		if b.DeletedAt == nil {
			s.BillsOutstanding = s.BillsOutstanding.Add(b.DueAmount)
		}
	}
	return s, nil
}
