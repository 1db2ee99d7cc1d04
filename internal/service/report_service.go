package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kasir/internal/domain"
	"kasir/internal/repository"
)

// ReportService aggregates committed sales over calendar windows
type ReportService struct {
	txns     repository.TransactionRepository
	products repository.ProductRepository
}

func NewReportService(txns repository.TransactionRepository, products repository.ProductRepository) *ReportService {
	return &ReportService{txns: txns, products: products}
}

const dateLayout = "2006-01-02"

// Daily summarizes one calendar day (YYYY-MM-DD)
func (s *ReportService) Daily(ctx context.Context, date string) (*domain.ReportSummary, error) {
	start, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, ErrInvalidInput
	}
	end := start.AddDate(0, 0, 1)
	return s.summarize(ctx, "daily", start, end)
}

// Weekly summarizes seven days from the given start date
func (s *ReportService) Weekly(ctx context.Context, startDate string) (*domain.ReportSummary, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
	if err != nil {
		return nil, ErrInvalidInput
	}
	end := start.AddDate(0, 0, 7)
	return s.summarize(ctx, "weekly", start, end)
}

// Monthly summarizes one calendar month (YYYY-MM)
func (s *ReportService) Monthly(ctx context.Context, month string) (*domain.ReportSummary, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return nil, ErrInvalidInput
	}
	end := start.AddDate(0, 1, 0)
	return s.summarize(ctx, "monthly", start, end)
}

// summarize aggregates over [start, end)
func (s *ReportService) summarize(ctx context.Context, period string, start, end time.Time) (*domain.ReportSummary, error) {
	transactions, err := s.txns.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	revenue := decimal.Zero
	var itemsSold int64
	byMethod := make(map[string]decimal.Decimal)
	byCustomerType := make(map[string]decimal.Decimal)

	for _, t := range transactions {
		revenue = revenue.Add(t.TotalAmount)
		for _, it := range t.Items {
			itemsSold += it.Quantity
		}
		method := string(t.PaymentMethod)
		byMethod[method] = byMethod[method].Add(t.TotalAmount)
		byCustomerType[t.CustomerTypeDisplay] = byCustomerType[t.CustomerTypeDisplay].Add(t.TotalAmount)
	}

	return &domain.ReportSummary{
		Period:            period,
		StartDate:         start.Format(dateLayout),
		EndDate:           end.AddDate(0, 0, -1).Format(dateLayout),
		TotalTransactions: len(transactions),
		TotalRevenue:      revenue,
		TotalItemsSold:    itemsSold,
		PaymentMethods:    byMethod,
		CustomerTypes:     byCustomerType,
	}, nil
}

// Dashboard returns today's headline numbers
func (s *ReportService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.txns.ListByDateRange(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load today's transactions: %w", err)
	}

	revenue := decimal.Zero
	for _, t := range today {
		revenue = revenue.Add(t.TotalAmount)
	}

	totalProducts, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		TodayTransactions: len(today),
		TodayRevenue:      revenue,
		TotalProducts:     totalProducts,
		LowStockProducts:  len(lowStock),
	}, nil
}
