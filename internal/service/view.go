package service

import (
	"time"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

// BuildView computes the portfolio table, total and monthly series from holdings.
// It is pure; callers pass a snapshot such as PortfolioService.Holdings().
func BuildView(holdings []model.Holding, now time.Time) model.PortfolioView {
	rows := make([]model.HoldingRow, len(holdings))
	for i, h := range holdings {
		rows[i] = model.HoldingRow{
			Holding: h,
			Profit:  Profit(h),
		}
	}

	return model.PortfolioView{
		Rows:          rows,
		TotalProfit:   TotalProfit(holdings),
		MonthlySeries: MonthlyProfits(holdings),
		GeneratedAt:   now,
	}
}

// View builds the view of the current portfolio.
func (s *PortfolioService) View() model.PortfolioView {
	return BuildView(s.Holdings(), time.Now().In(s.location))
}
