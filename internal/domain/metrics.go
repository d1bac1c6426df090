package domain

import (
	"math"
	"strconv"
)

// FallbackCurrency is reported when no order carried a currency code,
// and on the zero-valued summary returned when the upstream is down.
const FallbackCurrency = "CAD"

// Order is the read-only view of a Shopify order, enriched with the
// refund list fetched per order. Monetary amounts arrive as decimal
// strings on the wire and are parsed only inside the reducer.
type Order struct {
	ID              int64    `json:"id"`
	CreatedAt       string   `json:"created_at"`
	TotalPrice      string   `json:"total_price"`
	Currency        string   `json:"currency"`
	FinancialStatus string   `json:"financial_status"`
	Refunds         []Refund `json:"refunds,omitempty"`
}

// Refund carries the refunded amount in the shop's own currency.
type Refund struct {
	ID               int64    `json:"id"`
	CreatedAt        string   `json:"created_at"`
	TotalRefundedSet MoneySet `json:"total_refunded_set"`
}

// MoneySet mirrors Shopify's price-set shape.
type MoneySet struct {
	ShopMoney Money `json:"shop_money"`
}

// Money is an amount plus its ISO currency code, both as strings.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// MetricsSummary is the derived 30-day aggregate for one shop.
// Degraded marks a zero-valued fallback produced because the upstream
// order listing failed; callers still receive it as a success.
type MetricsSummary struct {
	ShopID         string  `json:"shopId"`
	FromDate       string  `json:"fromDate"`
	ToDate         string  `json:"toDate"`
	OrdersCount    int     `json:"ordersCount"`
	GrossRevenue   float64 `json:"grossRevenue"`
	Currency       string  `json:"currency"`
	AvgOrderValue  float64 `json:"avgOrderValue"`
	RefundedAmount float64 `json:"refundedAmount"`
	NetRevenue     float64 `json:"netRevenue"`
	Degraded       bool    `json:"degraded"`
}

// Reduce folds an enriched order list into the aggregate figures in a
// single pass. Unparsable amounts count as zero, currency is
// last-write-wins, and every monetary field is rounded to two decimals
// independently (half away from zero), not cascaded.
func Reduce(orders []Order) MetricsSummary {
	var grossRevenue, refundedAmount float64
	currency := FallbackCurrency

	for _, order := range orders {
		grossRevenue += parseAmount(order.TotalPrice)
		if order.Currency != "" {
			currency = order.Currency
		}
		for _, refund := range order.Refunds {
			refundedAmount += parseAmount(refund.TotalRefundedSet.ShopMoney.Amount)
		}
	}

	ordersCount := len(orders)
	avgOrderValue := 0.0
	if ordersCount > 0 {
		avgOrderValue = grossRevenue / float64(ordersCount)
	}
	netRevenue := grossRevenue - refundedAmount

	return MetricsSummary{
		OrdersCount:    ordersCount,
		GrossRevenue:   round2(grossRevenue),
		Currency:       currency,
		AvgOrderValue:  round2(avgOrderValue),
		RefundedAmount: round2(refundedAmount),
		NetRevenue:     round2(netRevenue),
	}
}

// ZeroSummary is the fallback returned when the order listing call
// fails: every numeric field at zero, currency at the fallback code,
// echoed identifiers preserved.
func ZeroSummary(shopID, fromDate, toDate string) MetricsSummary {
	return MetricsSummary{
		ShopID:   shopID,
		FromDate: fromDate,
		ToDate:   toDate,
		Currency: FallbackCurrency,
		Degraded: true,
	}
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
