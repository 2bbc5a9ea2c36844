// internal/domain/analytics/service.go
package analytics

import (
	"sort"
	"time"

	"github.com/your-org/brewflow-storefront/internal/domain/order"
)

// Service computes the admin dashboard figures from the order board
type Service struct {
	now func() time.Time
}

// NewService creates a new analytics service
func NewService() *Service {
	return &Service{now: time.Now}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Sales metrics. Pending orders are not revenue yet.
	TotalRevenue     float64 `json:"total_revenue"`
	RevenueToday     float64 `json:"revenue_today"`
	RevenueThisWeek  float64 `json:"revenue_this_week"`
	RevenueThisMonth float64 `json:"revenue_this_month"`

	// Order metrics
	TotalOrders     int `json:"total_orders"`
	OrdersToday     int `json:"orders_today"`
	OrdersThisWeek  int `json:"orders_this_week"`
	OrdersThisMonth int `json:"orders_this_month"`
	OpenOrders      int `json:"open_orders"` // not yet served

	// Customer metrics
	TotalCustomers     int     `json:"total_customers"`
	RepeatCustomerRate float64 `json:"repeat_customer_rate"` // Percentage
	AvgOrderValue      float64 `json:"avg_order_value"`

	SalesByStatus []StatusData       `json:"sales_by_status"`
	TopProducts   []ProductSalesData `json:"top_products"`
	DailyRevenue  []TimeSeriesData   `json:"daily_revenue"` // last 7 days, oldest first
}

type TimeSeriesData struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

type ProductSalesData struct {
	ProductName string  `json:"product_name"`
	TotalSold   int     `json:"total_sold"`
	Revenue     float64 `json:"revenue"`
	OrderCount  int     `json:"order_count"`
}

type StatusData struct {
	Status order.PaymentStatus `json:"status"`
	Count  int                 `json:"count"`
	Value  float64             `json:"value"`
}

const (
	topProductsLimit = 5
	dailyWindow      = 7
)

// GetDashboardStats summarises orders as seen at the current time
func (s *Service) GetDashboardStats(orders []order.Order) *DashboardStats {
	stats := &DashboardStats{TotalOrders: len(orders)}
	now := s.now()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisWeek := today.AddDate(0, 0, -int(today.Weekday()))
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	windowStart := today.AddDate(0, 0, -(dailyWindow - 1))

	byStatus := make(map[order.PaymentStatus]*StatusData, len(order.Statuses))
	for _, st := range order.Statuses {
		byStatus[st] = &StatusData{Status: st}
	}
	ordersPerCustomer := map[string]int{}
	products := map[string]*ProductSalesData{}
	daily := make([]TimeSeriesData, dailyWindow)
	for i := range daily {
		daily[i].Date = windowStart.AddDate(0, 0, i).Format("2006-01-02")
	}

	paidOrders := 0
	for _, o := range orders {
		created := o.CreatedAt.In(now.Location())
		paid := o.PaymentStatus.Valid() && o.PaymentStatus != order.PaymentStatusPending

		if sd, ok := byStatus[o.PaymentStatus]; ok {
			sd.Count++
			sd.Value += o.Total
		}
		if o.PaymentStatus != order.PaymentStatusServed {
			stats.OpenOrders++
		}
		if o.CustomerID != "" {
			ordersPerCustomer[o.CustomerID]++
		}

		if !created.Before(today) {
			stats.OrdersToday++
		}
		if !created.Before(thisWeek) {
			stats.OrdersThisWeek++
		}
		if !created.Before(thisMonth) {
			stats.OrdersThisMonth++
		}

		if !paid {
			continue
		}
		paidOrders++
		stats.TotalRevenue += o.Total
		if !created.Before(today) {
			stats.RevenueToday += o.Total
		}
		if !created.Before(thisWeek) {
			stats.RevenueThisWeek += o.Total
		}
		if !created.Before(thisMonth) {
			stats.RevenueThisMonth += o.Total
		}
		if !created.Before(windowStart) {
			day := int(created.Sub(windowStart).Hours() / 24)
			if day < dailyWindow {
				daily[day].Value += o.Total
				daily[day].Count++
			}
		}

		for _, it := range o.Items {
			p, ok := products[it.Name]
			if !ok {
				p = &ProductSalesData{ProductName: it.Name}
				products[it.Name] = p
			}
			p.TotalSold += it.Quantity
			p.Revenue += it.Price * float64(it.Quantity)
			p.OrderCount++
		}
	}

	if paidOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / float64(paidOrders)
	}

	stats.TotalCustomers = len(ordersPerCustomer)
	if stats.TotalCustomers > 0 {
		repeat := 0
		for _, n := range ordersPerCustomer {
			if n > 1 {
				repeat++
			}
		}
		stats.RepeatCustomerRate = float64(repeat) / float64(stats.TotalCustomers) * 100
	}

	for _, st := range order.Statuses {
		stats.SalesByStatus = append(stats.SalesByStatus, *byStatus[st])
	}
	stats.TopProducts = topProducts(products, topProductsLimit)
	stats.DailyRevenue = daily

	return stats
}

func topProducts(products map[string]*ProductSalesData, limit int) []ProductSalesData {
	out := make([]ProductSalesData, 0, len(products))
	for _, p := range products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSold != out[j].TotalSold {
			return out[i].TotalSold > out[j].TotalSold
		}
		return out[i].ProductName < out[j].ProductName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
