// Package metrics вычисляет показатели продаж по набору записей. Все функции чистые.
package metrics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/counter-ledger/internal/model"
)

// DateLayout — формат бизнес-даты.
const DateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// TotalSales возвращает сумму продаж.
func TotalSales(events []model.SaleEvent) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		total = total.Add(e.Amount)
	}
	return total
}

// TrafficCount возвращает число взаимодействий.
func TrafficCount(events []model.SaleEvent) int {
	return len(events)
}

// BoughtCount возвращает число взаимодействий, закончившихся покупкой.
func BoughtCount(events []model.SaleEvent) int {
	n := 0
	for _, e := range events {
		if e.Bought() {
			n++
		}
	}
	return n
}

// ConversionRate возвращает долю покупок в процентах. Пустой набор даёт 0.
func ConversionRate(events []model.SaleEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	return float64(BoughtCount(events)) / float64(len(events)) * 100
}

// AverageOrderValue возвращает средний чек; 0, если покупок не было.
func AverageOrderValue(events []model.SaleEvent) decimal.Decimal {
	bought := BoughtCount(events)
	if bought == 0 {
		return decimal.Zero
	}
	return TotalSales(events).Div(decimal.NewFromInt(int64(bought)))
}

// ByCategory группирует сумму продаж по значению поля.
// Для многозначного поля вся сумма записи засчитывается каждому выбранному значению.
func ByCategory(events []model.SaleEvent, f model.Field) map[string]decimal.Decimal {
	res := make(map[string]decimal.Decimal)
	for _, e := range events {
		for _, v := range f.Values(e) {
			res[v] = res[v].Add(e.Amount)
		}
	}
	return res
}

// CountByCategory считает записи по значению поля.
func CountByCategory(events []model.SaleEvent, f model.Field) map[string]int {
	res := make(map[string]int)
	for _, e := range events {
		for _, v := range f.Values(e) {
			res[v]++
		}
	}
	return res
}

// FilterByDate оставляет записи, попадающие на календарную дату day в часовом поясе loc.
func FilterByDate(events []model.SaleEvent, day time.Time, loc *time.Location) []model.SaleEvent {
	y, m, d := day.Date()
	res := make([]model.SaleEvent, 0, len(events))
	for _, e := range events {
		ey, em, ed := e.Timestamp.In(loc).Date()
		if ey == y && em == m && ed == d {
			res = append(res, e)
		}
	}
	return res
}

// Dates возвращает различные бизнес-даты записей, начиная с самой свежей.
func Dates(events []model.SaleEvent, loc *time.Location) []string {
	seen := make(map[string]struct{})
	var res []string
	for _, e := range events {
		if e.Timestamp.IsZero() {
			continue
		}
		d := e.Timestamp.In(loc).Format(DateLayout)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		res = append(res, d)
	}
	slices.Sort(res)
	slices.Reverse(res)
	return res
}

// GoalProgress возвращает выполнение дневной цели в процентах. Без цели результат 0.
func GoalProgress(total, goal decimal.Decimal) float64 {
	if !goal.IsPositive() {
		return 0
	}
	return total.Div(goal).Mul(hundred).InexactFloat64()
}

// Summary собирает показатели для отображения.
type Summary struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	Traffic           int             `json:"traffic"`
	Bought            int             `json:"bought"`
	ConversionRate    float64         `json:"conversion_rate"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	Goal              decimal.Decimal `json:"goal"`
	GoalProgress      float64         `json:"goal_progress"`
	NoBuyReasons      map[string]int  `json:"no_buy_reasons"`
}

// Summarize считает сводку по набору записей.
func Summarize(events []model.SaleEvent, goal decimal.Decimal) Summary {
	total := TotalSales(events)

	var lost []model.SaleEvent
	for _, e := range events {
		if e.Outcome == model.OutcomeNoBuy {
			lost = append(lost, e)
		}
	}

	return Summary{
		TotalSales:        total,
		Traffic:           TrafficCount(events),
		Bought:            BoughtCount(events),
		ConversionRate:    ConversionRate(events),
		AverageOrderValue: AverageOrderValue(events),
		Goal:              goal,
		GoalProgress:      GoalProgress(total, goal),
		NoBuyReasons:      CountByCategory(lost, model.FieldReason),
	}
}
