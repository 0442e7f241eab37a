package sheet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/counter-ledger/internal/model"
)

// EncodeRow сериализует запись в строку фиксированной ширины в порядке колонок схемы.
// Колонка Time пишется в часовом поясе loc, в котором её потом разбирает DecodeRow.
func EncodeRow(schema model.Schema, e model.SaleEvent, loc *time.Location) []string {
	if loc != nil {
		e.Timestamp = e.Timestamp.In(loc)
	}
	row := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		row[i] = encodeCell(c, e)
	}
	return row
}

func encodeCell(c model.Column, e model.SaleEvent) string {
	switch c {
	case model.ColumnTime:
		return e.Timestamp.Format(model.TimeLayout)
	case model.ColumnAge:
		return e.AgeBracket
	case model.ColumnGender:
		return e.Gender
	case model.ColumnRace:
		return e.RaceEstimate
	case model.ColumnIntent:
		return e.Intent
	case model.ColumnOutcome:
		return string(e.Outcome)
	case model.ColumnAmount:
		return e.Amount.String()
	case model.ColumnReason:
		return e.Reason
	case model.ColumnType:
		return e.CustomerType
	case model.ColumnPromo:
		return model.JoinList(e.PromoMethods)
	case model.ColumnContact:
		return e.ContactCaptured
	case model.ColumnTargetBrand:
		return e.IsTargetBrand
	case model.ColumnBrandCats:
		return model.JoinList(e.BrandSubCategories)
	case model.ColumnDuration:
		return e.ServiceDuration
	}
	return ""
}

// DecodeRow разбирает строку таблицы по заголовку. Отсутствующие колонки дают пустые значения,
// нечисловая сумма превращается в ноль.
func DecodeRow(header, row []string, loc *time.Location) model.SaleEvent {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cell := func(c model.Column) string {
		i, ok := idx[strings.ToLower(string(c))]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	e := model.SaleEvent{
		Timestamp:          ParseTime(cell(model.ColumnTime), loc),
		AgeBracket:         cell(model.ColumnAge),
		Gender:             cell(model.ColumnGender),
		RaceEstimate:       cell(model.ColumnRace),
		Intent:             cell(model.ColumnIntent),
		Amount:             ParseAmount(cell(model.ColumnAmount)),
		Reason:             cell(model.ColumnReason),
		CustomerType:       cell(model.ColumnType),
		PromoMethods:       model.SplitList(cell(model.ColumnPromo)),
		ContactCaptured:    cell(model.ColumnContact),
		IsTargetBrand:      cell(model.ColumnTargetBrand),
		BrandSubCategories: model.SplitList(cell(model.ColumnBrandCats)),
		ServiceDuration:    cell(model.ColumnDuration),
	}

	raw := cell(model.ColumnOutcome)
	if o, ok := model.ParseOutcome(raw); ok {
		e.Outcome = o
	} else {
		e.Outcome = model.Outcome(raw)
	}

	return e
}

// ParseAmount приводит значение колонки Amount к числу. Допускает "$" и разделители тысяч,
// всё нечисловое считается нулём.
func ParseAmount(s string) decimal.Decimal {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var timeLayouts = []string{
	model.TimeLayout,
	time.RFC3339,
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
}

// ParseTime разбирает колонку Time в часовом поясе бизнеса. Нераспознанное значение даёт нулевое время.
// В формате нет смещения, поэтому повторяющийся час при переходе на зимнее время
// разбирается как его первое вхождение.
func ParseTime(s string, loc *time.Location) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc)
		}
	}
	return time.Time{}
}
