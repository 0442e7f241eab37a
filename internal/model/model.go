// Package model содержит доменные сущности журнала продаж у прилавка.
package model

import (
	"strings"
	"time"
	// Часовой пояс бизнеса должен разрешаться независимо от tzdata на хосте.
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

const (
	// Unset обозначает невыбранное необязательное категориальное поле.
	Unset = "N/A"
	// None обозначает пустой выбор в многозначном поле.
	None = "None"
	// ListSeparator разделяет значения многозначного поля в строке таблицы.
	ListSeparator = ", "
	// TimeLayout задаёт формат колонки Time.
	TimeLayout = "2006-01-02 15:04:05"
)

// Outcome описывает итог взаимодействия с покупателем.
type Outcome string

const (
	OutcomeBought Outcome = "Bought"
	OutcomeNoBuy  Outcome = "No Buy"
)

// ParseOutcome распознаёт итог, включая старые подписи вида "Bought (买了)".
func ParseOutcome(s string) (Outcome, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(v, "bought"):
		return OutcomeBought, true
	case strings.HasPrefix(v, "no buy"), strings.HasPrefix(v, "nobuy"), strings.HasPrefix(v, "no_buy"):
		return OutcomeNoBuy, true
	}
	return "", false
}

// SaleEvent описывает одно взаимодействие у прилавка. Создаётся один раз и далее не меняется.
type SaleEvent struct {
	Timestamp    time.Time       `json:"timestamp"`
	AgeBracket   string          `json:"age"`
	Gender       string          `json:"gender"`
	RaceEstimate string          `json:"race"`
	Intent       string          `json:"intent"`
	Outcome      Outcome         `json:"outcome"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`

	CustomerType       string   `json:"customer_type,omitempty"`
	PromoMethods       []string `json:"promo_methods,omitempty"`
	ContactCaptured    string   `json:"contact_captured,omitempty"`
	IsTargetBrand      string   `json:"is_target_brand,omitempty"`
	BrandSubCategories []string `json:"brand_sub_categories,omitempty"`
	ServiceDuration    string   `json:"service_duration,omitempty"`
}

// Bought сообщает, завершилось ли взаимодействие покупкой.
func (e SaleEvent) Bought() bool {
	return e.Outcome == OutcomeBought
}

// JoinList сериализует многозначное поле; пустой выбор превращается в None.
func JoinList(values []string) string {
	if len(values) == 0 {
		return None
	}
	return strings.Join(values, ListSeparator)
}

// SplitList разбирает значение, записанное JoinList.
func SplitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == None || s == Unset {
		return nil
	}
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}
