// Package validation содержит проверки входных данных формы.
package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/counter-ledger/internal/model"
)

// ValidationError сообщает о некорректном или отсутствующем поле.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newError(field model.Field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: string(field), Message: fmt.Sprintf(format, args...)}
}

// Catalog описывает закрытые наборы значений.
type Catalog interface {
	Contains(f model.Field, value string) bool
	Sort(f model.Field, values []string) []string
}

// OneOf проверяет обязательное поле на принадлежность набору.
func OneOf(c Catalog, f model.Field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == model.Unset {
		return "", newError(f, "value is required")
	}
	if !c.Contains(f, v) {
		return "", newError(f, "%q is not an allowed value", v)
	}
	return v, nil
}

// OptionalOneOf проверяет необязательное поле; пустое значение становится model.Unset.
func OptionalOneOf(c Catalog, f model.Field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" || v == model.Unset {
		return model.Unset, nil
	}
	if !c.Contains(f, v) {
		return "", newError(f, "%q is not an allowed value", v)
	}
	return v, nil
}

// SubsetOf проверяет многозначное поле, убирает повторы и упорядочивает значения по каталогу.
func SubsetOf(c Catalog, f model.Field, values []string) ([]string, error) {
	seen := make(map[string]struct{}, len(values))
	res := make([]string, 0, len(values))
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" || v == model.None {
			continue
		}
		if !c.Contains(f, v) {
			return nil, newError(f, "%q is not an allowed value", v)
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	if len(res) == 0 {
		return nil, nil
	}
	return c.Sort(f, res), nil
}

// Amount проверяет сумму покупки.
func Amount(amount *decimal.Decimal, required bool) (decimal.Decimal, error) {
	if amount == nil {
		if required {
			return decimal.Zero, &ValidationError{Field: "amount", Message: "value is required"}
		}
		return decimal.Zero, nil
	}
	if amount.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if required && amount.IsZero() {
		return decimal.Zero, &ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	return *amount, nil
}
