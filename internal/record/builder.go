// Package record собирает запись о взаимодействии из значений формы.
package record

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/counter-ledger/internal/model"
	"github.com/mmeshcher/counter-ledger/internal/validation"
)

// Draft содержит сырые значения формы до проверки.
type Draft struct {
	Age     string           `json:"age"`
	Gender  string           `json:"gender"`
	Race    string           `json:"race"`
	Intent  string           `json:"intent"`
	Outcome string           `json:"outcome"`
	Amount  *decimal.Decimal `json:"amount"`
	Reason  string           `json:"reason"`

	CustomerType       string   `json:"customer_type"`
	PromoMethods       []string `json:"promo_methods"`
	ContactCaptured    string   `json:"contact_captured"`
	IsTargetBrand      string   `json:"is_target_brand"`
	BrandSubCategories []string `json:"brand_sub_categories"`
	ServiceDuration    string   `json:"service_duration"`
}

// Builder проверяет и нормализует черновики записей.
type Builder struct {
	catalog *model.Catalog
	schema  model.Schema
}

// NewBuilder создаёт сборщик для каталога значений и ревизии схемы.
func NewBuilder(catalog *model.Catalog, schema model.Schema) *Builder {
	return &Builder{
		catalog: catalog,
		schema:  schema,
	}
}

// Build превращает черновик в запись. Время передаёт вызывающий, сборщик лишь отбрасывает доли секунды.
func (b *Builder) Build(d Draft, ts time.Time) (model.SaleEvent, error) {
	// Итог выбирается первым: от него зависят остальные обязательные поля.
	outcome, err := validation.OneOf(b.catalog, model.FieldOutcome, d.Outcome)
	if err != nil {
		return model.SaleEvent{}, err
	}

	e := model.SaleEvent{
		Timestamp: ts.Truncate(time.Second),
		Outcome:   model.Outcome(outcome),
	}

	optional := []struct {
		field model.Field
		value string
		dst   *string
	}{
		{model.FieldAge, d.Age, &e.AgeBracket},
		{model.FieldGender, d.Gender, &e.Gender},
		{model.FieldRace, d.Race, &e.RaceEstimate},
		{model.FieldIntent, d.Intent, &e.Intent},
	}
	for _, o := range optional {
		if *o.dst, err = validation.OptionalOneOf(b.catalog, o.field, o.value); err != nil {
			return model.SaleEvent{}, err
		}
	}

	switch e.Outcome {
	case model.OutcomeBought:
		if e.Amount, err = validation.Amount(d.Amount, true); err != nil {
			return model.SaleEvent{}, err
		}
		e.Reason = ""
	case model.OutcomeNoBuy:
		if _, err = validation.Amount(d.Amount, false); err != nil {
			return model.SaleEvent{}, err
		}
		e.Amount = decimal.Zero
		if e.Reason, err = validation.OneOf(b.catalog, model.FieldReason, d.Reason); err != nil {
			return model.SaleEvent{}, err
		}
	}

	if !b.schema.Extended() {
		return e, nil
	}

	if e.Outcome == model.OutcomeNoBuy {
		e.Intent = model.Unset
	}

	if err := b.buildExtended(d, &e); err != nil {
		return model.SaleEvent{}, err
	}

	return e, nil
}

func (b *Builder) buildExtended(d Draft, e *model.SaleEvent) error {
	var err error

	if e.CustomerType, err = validation.OptionalOneOf(b.catalog, model.FieldCustomerType, d.CustomerType); err != nil {
		return err
	}
	if e.PromoMethods, err = validation.SubsetOf(b.catalog, model.FieldPromo, d.PromoMethods); err != nil {
		return err
	}
	if e.ContactCaptured, err = validation.OptionalOneOf(b.catalog, model.FieldContact, d.ContactCaptured); err != nil {
		return err
	}
	if e.IsTargetBrand, err = validation.OptionalOneOf(b.catalog, model.FieldTargetBrand, d.IsTargetBrand); err != nil {
		return err
	}
	// Подкатегории бренда имеют смысл только для целевого бренда.
	if e.IsTargetBrand == "Yes" {
		if e.BrandSubCategories, err = validation.SubsetOf(b.catalog, model.FieldBrandCategories, d.BrandSubCategories); err != nil {
			return err
		}
	}
	if e.ServiceDuration, err = validation.OptionalOneOf(b.catalog, model.FieldDuration, d.ServiceDuration); err != nil {
		return err
	}

	return nil
}
