package model

import "strings"

// Column — имя колонки в хранимой таблице. Порядок колонок фиксирован схемой.
type Column string

const (
	ColumnTime        Column = "Time"
	ColumnAge         Column = "Age"
	ColumnGender      Column = "Gender"
	ColumnRace        Column = "Race"
	ColumnIntent      Column = "Intent"
	ColumnOutcome     Column = "Outcome"
	ColumnAmount      Column = "Amount"
	ColumnReason      Column = "Reason"
	ColumnType        Column = "Type"
	ColumnPromo       Column = "Promo"
	ColumnContact     Column = "Contact"
	ColumnTargetBrand Column = "Is_Lancome"
	ColumnBrandCats   Column = "Lancome_Cats"
	ColumnDuration    Column = "Duration"
)

// Schema описывает ревизию хранимой таблицы.
type Schema struct {
	Name    string
	Columns []Column
}

var (
	// SchemaBasic — исходные восемь колонок.
	SchemaBasic = Schema{
		Name: "basic",
		Columns: []Column{
			ColumnTime, ColumnAge, ColumnGender, ColumnRace,
			ColumnIntent, ColumnOutcome, ColumnAmount, ColumnReason,
		},
	}
	// SchemaExtended добавляет профиль клиента, промо и бренд.
	SchemaExtended = Schema{
		Name: "extended",
		Columns: []Column{
			ColumnTime, ColumnAge, ColumnGender, ColumnRace,
			ColumnIntent, ColumnOutcome, ColumnAmount, ColumnReason,
			ColumnType, ColumnPromo, ColumnContact, ColumnTargetBrand, ColumnBrandCats, ColumnDuration,
		},
	}
)

// SchemaByName возвращает схему по имени ревизии.
func SchemaByName(name string) (Schema, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SchemaBasic.Name:
		return SchemaBasic, true
	case SchemaExtended.Name:
		return SchemaExtended, true
	}
	return Schema{}, false
}

// Header возвращает строку заголовка таблицы.
func (s Schema) Header() []string {
	h := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		h[i] = string(c)
	}
	return h
}

// Extended сообщает, содержит ли схема расширенные колонки.
func (s Schema) Extended() bool {
	return len(s.Columns) > len(SchemaBasic.Columns)
}

// Field — категориальное поле записи, по которому строятся разбивки.
type Field string

const (
	FieldAge             Field = "age"
	FieldGender          Field = "gender"
	FieldRace            Field = "race"
	FieldIntent          Field = "intent"
	FieldOutcome         Field = "outcome"
	FieldReason          Field = "reason"
	FieldCustomerType    Field = "type"
	FieldPromo           Field = "promo"
	FieldContact         Field = "contact"
	FieldTargetBrand     Field = "is_target_brand"
	FieldBrandCategories Field = "brand_categories"
	FieldDuration        Field = "duration"
)

// Fields перечисляет все категориальные поля в порядке колонок.
var Fields = []Field{
	FieldAge, FieldGender, FieldRace, FieldIntent, FieldOutcome, FieldReason,
	FieldCustomerType, FieldPromo, FieldContact, FieldTargetBrand, FieldBrandCategories, FieldDuration,
}

// ParseField распознаёт имя поля.
func ParseField(s string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Fields {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Multi сообщает, является ли поле многозначным.
func (f Field) Multi() bool {
	return f == FieldPromo || f == FieldBrandCategories
}

// Values возвращает значения поля у записи. Для многозначных полей пустой выбор даёт None.
func (f Field) Values(e SaleEvent) []string {
	switch f {
	case FieldAge:
		return []string{e.AgeBracket}
	case FieldGender:
		return []string{e.Gender}
	case FieldRace:
		return []string{e.RaceEstimate}
	case FieldIntent:
		return []string{e.Intent}
	case FieldOutcome:
		return []string{string(e.Outcome)}
	case FieldReason:
		return []string{e.Reason}
	case FieldCustomerType:
		return []string{e.CustomerType}
	case FieldPromo:
		return listOrNone(e.PromoMethods)
	case FieldContact:
		return []string{e.ContactCaptured}
	case FieldTargetBrand:
		return []string{e.IsTargetBrand}
	case FieldBrandCategories:
		return listOrNone(e.BrandSubCategories)
	case FieldDuration:
		return []string{e.ServiceDuration}
	}
	return nil
}

func listOrNone(values []string) []string {
	if len(values) == 0 {
		return []string{None}
	}
	return values
}
