package model

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog хранит закрытые наборы допустимых значений категориальных полей.
type Catalog struct {
	options map[Field][]string
}

// DefaultCatalog возвращает встроенный каталог значений.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultCatalog)
}

// LoadCatalog разбирает YAML-описание каталога. Каждое известное поле обязано иметь хотя бы одно значение.
func LoadCatalog(data []byte) (*Catalog, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{options: make(map[Field][]string, len(raw))}
	for name, values := range raw {
		f, ok := ParseField(name)
		if !ok {
			return nil, fmt.Errorf("catalog: unknown field %q", name)
		}
		for _, v := range values {
			if v == "" || v == Unset || (f.Multi() && v == None) {
				return nil, fmt.Errorf("catalog: reserved value %q in field %q", v, name)
			}
			if f.Multi() && strings.Contains(v, ",") {
				return nil, fmt.Errorf("catalog: value %q in multi-valued field %q contains a comma", v, name)
			}
		}
		c.options[f] = slices.Clone(values)
	}

	for _, f := range Fields {
		if len(c.options[f]) == 0 {
			return nil, fmt.Errorf("catalog: field %q has no options", f)
		}
	}

	return c, nil
}

// Options возвращает копию набора значений поля.
func (c *Catalog) Options(f Field) []string {
	return slices.Clone(c.options[f])
}

// Contains проверяет, входит ли значение в набор поля.
func (c *Catalog) Contains(f Field, value string) bool {
	return slices.Contains(c.options[f], value)
}

// Sort упорядочивает значения многозначного поля в порядке каталога.
func (c *Catalog) Sort(f Field, values []string) []string {
	opts := c.options[f]
	res := slices.Clone(values)
	slices.SortStableFunc(res, func(a, b string) int {
		return slices.Index(opts, a) - slices.Index(opts, b)
	})
	return res
}

// All возвращает весь каталог, например для отрисовки формы.
func (c *Catalog) All() map[Field][]string {
	res := make(map[Field][]string, len(c.options))
	for f, v := range c.options {
		res[f] = slices.Clone(v)
	}
	return res
}
