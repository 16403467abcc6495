// Package prompt collects address fields interactively, one prompt per
// mnemonic field of the chosen country.
package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/country"
)

// Option configures a Collector.
type Option func(*Collector)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(c *Collector) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithDefaults prefills answers keyed by mnemonic field name.
func WithDefaults(defaults map[string]string) Option {
	return func(c *Collector) {
		for name, value := range defaults {
			c.defaults[name] = value
		}
	}
}

// WithConfirm asks for confirmation of the collected fields before returning.
func WithConfirm() Option {
	return func(c *Collector) {
		c.confirm = true
	}
}

// Collector walks the mnemonic fields of a country and prompts for each.
type Collector struct {
	driver   Driver
	defaults map[string]string
	confirm  bool
}

// New constructs a Collector using the survey driver unless overridden.
func New(options ...Option) *Collector {
	c := &Collector{defaults: make(map[string]string)}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.driver == nil {
		c.driver = NewSurveyDriver(nil)
	}
	return c
}

// ChooseCountry asks for one of the countries that have a mnemonic map.
// preferred, when set and valid, is the default answer.
func (c *Collector) ChooseCountry(ctx context.Context, preferred string) (country.Country, error) {
	var candidates []country.Country
	for _, iso := range country.Default().All() {
		if _, err := address.MnemonicsFor(iso); err == nil {
			candidates = append(candidates, iso)
		}
	}
	if len(candidates) == 0 {
		return country.Country{}, ErrNoCountries
	}

	options := make([]string, len(candidates))
	defaultIndex := 0
	for i, iso := range candidates {
		options[i] = fmt.Sprintf("%s (%s)", iso.Name, iso.Alpha2)
		if strings.EqualFold(iso.Alpha2, preferred) {
			defaultIndex = i
		}
	}

	idx, err := c.driver.Select(ctx, SelectConfig{
		Message:      "Country",
		Options:      options,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return country.Country{}, err
	}
	if idx < 0 || idx >= len(candidates) {
		return country.Country{}, fmt.Errorf("prompt: invalid country choice %d", idx)
	}
	return candidates[idx], nil
}

// Collect prompts for every mnemonic field of iso in element code order and
// returns the non-blank answers. The "country" field is set to iso's alpha-2
// code so the result can be passed to address.FromDTO.
func (c *Collector) Collect(ctx context.Context, iso country.Country) (map[string]string, error) {
	names, err := address.MnemonicsFor(iso)
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}

	for {
		fields := map[string]string{address.FieldCountry: iso.Alpha2}
		for _, field := range FieldOrder(names) {
			answer, err := c.driver.Input(ctx, InputConfig{
				Message: Label(field),
				Default: c.defaultFor(iso, field),
				Help:    "element " + names[field],
			})
			if err != nil {
				return nil, err
			}
			if answer = strings.TrimSpace(answer); answer != "" {
				fields[field] = answer
			}
		}

		if !c.confirm {
			return fields, nil
		}
		if err := c.driver.Info(ctx, Summary(names, fields)); err != nil {
			return nil, err
		}
		ok, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Use this address?", Default: true})
		if err != nil {
			return nil, err
		}
		if ok {
			return fields, nil
		}
		for name, value := range fields {
			c.defaults[name] = value
		}
	}
}

func (c *Collector) defaultFor(iso country.Country, field string) string {
	if v, ok := c.defaults[field]; ok {
		return v
	}
	if field == address.FieldCountryName {
		return iso.Name
	}
	return ""
}

// FieldOrder returns the field names of a mnemonic map sorted by element
// code, so related elements are asked for together.
func FieldOrder(names map[string]string) []string {
	fields := make([]string, 0, len(names))
	for name := range names {
		fields = append(fields, name)
	}
	sort.Slice(fields, func(i, j int) bool {
		a, errA := code.Parse(names[fields[i]])
		b, errB := code.Parse(names[fields[j]])
		if errA != nil || errB != nil || a == b {
			return fields[i] < fields[j]
		}
		return a.String() < b.String()
	})
	return fields
}

// Label turns a field name such as "street_number" into "Street number".
func Label(field string) string {
	words := strings.ReplaceAll(field, "_", " ")
	if words == "" {
		return ""
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

// Summary lists collected fields one per line as "Label: value".
func Summary(names map[string]string, fields map[string]string) string {
	var b strings.Builder
	for _, field := range FieldOrder(names) {
		if v, ok := fields[field]; ok {
			fmt.Fprintf(&b, "%s: %s\n", Label(field), v)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
