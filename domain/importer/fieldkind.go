package importer

import (
	"fmt"
	"strings"
)

// FieldKind identifies the domain field a spreadsheet column is bound to.
// The set is closed: every kind has exactly one normalization rule.
type FieldKind string

const (
	KindIgnore         FieldKind = "ignore"
	KindCode           FieldKind = "code"
	KindAddress        FieldKind = "address"
	KindLatitude       FieldKind = "latitude"
	KindLongitude      FieldKind = "longitude"
	KindMeasurement    FieldKind = "measurement"
	KindFlowCount      FieldKind = "flow_count"
	KindTypeTags       FieldKind = "type_tags"
	KindFreeText       FieldKind = "free_text"
	KindReferencePoint FieldKind = "reference_point"
	KindPriceLocation  FieldKind = "price_location"
	KindPeriodLocation FieldKind = "period_location"
	KindPricePaper     FieldKind = "price_paper"
	KindPriceTarp      FieldKind = "price_tarp"
)

// AllKinds lists every assignable kind, ignore included.
func AllKinds() []FieldKind {
	return []FieldKind{
		KindIgnore, KindCode, KindAddress, KindLatitude, KindLongitude,
		KindMeasurement, KindFlowCount, KindTypeTags, KindFreeText,
		KindReferencePoint, KindPriceLocation, KindPeriodLocation,
		KindPricePaper, KindPriceTarp,
	}
}

// RequiredKinds are the kinds that must be mapped before an import can proceed.
func RequiredKinds() []FieldKind {
	return []FieldKind{KindCode, KindAddress, KindLatitude, KindLongitude}
}

// IsRequired reports whether an empty cell under this kind is an error.
func (k FieldKind) IsRequired() bool {
	switch k {
	case KindCode, KindAddress, KindLatitude, KindLongitude:
		return true
	}
	return false
}

// IsValid reports whether k is a member of the closed enum.
func (k FieldKind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ParseFieldKind parses a string into a FieldKind
func ParseFieldKind(s string) (FieldKind, error) {
	k := FieldKind(strings.TrimSpace(s))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown field kind: %q", s)
	}
	return k, nil
}

// headerSynonyms maps normalized spreadsheet headers to field kinds.
// Derived from the header variants seen in exhibitor-supplied sheets,
// Portuguese and English alike.
var headerSynonyms = map[string]FieldKind{
	"codigo":           KindCode,
	"codigo ooh":       KindCode,
	"cod":              KindCode,
	"code":             KindCode,
	"id":               KindCode,
	"endereco":         KindAddress,
	"address":          KindAddress,
	"local":            KindAddress,
	"localizacao":      KindAddress,
	"lat":              KindLatitude,
	"latitude":         KindLatitude,
	"lng":              KindLongitude,
	"lon":              KindLongitude,
	"long":             KindLongitude,
	"longitude":        KindLongitude,
	"medida":           KindMeasurement,
	"medidas":          KindMeasurement,
	"tamanho":          KindMeasurement,
	"size":             KindMeasurement,
	"dimensao":         KindMeasurement,
	"fluxo":            KindFlowCount,
	"flow":             KindFlowCount,
	"trafego":          KindFlowCount,
	"tipo":             KindTypeTags,
	"tipos":            KindTypeTags,
	"type":             KindTypeTags,
	"obs":              KindFreeText,
	"observacao":       KindFreeText,
	"observacoes":      KindFreeText,
	"referencia":       KindReferencePoint,
	"ponto referencia": KindReferencePoint,
	"locacao":          KindPriceLocation,
	"aluguel":          KindPriceLocation,
	"rent":             KindPriceLocation,
	"valor locacao":    KindPriceLocation,
	"periodo":          KindPeriodLocation,
	"periodo locacao":  KindPeriodLocation,
	"papel":            KindPricePaper,
	"paper":            KindPricePaper,
	"valor papel":      KindPricePaper,
	"lona":             KindPriceTarp,
	"canvas":           KindPriceTarp,
	"valor lona":       KindPriceTarp,
}

// headerFragments is checked in order after exact lookup fails; longer,
// more specific fragments come first so "periodo locacao" resolves to the
// period kind rather than the price kind.
var headerFragments = []struct {
	fragment string
	kind     FieldKind
}{
	{"periodo", KindPeriodLocation},
	{"codigo", KindCode},
	{"endereco", KindAddress},
	{"address", KindAddress},
	{"latitude", KindLatitude},
	{"longitude", KindLongitude},
	{"medida", KindMeasurement},
	{"tamanho", KindMeasurement},
	{"fluxo", KindFlowCount},
	{"trafego", KindFlowCount},
	{"tipo", KindTypeTags},
	{"observac", KindFreeText},
	{"referencia", KindReferencePoint},
	{"locacao", KindPriceLocation},
	{"aluguel", KindPriceLocation},
	{"papel", KindPricePaper},
	{"lona", KindPriceTarp},
}

// SuggestKind guesses the field kind for a column header, or ignore when
// nothing matches. Matching is accent-insensitive, so "Código OOH" and
// "valor de locação" both resolve.
func SuggestKind(header string) FieldKind {
	normalized := foldAccents(strings.ToLower(strings.TrimSpace(header)))
	if kind, ok := headerSynonyms[normalized]; ok {
		return kind
	}
	for _, entry := range headerFragments {
		if strings.Contains(normalized, entry.fragment) {
			return entry.kind
		}
	}
	return KindIgnore
}
