package parsers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/username/sellfolio/backend/src/models"
)

// Operation basis values the marketplace writes into settlement lines.
const (
	BasisSale   = "Продажа"
	BasisReturn = "Возврат"

	// DefaultOperationLabel groups lines with no resolvable basis
	// (logistics-only, storage-only and similar service lines).
	DefaultOperationLabel = "Прочее"
)

// Days between the spreadsheet serial-date epoch (1900-01-00, including the
// historical leap-year bug) and the Unix epoch.
const serialDateEpochOffsetDays = 25569

var (
	isoDatePrefixRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	dottedDatePrefixRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}`)
)

// genericDateLayouts are tried, in order, for date strings that match neither
// the ISO nor the DD.MM.YYYY prefix.
var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02-01-2006",
	"2006/01/02",
}

// ParseAmount converts a raw cell value to a number. It accepts native
// numeric types and language-local formatted strings (comma decimal
// separator, whitespace thousands separators). Empty or unparseable input
// yields 0, never an error.
func ParseAmount(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		s := stripSpaces(t)
		if s == "" {
			return 0
		}
		s = strings.ReplaceAll(s, ",", ".")
		num, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
			return 0
		}
		return num
	default:
		return 0
	}
}

// ParseQuantity converts a raw cell value to an integer unit count,
// truncating toward zero. Unparseable input yields 0.
func ParseQuantity(v any) int {
	return int(math.Trunc(ParseAmount(v)))
}

// ParseReportDate converts a raw cell value to a date. Branches, in priority
// order: native time values pass through; numbers are spreadsheet serial
// dates; ISO YYYY-MM-DD prefixes; DD.MM.YYYY prefixes; generic layouts.
// Anything else yields nil rather than an error.
func ParseReportDate(v any) *time.Time {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case *time.Time:
		return t
	case float64:
		return serialDate(t)
	case float32:
		return serialDate(float64(t))
	case int:
		return serialDate(float64(t))
	case int64:
		return serialDate(float64(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if isoDatePrefixRe.MatchString(s) {
			return parseLayout("2006-01-02", s[:10])
		}
		if dottedDatePrefixRe.MatchString(s) {
			parts := strings.SplitN(s[:10], ".", 3)
			return parseLayout("2006-01-02", parts[2]+"-"+parts[1]+"-"+parts[0])
		}
		for _, layout := range genericDateLayouts {
			if d := parseLayout(layout, s); d != nil {
				return d
			}
		}
		return nil
	default:
		return nil
	}
}

func serialDate(serial float64) *time.Time {
	ms := (serial - serialDateEpochOffsetDays) * 86400 * 1000
	d := time.UnixMilli(int64(ms)).UTC()
	return &d
}

func parseLayout(layout, s string) *time.Time {
	d, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	d = d.UTC()
	return &d
}

// Normalizer converts raw report lines into typed records. It is stateless;
// Normalize is a pure function of its input.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts one raw record into a NormalizedRecord. It is total:
// missing or malformed fields degrade to zero values, and for return lines
// the realized and transfer amounts are forced negative regardless of the
// sign in the source (reports are inconsistent about pre-negating returns).
func (n *Normalizer) Normalize(row models.RawRecord) models.NormalizedRecord {
	label := ResolveString(row, FieldOperationBasis)
	if label == "" {
		label = DefaultOperationLabel
	}

	rec := models.NormalizedRecord{
		OperationLabel: label,
		OperationKind:  classifyBasis(label),
		SKU:            ResolveString(row, FieldSKU),

		RealizedAmount:          resolveAmount(row, FieldRealizedAmount),
		TransferAmount:          resolveAmount(row, FieldTransferAmount),
		LogisticsFee:            resolveAmount(row, FieldLogisticsFee),
		FinesAmount:             resolveAmount(row, FieldFinesAmount),
		StorageFee:              resolveAmount(row, FieldStorageFee),
		WithholdingsAmount:      resolveAmount(row, FieldWithholdingsAmount),
		AcceptanceFee:           resolveAmount(row, FieldAcceptanceFee),
		CommissionRatePct:       resolveAmount(row, FieldCommissionRatePct),
		AcquiringRatePct:        resolveAmount(row, FieldAcquiringRatePct),
		RetailPrice:             resolveAmount(row, FieldRetailPrice),
		RetailPriceWithDiscount: resolveAmount(row, FieldRetailPriceWithDiscount),
		AgreedDiscountPct:       resolveAmount(row, FieldAgreedDiscountPct),

		NomenclatureID: ResolveString(row, FieldNomenclatureID),
		Brand:          ResolveString(row, FieldBrand),
		Subject:        ResolveString(row, FieldSubject),
		Barcode:        ResolveString(row, FieldBarcode),
	}

	if v, ok := Resolve(row, FieldSaleDate); ok {
		rec.Date = ParseReportDate(v)
	}

	if v, ok := Resolve(row, FieldQuantity); ok {
		q := ParseQuantity(v)
		if q < 0 {
			q = -q
		}
		rec.Quantity = q
	}

	if rec.OperationKind == models.OperationReturn {
		rec.RealizedAmount = -math.Abs(rec.RealizedAmount)
		rec.TransferAmount = -math.Abs(rec.TransferAmount)
	}

	return rec
}

func classifyBasis(label string) models.OperationKind {
	switch label {
	case BasisSale:
		return models.OperationSale
	case BasisReturn:
		return models.OperationReturn
	default:
		return models.OperationOther
	}
}

func resolveAmount(row models.RawRecord, field CanonicalField) float64 {
	v, ok := Resolve(row, field)
	if !ok {
		return 0
	}
	return ParseAmount(v)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(v)
	}
}
