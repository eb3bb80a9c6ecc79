package parsers

import (
	"strings"

	"github.com/username/sellfolio/backend/src/models"
)

// CanonicalField identifies one logical column of a settlement report.
// Marketplace reports rename columns between versions, so every canonical
// field resolves through an ordered list of known header synonyms.
type CanonicalField int

const (
	FieldSKU CanonicalField = iota
	FieldOperationBasis
	FieldSaleDate
	FieldQuantity
	FieldRealizedAmount
	FieldTransferAmount
	FieldLogisticsFee
	FieldFinesAmount
	FieldStorageFee
	FieldWithholdingsAmount
	FieldAcceptanceFee
	FieldCommissionRatePct
	FieldAcquiringRatePct
	FieldRetailPrice
	FieldRetailPriceWithDiscount
	FieldAgreedDiscountPct
	FieldNomenclatureID
	FieldBrand
	FieldSubject
	FieldBarcode
	FieldReportNumber
)

// fieldSynonyms lists the raw header names tried for each canonical field,
// in priority order. The names are the headers Wildberries has used across
// settlement report versions.
var fieldSynonyms = map[CanonicalField][]string{
	FieldSKU:                     {"Артикул поставщика", "Артикул", "vendor_code", "SaName"},
	FieldOperationBasis:          {"Обоснование для оплаты", "Тип документа"},
	FieldSaleDate:                {"Дата продажи", "Дата"},
	FieldQuantity:                {"Кол-во"},
	FieldRealizedAmount:          {"Вайлдберриз реализовал Товар (Пр)"},
	FieldTransferAmount:          {"К перечислению Продавцу за реализованный Товар"},
	FieldLogisticsFee:            {"Услуги по доставке товара покупателю"},
	FieldFinesAmount:             {"Общая сумма штрафов"},
	FieldStorageFee:              {"Хранение", "Сумма по полю Хранение"},
	FieldWithholdingsAmount:      {"Удержания", "Сумма по полю Удержания"},
	FieldAcceptanceFee:           {"Операции на приемке", "Сумма по полю Операции на приемке"},
	FieldCommissionRatePct:       {"Размер кВВ, %"},
	FieldAcquiringRatePct:        {"Размер комиссии за эквайринг/Комиссии за организацию платежей, %"},
	FieldRetailPrice:             {"Цена розничная"},
	FieldRetailPriceWithDiscount: {"Цена розничная с учетом согласованной скидки"},
	FieldAgreedDiscountPct:       {"Итоговая согласованная скидка, %"},
	FieldNomenclatureID:          {"Код номенклатуры"},
	FieldBrand:                   {"Бренд"},
	FieldSubject:                 {"Предмет"},
	FieldBarcode:                 {"Баркод"},
	FieldReportNumber:            {"№", "Номер отчета", "n"},
}

// Resolve returns the first non-empty value for field among its synonym
// keys. ok is false when no synonym carries a value; callers treat that as
// "missing", never as an error.
func Resolve(row models.RawRecord, field CanonicalField) (value any, ok bool) {
	for _, key := range fieldSynonyms[field] {
		v, exists := row[key]
		if !exists || isEmptyValue(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

// ResolveString resolves field and renders it as a trimmed string, "" when
// missing.
func ResolveString(row models.RawRecord, field CanonicalField) string {
	v, ok := Resolve(row, field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringValue(v))
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return t == 0
	case float32:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	default:
		return false
	}
}
