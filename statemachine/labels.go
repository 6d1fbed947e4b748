package statemachine

import "food-delivery-tracking/models"

// Locale selects the language of user-facing text.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// DefaultLocale is used when a requested locale has no table.
const DefaultLocale = LocaleEnglish

var statusLabels = map[Locale]map[models.OrderStatus]string{
	LocaleEnglish: {
		models.StatusPending:   "Awaiting confirmation",
		models.StatusConfirmed: "Order confirmed",
		models.StatusPreparing: "Order is being prepared",
		models.StatusReady:     "Order ready for pickup",
		models.StatusPickedUp:  "Order picked up",
		models.StatusDelivered: "Order delivered",
		models.StatusCancelled: "Order cancelled",
	},
	LocaleArabic: {
		models.StatusPending:   "في انتظار التأكيد",
		models.StatusConfirmed: "تم تأكيد الطلب",
		models.StatusPreparing: "يتم تحضير الطلب",
		models.StatusReady:     "الطلب جاهز للاستلام",
		models.StatusPickedUp:  "تم استلام الطلب",
		models.StatusDelivered: "تم توصيل الطلب",
		models.StatusCancelled: "تم إلغاء الطلب",
	},
}

// Label returns the localized description of status, falling back to the
// default locale and then to the raw status value.
func Label(status models.OrderStatus, locale Locale) string {
	if label, ok := statusLabels[locale][status]; ok {
		return label
	}
	if label, ok := statusLabels[DefaultLocale][status]; ok {
		return label
	}
	return string(status)
}

// ParseLocale maps a language tag base to a supported locale.
func ParseLocale(s string) Locale {
	switch Locale(s) {
	case LocaleArabic:
		return LocaleArabic
	}
	return LocaleEnglish
}
