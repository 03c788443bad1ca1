package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys used across the checkout surfaces. The key doubles as the
// English message; other locales register translations in the catalog.
const (
	KeyContinue      = "Continue"
	KeyEdit          = "Edit"
	KeySubmitOrder   = "Submit order"
	KeyLoading       = "Loading checkout"
	KeyStepOf        = "Step %d of %d"
	KeyStepBroken    = "This section could not be displayed"
	KeyApplyCoupon   = "Apply coupon"
	KeyCouponApplied = "Coupon applied"
	KeyCouponInvalid = "Coupon code is not valid"
	KeyComplete      = "Complete"
	KeyValidating    = "Checking your details"
	KeyOrderComplete = "Order complete"
)

type entry struct {
	tag language.Tag
	key string
	msg string
}

var entries = []entry{
	{language.German, KeyContinue, "Weiter"},
	{language.German, KeyEdit, "Bearbeiten"},
	{language.German, KeySubmitOrder, "Bestellung abschicken"},
	{language.German, KeyLoading, "Kasse wird geladen"},
	{language.German, KeyStepOf, "Schritt %d von %d"},
	{language.German, KeyStepBroken, "Dieser Abschnitt konnte nicht angezeigt werden"},
	{language.German, KeyApplyCoupon, "Gutschein einlösen"},
	{language.German, KeyCouponApplied, "Gutschein eingelöst"},
	{language.German, KeyCouponInvalid, "Gutscheincode ist ungültig"},
	{language.German, KeyComplete, "Abgeschlossen"},
	{language.German, KeyValidating, "Ihre Angaben werden geprüft"},
	{language.German, KeyOrderComplete, "Bestellung abgeschlossen"},

	{language.Spanish, KeyContinue, "Continuar"},
	{language.Spanish, KeyEdit, "Editar"},
	{language.Spanish, KeySubmitOrder, "Enviar pedido"},
	{language.Spanish, KeyLoading, "Cargando el pago"},
	{language.Spanish, KeyStepOf, "Paso %d de %d"},
	{language.Spanish, KeyStepBroken, "No se pudo mostrar esta sección"},
	{language.Spanish, KeyApplyCoupon, "Aplicar cupón"},
	{language.Spanish, KeyCouponApplied, "Cupón aplicado"},
	{language.Spanish, KeyCouponInvalid, "El código de cupón no es válido"},
	{language.Spanish, KeyComplete, "Completado"},
	{language.Spanish, KeyValidating, "Comprobando sus datos"},
	{language.Spanish, KeyOrderComplete, "Pedido completado"},
}

func init() {
	for _, e := range entries {
		_ = message.SetString(e.tag, e.key, e.msg)
	}
}
