package app

// Customer and operator facing texts.
const (
	PromoFoundTemplate       = "🎉 Tu promoción es: %s"
	PromoNotFoundMessage     = "⚠️ Tu número no figura en la lista de promociones activas."
	LookupFailedMessage      = "😓 No pudimos consultar tu promoción en este momento. Un asesor lo va a revisar con vos."
	AdvisorConnectingMessage = "🙌 Te estamos comunicando con un asesor, en breve te escribe."
	AdvisorRequestedMessage  = "👤 ¡Listo! Te comunicamos ahora con un asesor."
	MenuMessage              = "👋 ¡Hola! Escribí *1* o *promo* para consultar tu promoción disponible, o *2* o *asesor* para hablar con un asesor."
	EscalationTemplate       = "📣 Nuevo cliente para atender\nCliente: +%s"
	EscalationPromoTemplate  = "\nPromo: %s"
	TestSendMessage          = "✅ Mensaje de prueba del bot de promociones."
)
