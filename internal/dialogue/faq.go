package dialogue

// faqEntry pairs trigger keywords (matchable form) with a canned answer.
// FAQ hits bypass the state machine entirely and never change status.
type faqEntry struct {
	keywords []string
	answer   string
}

var faqTable = []faqEntry{
	{
		keywords: []string{"estacionamento", "estacionar", "vaga para carro"},
		answer: "🚗 Temos convênio com o estacionamento ao lado das duas unidades. " +
			"É só apresentar o ticket na recepção para validar.",
	},
	{
		keywords: []string{"endereco", "localizacao", "onde fica", "como chegar"},
		answer: "📍 Unidade Ipiranga: Rua Bom Pastor, 2100 — sala 510.\n" +
			"📍 Unidade SCS: Rua Marechal Deodoro, 135 — sala 1208, São Caetano do Sul.",
	},
	{
		keywords: []string{"horario", "funcionamento", "que horas abre", "que horas fecha"},
		answer: "🕖 Atendemos de segunda a sexta, das 7h às 21h, e aos sábados das 8h às 13h.",
	},
	{
		keywords: []string{"forma de pagamento", "formas de pagamento", "aceita pix", "aceita cartao"},
		answer: "💳 Aceitamos Pix, cartão de crédito/débito e os principais convênios. " +
			"Para valores de avaliação, nossa equipe te passa os detalhes no agendamento.",
	},
	{
		keywords: []string{"telefone", "whatsapp da clinica", "falar por ligacao"},
		answer: "📞 Você pode nos ligar no (11) 2362-9360 (Ipiranga) ou (11) 4229-1550 (SCS).",
	},
}

// faqAnswer returns the canned answer for a known keyword, if any.
func faqAnswer(text string) (string, bool) {
	for _, entry := range faqTable {
		if containsAny(text, entry.keywords...) {
			return entry.answer, true
		}
	}
	return "", false
}
