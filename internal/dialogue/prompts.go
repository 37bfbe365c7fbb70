package dialogue

import (
	"strings"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/patients"
)

// prompts maps each status to the question that is pending while the
// conversation sits in it. The table serves two purposes: a transition into a
// status emits its prompt, and "Sim, continuar" replays it verbatim after an
// interruption.
var prompts = map[Status]func(*patients.Conversation) []Message{
	StatusTriagem: func(c *patients.Conversation) []Message {
		return []Message{Text("Olá! 👋 Aqui é o assistente da ConectiFisio " + c.Unit +
			". Me manda um \"Oi\" para começarmos o seu atendimento.")}
	},
	StatusMenuVeterano: func(c *patients.Conversation) []Message {
		return []Message{List(
			"Oi, "+firstName(c)+"! 😊 Que bom te ver por aqui de novo. Como posso ajudar hoje?",
			"Ver opções",
			Section{Title: "Atendimento", Rows: []string{
				"Remarcar sessão",
				"Continuar tratamento",
				"Novo serviço",
				"Outros assuntos",
			}},
		)}
	},
	StatusAguardandoNomeNovo: func(c *patients.Conversation) []Message {
		return []Message{Text("Olá! Seja bem-vindo(a) à ConectiFisio " + c.Unit +
			" 💙 Para começar, me diz o seu nome?")}
	},
	StatusEscolhaEspecialidade: func(c *patients.Conversation) []Message {
		body := "Qual serviço você procura?"
		if name := firstName(c); name != "" {
			body = "Perfeito, " + name + "! " + body
		}
		return []Message{List(body, "Ver serviços",
			Section{Title: "Fisioterapia", Rows: []string{
				ServiceOrtopedica,
				ServiceNeurologica,
				ServicePelvica,
			}},
			Section{Title: "Bem-estar", Rows: []string{
				ServicePilates,
				ServiceRecovery,
				ServiceLiberacao,
			}},
		)}
	},
	StatusTriagemNeuro: func(*patients.Conversation) []Message {
		return []Message{Buttons(
			"Para a fisioterapia neurológica: como está a mobilidade do paciente?",
			"Independente", "Semi-dependente", "Dependente",
		)}
	},
	StatusMenuPilates: func(*patients.Conversation) []Message {
		return []Message{Buttons(
			"Sobre o Pilates: como você pretende fazer as aulas?",
			"Wellhub / Gympass", "Convênio", "Particular",
		)}
	},
	StatusPilatesParceriaID: func(*patients.Conversation) []Message {
		return []Message{Text("Ótimo! Me envia o seu ID do aplicativo (Wellhub/Gympass) para eu localizar o seu plano.")}
	},
	StatusPilatesParceriaMenu: func(*patients.Conversation) []Message {
		return []Message{Buttons("Plano localizado! Como prefere seguir?",
			"Agendar pelo app", "Falar com a equipe")}
	},
	StatusPilatesExperimental: func(*patients.Conversation) []Message {
		return []Message{Buttons(
			"Temos aula experimental de Pilates no estúdio! 🧘 Quer conhecer?",
			"Quero experimentar", "Tenho uma dúvida",
		)}
	},
	StatusEscolhaModalidade: func(*patients.Conversation) []Message {
		return []Message{Buttons("O atendimento será por convênio ou particular?",
			"Convênio", "Particular")}
	},
	StatusCadNomeCompleto: func(*patients.Conversation) []Message {
		return []Message{Text("Vamos fazer o seu cadastro! 📝 Qual o seu nome completo?")}
	},
	StatusCadNascimento: func(*patients.Conversation) []Message {
		return []Message{Text("Qual a sua data de nascimento? (DD/MM/AAAA)")}
	},
	StatusCadEmail: func(*patients.Conversation) []Message {
		return []Message{Text("Qual o seu e-mail?")}
	},
	StatusCadQueixa: func(*patients.Conversation) []Message {
		return []Message{Text("Me conta brevemente o que você está sentindo ou o motivo da consulta.")}
	},
	StatusCadCPF: func(*patients.Conversation) []Message {
		return []Message{Text("Agora preciso do seu CPF (somente os 11 números).")}
	},
	StatusCadConvenio: func(*patients.Conversation) []Message {
		return []Message{Text("Qual é o seu convênio?")}
	},
	StatusCadCarteirinha: func(*patients.Conversation) []Message {
		return []Message{Text("Qual o número da sua carteirinha?")}
	},
	StatusCadFotoCarteirinha: func(*patients.Conversation) []Message {
		return []Message{Text("Me envia uma foto da carteirinha do convênio, por favor. 📷")}
	},
	StatusCadPedidoMedico: func(*patients.Conversation) []Message {
		return []Message{Text("Agora me envia uma foto do pedido médico. 📷")}
	},
	StatusVeteranoModalidade: func(*patients.Conversation) []Message {
		return []Message{Buttons("Para continuar o tratamento: será por convênio ou particular?",
			"Convênio", "Particular")}
	},
	StatusVeteranoConvenio: func(c *patients.Conversation) []Message {
		body := "Seu convênio continua o mesmo?"
		if c.InsurancePlan != "" {
			body = "Seu convênio continua o mesmo (" + c.InsurancePlan + ")?"
		}
		return []Message{Buttons(body, "Sim, o mesmo", "Mudou")}
	},
	StatusEscolhaPeriodo: func(*patients.Conversation) []Message {
		return []Message{Buttons("Qual período você prefere para as sessões?", "Manhã", "Tarde")}
	},
	StatusAtendimentoHumano: func(*patients.Conversation) []Message {
		return []Message{Text("Certo! 🤝 Passei o seu atendimento para a nossa equipe — em instantes alguém fala com você por aqui.")}
	},
	StatusFinalizado: func(c *patients.Conversation) []Message {
		var b strings.Builder
		b.WriteString("Prontinho")
		if name := firstName(c); name != "" {
			b.WriteString(", " + name)
		}
		b.WriteString("! ✅ Seu pré-agendamento na unidade " + c.Unit + " está registrado")
		if c.Period != "" {
			b.WriteString(" para o período da " + strings.ToLower(c.Period))
		}
		b.WriteString(". Nossa equipe confirma o horário em breve. Até já!")
		return []Message{Text(b.String())}
	},
}

// promptFor returns the pending-question messages for a status.
func promptFor(status Status, conv *patients.Conversation) []Message {
	if build, ok := prompts[status]; ok {
		return build(conv)
	}
	return prompts[StatusTriagem](conv)
}

// firstName returns the first word of the stored patient name, empty when the
// record holds no usable name.
func firstName(c *patients.Conversation) string {
	fields := strings.Fields(strings.TrimSpace(c.Name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
