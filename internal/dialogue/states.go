package dialogue

import (
	"context"
	"strings"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/patients"
)

// handlerFunc consumes the reply to the question pending in one status and
// decides the transition.
type handlerFunc func(e *Engine, ctx context.Context, conv *patients.Conversation, in Input) Result

// transitions is the state-transition table. Unknown statuses fall back to
// handleTriagem in Engine.Handle.
var transitions = map[Status]handlerFunc{
	StatusTriagem:              handleTriagem,
	StatusMenuVeterano:         handleMenuVeterano,
	StatusAguardandoNomeNovo:   handleAguardandoNomeNovo,
	StatusEscolhaEspecialidade: handleEscolhaEspecialidade,
	StatusTriagemNeuro:         handleTriagemNeuro,
	StatusMenuPilates:          handleMenuPilates,
	StatusPilatesParceriaID:    handlePilatesParceriaID,
	StatusPilatesParceriaMenu:  handlePilatesParceriaMenu,
	StatusPilatesExperimental:  handlePilatesExperimental,
	StatusEscolhaModalidade:    handleEscolhaModalidade,
	StatusCadNomeCompleto:      handleCadNomeCompleto,
	StatusCadNascimento:        handleCadNascimento,
	StatusCadEmail:             handleCadEmail,
	StatusCadQueixa:            handleCadQueixa,
	StatusCadCPF:               handleCadCPF,
	StatusCadConvenio:          handleCadConvenio,
	StatusCadCarteirinha:       handleCadCarteirinha,
	StatusCadFotoCarteirinha:   handleCadFotoCarteirinha,
	StatusCadPedidoMedico:      handleCadPedidoMedico,
	StatusVeteranoModalidade:   handleVeteranoModalidade,
	StatusVeteranoConvenio:     handleVeteranoConvenio,
	StatusEscolhaPeriodo:       handleEscolhaPeriodo,
	StatusAtendimentoHumano:    handleAtendimentoHumano,
	StatusFinalizado:           handleFinalizado,
}

// handleTriagem is the entry point: veterans get the abbreviated menu, new
// patients with a known name skip straight to the service list.
func handleTriagem(e *Engine, _ context.Context, conv *patients.Conversation, _ Input) Result {
	if conv.IsVeteran {
		return e.advance(conv, nil, StatusMenuVeterano)
	}
	if conv.Name != "" {
		return e.advance(conv, nil, StatusEscolhaEspecialidade)
	}
	return e.advance(conv, nil, StatusAguardandoNomeNovo)
}

func handleMenuVeterano(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "remarcar"):
		patch := patients.Patch{}.Set(patients.FieldNote, "[Remarcação] solicitada pelo paciente")
		return e.advance(conv, patch, StatusAtendimentoHumano)
	case containsAny(in.Label, "continuar"):
		return e.advance(conv, nil, StatusVeteranoModalidade)
	case containsAny(in.Label, "novo servico"):
		return e.advance(conv, nil, StatusEscolhaEspecialidade)
	case containsAny(in.Label, "outros"):
		patch := patients.Patch{}.Set(patients.FieldNote, "[Outros assuntos] encaminhado ao time")
		return e.advance(conv, patch, StatusAtendimentoHumano)
	}
	return stay(promptFor(StatusMenuVeterano, conv)...)
}

func handleAguardandoNomeNovo(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	name := strings.TrimSpace(in.Label)
	if name == "" {
		return stay(promptFor(StatusAguardandoNomeNovo, conv)...)
	}
	patch := patients.Patch{}.Set(patients.FieldName, name)
	return e.advance(conv, patch, StatusEscolhaEspecialidade)
}

// handleEscolhaEspecialidade branches on the chosen service. Specialty matches
// always win over the generic convênio/particular path.
func handleEscolhaEspecialidade(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "neurologica"):
		patch := patients.Patch{}.Set(patients.FieldService, ServiceNeurologica)
		return e.advance(conv, patch, StatusTriagemNeuro)

	case containsAny(in.Label, "pilates"):
		patch := patients.Patch{}.Set(patients.FieldService, ServicePilates)
		return e.advance(conv, patch, StatusMenuPilates)

	case containsAny(in.Label, "recovery", "liberacao", "miofascial"):
		// Performance clients decide fast: private-only, no registration
		// ladder, straight to the team.
		service := ServiceRecovery
		if containsAny(in.Label, "liberacao", "miofascial") {
			service = ServiceLiberacao
		}
		patch := patients.Patch{}.
			Set(patients.FieldService, service).
			Set(patients.FieldModality, ModalityParticular)
		if conv.Name != "" {
			return e.advance(conv, patch, StatusAtendimentoHumano)
		}
		return e.advance(conv, patch, StatusCadNomeCompleto)

	case containsAny(in.Label, "ortopedica", "pelvica", "fisio"):
		patch := patients.Patch{}.Set(patients.FieldService, strings.TrimSpace(in.Label))
		return e.advance(conv, patch, StatusEscolhaModalidade)
	}
	return stay(promptFor(StatusEscolhaEspecialidade, conv)...)
}

// handleTriagemNeuro applies the safety policy: dependent-mobility cases are
// never auto-scheduled.
func handleTriagemNeuro(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "semi"):
		return e.advance(conv, nil, StatusEscolhaModalidade)
	case containsAny(in.Label, "independente"):
		return e.advance(conv, nil, StatusEscolhaModalidade)
	case containsAny(in.Label, "dependente"):
		patch := patients.Patch{}.Set(patients.FieldNote, "[Neuro] paciente dependente, avaliação com a equipe")
		return e.advance(conv, patch, StatusAtendimentoHumano)
	}
	return stay(promptFor(StatusTriagemNeuro, conv)...)
}

func handleMenuPilates(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "wellhub", "gympass", "totalpass", "app"):
		return e.advance(conv, nil, StatusPilatesParceriaID)
	case containsAny(in.Label, "convenio"):
		patch := patients.Patch{}.Set(patients.FieldModality, ModalityConvenio)
		return e.advance(conv, patch, StatusCadNomeCompleto)
	case containsAny(in.Label, "particular"):
		patch := patients.Patch{}.Set(patients.FieldModality, ModalityParticular)
		return e.advance(conv, patch, StatusPilatesExperimental)
	}
	return stay(promptFor(StatusMenuPilates, conv)...)
}

func handlePilatesParceriaID(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	id := strings.TrimSpace(in.Label)
	if id == "" {
		return stay(promptFor(StatusPilatesParceriaID, conv)...)
	}
	patch := patients.Patch{}.Set(patients.FieldPartnerID, id)
	return e.advance(conv, patch, StatusPilatesParceriaMenu)
}

func handlePilatesParceriaMenu(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "app", "agendar"):
		return e.jump(nil, StatusFinalizado, Text(
			"Perfeito! 🎉 É só reservar a sua aula direto pelo aplicativo do seu plano. "+
				"Qualquer dúvida, estamos por aqui!"))
	case containsAny(in.Label, "equipe", "falar"):
		return e.advance(conv, nil, StatusAtendimentoHumano)
	}
	return stay(promptFor(StatusPilatesParceriaMenu, conv)...)
}

// handlePilatesExperimental resolves any reply to the trial offer into the
// staff queue: private pilates scheduling is staff-mediated.
func handlePilatesExperimental(e *Engine, _ context.Context, conv *patients.Conversation, _ Input) Result {
	patch := patients.Patch{}.Set(patients.FieldNote, "[Pilates] interesse em aula experimental")
	return e.advance(conv, patch, StatusAtendimentoHumano)
}

func handleEscolhaModalidade(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "convenio"):
		patch := patients.Patch{}.Set(patients.FieldModality, ModalityConvenio)
		return e.advance(conv, patch, StatusCadNomeCompleto)
	case containsAny(in.Label, "particular"):
		patch := patients.Patch{}.Set(patients.FieldModality, ModalityParticular)
		return e.advance(conv, patch, StatusCadNomeCompleto)
	}
	return stay(promptFor(StatusEscolhaModalidade, conv)...)
}

func handleCadNomeCompleto(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	name := strings.TrimSpace(in.Label)
	if name == "" {
		return stay(promptFor(StatusCadNomeCompleto, conv)...)
	}
	patch := patients.Patch{}.Set(patients.FieldName, name)
	if conv.Service == ServiceRecovery || conv.Service == ServiceLiberacao {
		return e.advance(conv, patch, StatusAtendimentoHumano)
	}
	return e.advance(conv, patch, StatusCadNascimento)
}

func handleCadNascimento(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	date, ok := ParseBirthDate(in.Label)
	if !ok {
		return stay(Text("Hmm, essa data não parece válida. 🤔 Me envia no formato DD/MM/AAAA, por favor."))
	}
	patch := patients.Patch{}.Set(patients.FieldBirthDate, date)
	return e.advance(conv, patch, StatusCadEmail)
}

func handleCadEmail(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	email := strings.TrimSpace(in.Label)
	if !ValidEmail(email) {
		return stay(Text("Esse e-mail não parece completo. Confere e me envia de novo?"))
	}
	patch := patients.Patch{}.Set(patients.FieldEmail, email)
	return e.advance(conv, patch, StatusCadQueixa)
}

func handleCadQueixa(e *Engine, ctx context.Context, conv *patients.Conversation, in Input) Result {
	complaint := strings.TrimSpace(in.Label)
	if complaint == "" {
		return stay(promptFor(StatusCadQueixa, conv)...)
	}
	patch := patients.Patch{}.Set(patients.FieldComplaint, complaint)
	return e.advance(conv, patch, StatusCadCPF, e.empathyAck(ctx, complaint)...)
}

func handleCadCPF(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	cpf, ok := ExtractCPF(in.Label)
	if !ok || !ValidCPF(cpf) {
		return stay(Text("CPF inválido. 😕 Me reenvia os 11 dígitos, por favor (só números)."))
	}
	patch := patients.Patch{}.Set(patients.FieldCPF, cpf)
	if conv.Modality == ModalityConvenio {
		return e.advance(conv, patch, StatusCadConvenio)
	}
	return e.advance(conv, patch, StatusEscolhaPeriodo)
}

func handleCadConvenio(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	plan := strings.TrimSpace(in.Label)
	if plan == "" {
		return stay(promptFor(StatusCadConvenio, conv)...)
	}
	patch := patients.Patch{}.Set(patients.FieldInsurance, plan)
	return e.advance(conv, patch, StatusCadCarteirinha)
}

func handleCadCarteirinha(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	card := strings.TrimSpace(in.Label)
	if card == "" {
		return stay(promptFor(StatusCadCarteirinha, conv)...)
	}
	patch := patients.Patch{}.Set(patients.FieldInsuranceCard, card)
	return e.advance(conv, patch, StatusCadFotoCarteirinha)
}

func handleCadFotoCarteirinha(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	if !in.IsImage {
		return stay(Text("Preciso de uma foto da carteirinha para seguir. 📷 Pode enviar por aqui mesmo."))
	}
	return e.advance(conv, nil, StatusCadPedidoMedico)
}

func handleCadPedidoMedico(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	if !in.IsImage {
		return stay(Text("Preciso de uma foto do pedido médico para seguir. 📷 Pode enviar por aqui mesmo."))
	}
	if conv.Service == ServicePilates {
		// Pilates scheduling is staff-mediated; the ladder never reaches the
		// period question.
		return e.advance(conv, nil, StatusAtendimentoHumano)
	}
	return e.advance(conv, nil, StatusEscolhaPeriodo)
}

func handleVeteranoModalidade(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "convenio"):
		patch := patients.Patch{}.Set(patients.FieldModality, ModalityConvenio)
		return e.advance(conv, patch, StatusVeteranoConvenio)
	case containsAny(in.Label, "particular"):
		patch := patients.Patch{}.Set(patients.FieldModality, ModalityParticular)
		return e.advance(conv, patch, StatusEscolhaPeriodo)
	}
	return stay(promptFor(StatusVeteranoModalidade, conv)...)
}

func handleVeteranoConvenio(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	switch {
	case containsAny(in.Label, "mesmo", "sim"):
		// Same plan on file: only a fresh medical referral is needed.
		return e.advance(conv, nil, StatusCadPedidoMedico)
	case containsAny(in.Label, "mudou", "trocou", "outro"):
		return e.advance(conv, nil, StatusCadConvenio)
	}
	return stay(promptFor(StatusVeteranoConvenio, conv)...)
}

func handleEscolhaPeriodo(e *Engine, _ context.Context, conv *patients.Conversation, in Input) Result {
	var period string
	switch {
	case containsAny(in.Label, "manha"):
		period = "Manhã"
	case containsAny(in.Label, "tarde"):
		period = "Tarde"
	default:
		return stay(promptFor(StatusEscolhaPeriodo, conv)...)
	}
	patch := patients.Patch{}.Set(patients.FieldPeriod, period)
	return e.advance(conv, patch, StatusFinalizado)
}

// handleAtendimentoHumano is unreachable in practice (the engine silences the
// absorbing state before dispatch) but kept so the table enumerates every
// status.
func handleAtendimentoHumano(*Engine, context.Context, *patients.Conversation, Input) Result {
	return Result{}
}

// handleFinalizado reopens triage on a new greeting; anything else gets a
// gentle reminder that the intake already closed.
func handleFinalizado(e *Engine, ctx context.Context, conv *patients.Conversation, in Input) Result {
	if IsGreeting(in.Label) {
		return handleTriagem(e, ctx, conv, in)
	}
	return stay(Text("Seu atendimento já está registrado! ✅ Se quiser começar um novo, é só mandar um \"Oi\"."))
}
