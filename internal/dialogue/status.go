// Package dialogue implements the intake conversation state machine: the
// mapping from (current status, inbound message, patient attributes) to
// (record patch, outbound messages). It holds no durable state; the patched
// record lives in the external CMS.
package dialogue

// Status is the conversation stage stored on the patient record. The set is
// closed; anything unknown is treated as StatusTriagem.
type Status string

const (
	StatusTriagem              Status = "triagem"
	StatusMenuVeterano         Status = "menu_veterano"
	StatusAguardandoNomeNovo   Status = "aguardando_nome_novo"
	StatusEscolhaEspecialidade Status = "escolha_especialidade"
	StatusTriagemNeuro         Status = "triagem_neuro"
	StatusMenuPilates          Status = "menu_pilates"
	StatusPilatesParceriaID    Status = "pilates_parceria_id"
	StatusPilatesParceriaMenu  Status = "pilates_parceria_menu"
	StatusPilatesExperimental  Status = "pilates_experimental"
	StatusEscolhaModalidade    Status = "escolha_modalidade"
	StatusCadNomeCompleto      Status = "cadastrando_nome_completo"
	StatusCadNascimento        Status = "cadastrando_nascimento"
	StatusCadEmail             Status = "cadastrando_email"
	StatusCadQueixa            Status = "cadastrando_queixa"
	StatusCadCPF               Status = "cadastrando_cpf"
	StatusCadConvenio          Status = "cadastrando_convenio"
	StatusCadCarteirinha       Status = "cadastrando_carteirinha"
	StatusCadFotoCarteirinha   Status = "cadastrando_foto_carteirinha"
	StatusCadPedidoMedico      Status = "cadastrando_pedido_medico"
	StatusVeteranoModalidade   Status = "veterano_modalidade"
	StatusVeteranoConvenio     Status = "veterano_convenio_confirma"
	StatusEscolhaPeriodo       Status = "escolha_periodo"
	StatusAtendimentoHumano    Status = "atendimento_humano"
	StatusFinalizado           Status = "finalizado"
)

// Payment modalities.
const (
	ModalityParticular = "particular"
	ModalityConvenio   = "convenio"
)

// Specialty labels as shown on the service list.
const (
	ServiceOrtopedica  = "Fisio Ortopédica"
	ServiceNeurologica = "Fisio Neurológica"
	ServicePelvica     = "Fisio Pélvica"
	ServicePilates     = "Pilates"
	ServiceRecovery    = "Recovery"
	ServiceLiberacao   = "Liberação Miofascial"
)

// entryStatuses are the stages where a bare greeting is the expected input and
// must not trigger the interrupted-session repair.
var entryStatuses = map[Status]bool{
	StatusTriagem:      true,
	StatusMenuVeterano: true,
	StatusFinalizado:   true,
}

func parseStatus(raw string) Status {
	s := Status(raw)
	if _, ok := transitions[s]; ok {
		return s
	}
	return StatusTriagem
}
