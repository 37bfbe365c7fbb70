// Package patients models the conversation/patient record held by the external
// Wix CMS and the HTTP repository used to read and update it. The webhook keeps
// no durable state of its own; the CMS is the system of record.
package patients

import "context"

// Conversation is the per-phone record the CMS returns on every turn.
type Conversation struct {
	Phone         string `json:"from"`
	Status        string `json:"currentStatus"`
	IsVeteran     bool   `json:"isVeteran"`
	Name          string `json:"nome"`
	CPF           string `json:"cpf"`
	BirthDate     string `json:"nascimento"`
	Email         string `json:"email"`
	Complaint     string `json:"queixa"`
	InsurancePlan string `json:"convenio"`
	InsuranceCard string `json:"carteirinha"`
	Modality      string `json:"modalidade"`
	Service       string `json:"servico"`
	PartnerID     string `json:"idParceiro"`
	Period        string `json:"periodo"`
	Note          string `json:"nota"`
	Unit          string `json:"unit"`
}

// Patch field keys, matching the CMS collection columns.
const (
	FieldStatus        = "status"
	FieldName          = "nome"
	FieldCPF           = "cpf"
	FieldBirthDate     = "nascimento"
	FieldEmail         = "email"
	FieldComplaint     = "queixa"
	FieldInsurance     = "convenio"
	FieldInsuranceCard = "carteirinha"
	FieldModality      = "modalidade"
	FieldService       = "servico"
	FieldPartnerID     = "idParceiro"
	FieldPeriod        = "periodo"
	FieldNote          = "nota"
)

// Patch is the set of field updates the router decided on this turn.
type Patch map[string]string

// Set records a field update and returns the patch for chaining.
func (p Patch) Set(field, value string) Patch {
	p[field] = value
	return p
}

// Apply mirrors the patch onto the in-memory view so chained handlers within
// the same turn see the updated record without re-querying the CMS.
func (c *Conversation) Apply(p Patch) {
	for field, value := range p {
		switch field {
		case FieldStatus:
			c.Status = value
		case FieldName:
			c.Name = value
		case FieldCPF:
			c.CPF = value
		case FieldBirthDate:
			c.BirthDate = value
		case FieldEmail:
			c.Email = value
		case FieldComplaint:
			c.Complaint = value
		case FieldInsurance:
			c.InsurancePlan = value
		case FieldInsuranceCard:
			c.InsuranceCard = value
		case FieldModality:
			c.Modality = value
		case FieldService:
			c.Service = value
		case FieldPartnerID:
			c.PartnerID = value
		case FieldPeriod:
			c.Period = value
		case FieldNote:
			c.Note = value
		}
	}
}

// Default is the safe fallback record used when the CMS is unreachable or has
// never seen this phone: a fresh triage conversation.
func Default(phone, unit string) *Conversation {
	return &Conversation{Phone: phone, Status: "triagem", Unit: unit}
}

// Repository reads and updates conversation records in the CMS.
type Repository interface {
	// Get returns the current record for the phone, creating a default one on
	// the CMS side for unseen numbers. text is forwarded so the CMS can log the
	// raw inbound message alongside the record.
	Get(ctx context.Context, phone, text, unit string) (*Conversation, error)
	// Patch writes the decided field updates. Best-effort: a failure must not
	// abort the turn.
	Patch(ctx context.Context, phone string, fields Patch) error
}
