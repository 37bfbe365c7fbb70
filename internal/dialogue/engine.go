package dialogue

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/patients"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/pkg/logging"
)

// Input is the distilled inbound message: the display text (text body or
// tapped button/list title) and whether the message carried an image.
type Input struct {
	Label   string
	IsImage bool
}

// Result is one turn's outcome: the field updates to write back to the CMS
// (including the new status, when it changes) and the messages to deliver.
// An empty Result acknowledges the turn silently.
type Result struct {
	Patch    patients.Patch
	Messages []Message
}

// NextStatus returns the status the patch moves the conversation to, or ""
// when the turn leaves it unchanged.
func (r Result) NextStatus() string {
	if r.Patch == nil {
		return ""
	}
	return r.Patch[patients.FieldStatus]
}

// EmpathyGenerator produces a short empathetic acknowledgement of the
// patient's complaint. Strictly best-effort decoration.
type EmpathyGenerator interface {
	Acknowledge(ctx context.Context, complaint string) (string, error)
}

// Engine is the dialogue router. It is stateless: everything it knows about
// the conversation arrives in the patient record and the inbound message.
type Engine struct {
	logger  *logging.Logger
	empathy EmpathyGenerator
	tracer  trace.Tracer
}

// NewEngine builds the router. empathy may be nil.
func NewEngine(logger *logging.Logger, empathy EmpathyGenerator) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		logger:  logger,
		empathy: empathy,
		tracer:  otel.Tracer("conectifisio.internal.dialogue"),
	}
}

// Handle runs one conversation turn. It never fails: anything unexpected
// degrades to an empty Result so the transport layer can acknowledge the
// delivery.
func (e *Engine) Handle(ctx context.Context, conv *patients.Conversation, in Input) Result {
	ctx, span := e.tracer.Start(ctx, "dialogue.handle")
	defer span.End()

	label := strings.TrimSpace(in.Label)
	status := parseStatus(conv.Status)
	span.SetAttributes(
		attribute.String("dialogue.status", string(status)),
		attribute.Bool("dialogue.image", in.IsImage),
	)

	// Interceptors run before any state-specific logic, in priority order.

	// FAQ hits answer from the static table and leave the state untouched.
	if answer, ok := faqAnswer(label); ok {
		return Result{Messages: []Message{Text(answer)}}
	}

	// The hard reset is the only command that escapes every state, including
	// human takeover.
	if isResetCommand(label) {
		return e.reset(conv)
	}

	// Human takeover is absorbing: a staff member answers out-of-band and the
	// bot stays quiet.
	if status == StatusAtendimentoHumano {
		return Result{}
	}

	// Navigation back to the top menu keeps the captured fields.
	if isNavigationCommand(label) {
		return handleTriagem(e, ctx, conv, in)
	}

	// "Sim, continuar" replays the pending question exactly as asked.
	if isResumeCommand(label) {
		return Result{Messages: promptFor(status, conv)}
	}

	// A bare greeting mid-flow means the patient lost the thread. Offer the
	// choice instead of feeding "oi" to the pending question.
	if IsGreeting(label) && !entryStatuses[status] {
		return Result{Messages: []Message{Buttons(
			"Oi! 👋 A gente estava no meio do seu atendimento. Quer continuar de onde paramos?",
			"Sim, continuar", "Recomeçar",
		)}}
	}

	handler := transitions[status]
	if handler == nil {
		handler = handleTriagem
	}
	res := handler(e, ctx, conv, in)
	if next := res.NextStatus(); next != "" {
		span.SetAttributes(attribute.String("dialogue.next_status", next))
	}
	return res
}

// reset clears identity fields and returns the conversation to triage.
func (e *Engine) reset(conv *patients.Conversation) Result {
	patch := patients.Patch{}
	for _, field := range []string{
		patients.FieldName, patients.FieldCPF, patients.FieldBirthDate,
		patients.FieldEmail, patients.FieldComplaint, patients.FieldInsurance,
		patients.FieldInsuranceCard, patients.FieldModality, patients.FieldService,
		patients.FieldPartnerID, patients.FieldPeriod, patients.FieldNote,
	} {
		patch.Set(field, "")
	}
	patch.Set(patients.FieldStatus, string(StatusTriagem))
	return Result{
		Patch: patch,
		Messages: []Message{Text("Tudo certo! 🔄 Apaguei seus dados e vamos começar do zero. " +
			"Me manda um \"Oi\" quando quiser.")},
	}
}

// advance moves the conversation to next: it patches the status, applies the
// patch to a local view and appends next's prompt after any extra messages.
func (e *Engine) advance(conv *patients.Conversation, patch patients.Patch, next Status, extra ...Message) Result {
	if patch == nil {
		patch = patients.Patch{}
	}
	patch.Set(patients.FieldStatus, string(next))
	view := *conv
	view.Apply(patch)
	return Result{Patch: patch, Messages: append(extra, promptFor(next, &view)...)}
}

// jump is advance without the destination prompt, for transitions that carry
// their own closing copy.
func (e *Engine) jump(patch patients.Patch, next Status, msgs ...Message) Result {
	if patch == nil {
		patch = patients.Patch{}
	}
	patch.Set(patients.FieldStatus, string(next))
	return Result{Patch: patch, Messages: msgs}
}

// stay re-prompts without touching the record.
func stay(msgs ...Message) Result {
	return Result{Messages: msgs}
}

func isResetCommand(label string) bool {
	switch matchable(label) {
	case "recomecar", "resetar tudo", "sou novo", "sou nova":
		return true
	}
	return false
}

func isNavigationCommand(label string) bool {
	switch matchable(label) {
	case "menu inicial", "voltar":
		return true
	}
	return false
}

func isResumeCommand(label string) bool {
	return matchable(label) == "sim continuar"
}

// empathyAck asks the optional generator for a one-line acknowledgement of the
// complaint. Failures and slow answers are silently dropped.
func (e *Engine) empathyAck(ctx context.Context, complaint string) []Message {
	if e.empathy == nil || strings.TrimSpace(complaint) == "" {
		return nil
	}
	ack, err := e.empathy.Acknowledge(ctx, complaint)
	if err != nil || strings.TrimSpace(ack) == "" {
		if err != nil {
			e.logger.Debug("empathy acknowledgement skipped", "error", err)
		}
		return nil
	}
	return []Message{Text(strings.TrimSpace(ack))}
}
