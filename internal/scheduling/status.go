package scheduling

import "errors"

// Status is the lifecycle state of an appointment. Values are stored
// verbatim in the database and in API payloads.
type Status string

const (
	StatusAgendado              Status = "AGENDADO"
	StatusEsperandoConfirmacao  Status = "ESPERANDO_CONFIRMACAO"
	StatusConfirmado            Status = "CONFIRMADO"
	StatusConcluido             Status = "CONCLUIDO"
	StatusCancelado             Status = "CANCELADO"
	StatusNaoCompareceu         Status = "NAO_COMPARECEU"
)

type Actor string

const (
	ActorPatient      Actor = "PATIENT"
	ActorNutritionist Actor = "NUTRITIONIST"
)

// Action is a transition request against an appointment.
type Action string

const (
	ActionRequestConfirmation Action = "REQUEST_CONFIRMATION"
	ActionConfirm             Action = "CONFIRM"
	ActionCancel              Action = "CANCEL"
	ActionFinish              Action = "FINISH"
	ActionDelete              Action = "DELETE"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrActorNotAllowed         = errors.New("actor may not perform this transition")
)

type transitionRule struct {
	actors map[Actor]bool
}

var either = map[Actor]bool{ActorPatient: true, ActorNutritionist: true}
var patientOnly = map[Actor]bool{ActorPatient: true}
var nutritionistOnly = map[Actor]bool{ActorNutritionist: true}

// transitions is the single authority for which action applies in which
// status and who may trigger it. Every handler and the client consult this
// table instead of carrying their own status switches.
var transitions = map[Status]map[Action]transitionRule{
	StatusAgendado: {
		ActionRequestConfirmation: {actors: nutritionistOnly},
		ActionCancel:              {actors: either},
		ActionFinish:              {actors: nutritionistOnly},
	},
	StatusEsperandoConfirmacao: {
		ActionConfirm: {actors: patientOnly},
		ActionCancel:  {actors: either},
	},
	StatusConfirmado: {
		ActionCancel: {actors: either},
		ActionFinish: {actors: nutritionistOnly},
	},
	StatusCancelado: {
		ActionDelete: {actors: nutritionistOnly},
	},
}

// CanApply reports whether actor may apply action to an appointment in
// status s. It distinguishes "this transition does not exist here" from
// "it exists but not for this actor".
func CanApply(s Status, action Action, actor Actor) error {
	rules, ok := transitions[s]
	if !ok {
		return ErrInvalidStatusTransition
	}
	rule, ok := rules[action]
	if !ok {
		return ErrInvalidStatusTransition
	}
	if !rule.actors[actor] {
		return ErrActorNotAllowed
	}
	return nil
}

// AllowedActions lists the actions actor may currently take, in a stable
// order suitable for rendering action menus.
func AllowedActions(s Status, actor Actor) []Action {
	order := []Action{
		ActionRequestConfirmation,
		ActionConfirm,
		ActionCancel,
		ActionFinish,
		ActionDelete,
	}

	var out []Action
	for _, a := range order {
		if CanApply(s, a, actor) == nil {
			out = append(out, a)
		}
	}
	return out
}

// NextStatus resolves the status an action leads to. ActionFinish depends
// on attendance; ActionDelete removes the row and has no next status.
func NextStatus(action Action, attended bool) (Status, bool) {
	switch action {
	case ActionRequestConfirmation:
		return StatusEsperandoConfirmacao, true
	case ActionConfirm:
		return StatusConfirmado, true
	case ActionCancel:
		return StatusCancelado, true
	case ActionFinish:
		if attended {
			return StatusConcluido, true
		}
		return StatusNaoCompareceu, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further transitions exist besides removal.
func IsTerminal(s Status) bool {
	switch s {
	case StatusConcluido, StatusCancelado, StatusNaoCompareceu:
		return true
	}
	return false
}

// DisplayLabel is the human-readable label shown next to an appointment.
func DisplayLabel(s Status) string {
	switch s {
	case StatusAgendado:
		return "Agendado"
	case StatusEsperandoConfirmacao:
		return "Esperando confirmação"
	case StatusConfirmado:
		return "Confirmado"
	case StatusConcluido:
		return "Concluído"
	case StatusCancelado:
		return "Cancelado"
	case StatusNaoCompareceu:
		return "Não compareceu"
	default:
		return string(s)
	}
}

// StyleToken maps a status to the rendering token used by the calendar.
// Unknown statuses fall back to the default token.
func StyleToken(s Status) string {
	switch s {
	case StatusAgendado:
		return "status-agendado"
	case StatusEsperandoConfirmacao:
		return "status-esperando-confirmacao"
	case StatusConfirmado:
		return "status-confirmado"
	case StatusConcluido:
		return "status-concluido"
	case StatusCancelado:
		return "status-cancelado"
	case StatusNaoCompareceu:
		return "status-nao-compareceu"
	default:
		return "status-default"
	}
}
