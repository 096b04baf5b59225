package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanApply_HappyPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status Status
		action Action
		actor  Actor
	}{
		{StatusAgendado, ActionRequestConfirmation, ActorNutritionist},
		{StatusAgendado, ActionCancel, ActorPatient},
		{StatusAgendado, ActionCancel, ActorNutritionist},
		{StatusAgendado, ActionFinish, ActorNutritionist},
		{StatusEsperandoConfirmacao, ActionConfirm, ActorPatient},
		{StatusEsperandoConfirmacao, ActionCancel, ActorPatient},
		{StatusEsperandoConfirmacao, ActionCancel, ActorNutritionist},
		{StatusConfirmado, ActionCancel, ActorPatient},
		{StatusConfirmado, ActionCancel, ActorNutritionist},
		{StatusConfirmado, ActionFinish, ActorNutritionist},
		{StatusCancelado, ActionDelete, ActorNutritionist},
	}

	for _, tc := range cases {
		assert.NoError(t, CanApply(tc.status, tc.action, tc.actor),
			"%s %s by %s", tc.status, tc.action, tc.actor)
	}
}

func TestCanApply_RejectsTransitionsMissingFromTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status Status
		action Action
	}{
		// Confirm only applies while waiting for confirmation.
		{StatusAgendado, ActionConfirm},
		{StatusConfirmado, ActionConfirm},
		// Terminal statuses accept no further transitions.
		{StatusConcluido, ActionCancel},
		{StatusNaoCompareceu, ActionCancel},
		{StatusCancelado, ActionCancel},
		{StatusConcluido, ActionFinish},
		// Delete applies only to cancelled appointments.
		{StatusAgendado, ActionDelete},
		{StatusConcluido, ActionDelete},
	}

	for _, tc := range cases {
		err := CanApply(tc.status, tc.action, ActorNutritionist)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition, "%s %s", tc.status, tc.action)
	}
}

func TestCanApply_RejectsWrongActor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status Status
		action Action
		actor  Actor
	}{
		{StatusAgendado, ActionRequestConfirmation, ActorPatient},
		{StatusAgendado, ActionFinish, ActorPatient},
		{StatusEsperandoConfirmacao, ActionConfirm, ActorNutritionist},
		{StatusConfirmado, ActionFinish, ActorPatient},
		{StatusCancelado, ActionDelete, ActorPatient},
	}

	for _, tc := range cases {
		err := CanApply(tc.status, tc.action, tc.actor)
		assert.ErrorIs(t, err, ErrActorNotAllowed, "%s %s by %s", tc.status, tc.action, tc.actor)
	}
}

func TestAllowedActions(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]Action{ActionRequestConfirmation, ActionCancel, ActionFinish},
		AllowedActions(StatusAgendado, ActorNutritionist))
	assert.Equal(t,
		[]Action{ActionCancel},
		AllowedActions(StatusAgendado, ActorPatient))
	assert.Equal(t,
		[]Action{ActionConfirm, ActionCancel},
		AllowedActions(StatusEsperandoConfirmacao, ActorPatient))
	assert.Equal(t,
		[]Action{ActionCancel},
		AllowedActions(StatusEsperandoConfirmacao, ActorNutritionist))
	assert.Equal(t,
		[]Action{ActionDelete},
		AllowedActions(StatusCancelado, ActorNutritionist))
	assert.Empty(t, AllowedActions(StatusConcluido, ActorNutritionist))
	assert.Empty(t, AllowedActions(StatusNaoCompareceu, ActorPatient))
}

func TestNextStatus(t *testing.T) {
	t.Parallel()

	next, ok := NextStatus(ActionRequestConfirmation, false)
	require.True(t, ok)
	assert.Equal(t, StatusEsperandoConfirmacao, next)

	next, ok = NextStatus(ActionConfirm, false)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmado, next)

	next, ok = NextStatus(ActionCancel, false)
	require.True(t, ok)
	assert.Equal(t, StatusCancelado, next)

	next, ok = NextStatus(ActionFinish, true)
	require.True(t, ok)
	assert.Equal(t, StatusConcluido, next)

	next, ok = NextStatus(ActionFinish, false)
	require.True(t, ok)
	assert.Equal(t, StatusNaoCompareceu, next)

	_, ok = NextStatus(ActionDelete, false)
	assert.False(t, ok)
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTerminal(StatusAgendado))
	assert.False(t, IsTerminal(StatusEsperandoConfirmacao))
	assert.False(t, IsTerminal(StatusConfirmado))
	assert.True(t, IsTerminal(StatusConcluido))
	assert.True(t, IsTerminal(StatusCancelado))
	assert.True(t, IsTerminal(StatusNaoCompareceu))
}

func TestStyleToken_FallsBackOnUnknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "status-agendado", StyleToken(StatusAgendado))
	assert.Equal(t, "status-default", StyleToken(Status("SOMETHING_ELSE")))
}

func TestDisplayLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Esperando confirmação", DisplayLabel(StatusEsperandoConfirmacao))
	assert.Equal(t, "Não compareceu", DisplayLabel(StatusNaoCompareceu))
	assert.Equal(t, "X", DisplayLabel(Status("X")))
}
