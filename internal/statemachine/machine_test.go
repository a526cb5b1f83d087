package statemachine

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state string
type event string

const (
	stateDraft     state = "DRAFT"
	statePublished state = "PUBLISHED"
	stateArchived  state = "ARCHIVED"

	eventPublish event = "PUBLISH"
	eventArchive event = "ARCHIVE"
)

type recordingInterceptor struct {
	calls []state
	err   error
	seen  *[]string // 与 action 共享的调用顺序记录
}

func (r *recordingInterceptor) PreStateChange(_ context.Context, target state, _ Event[event], _ Transition[state, event]) error {
	r.calls = append(r.calls, target)
	if r.seen != nil {
		*r.seen = append(*r.seen, "interceptor")
	}
	return r.err
}

func newTestDefinition(action Action[event], guard Guard[event]) *Definition[state, event] {
	return NewDefinition(
		Transition[state, event]{From: stateDraft, Event: eventPublish, To: statePublished, Guard: guard, Action: action},
		Transition[state, event]{From: statePublished, Event: eventArchive, To: stateArchived},
	)
}

func TestSend_CommitsMatchingTransition(t *testing.T) {
	def := newTestDefinition(nil, nil)
	m := def.NewMachine(stateDraft)

	next, err := m.Send(context.Background(), NewEvent(eventPublish))

	require.NoError(t, err)
	assert.Equal(t, statePublished, next)
	assert.Equal(t, statePublished, m.State())
}

func TestSend_RejectsUnmatchedEvent(t *testing.T) {
	def := newTestDefinition(nil, nil)
	m := def.NewMachine(stateDraft)

	// DRAFT 状态下没有 ARCHIVE 的转换
	next, err := m.Send(context.Background(), NewEvent(eventArchive))

	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, stateDraft, next)
	assert.Equal(t, stateDraft, m.State(), "rejected event must leave state unchanged")
}

func TestSend_GuardRejectionLeavesStateUnchanged(t *testing.T) {
	guard := func(_ context.Context, _ Event[event]) bool { return false }
	def := newTestDefinition(nil, guard)
	m := def.NewMachine(stateDraft)

	_, err := m.Send(context.Background(), NewEvent(eventPublish))

	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, stateDraft, m.State())
}

func TestSend_InterceptorRunsBeforeAction(t *testing.T) {
	var order []string
	ic := &recordingInterceptor{seen: &order}
	action := func(_ context.Context, _ Event[event]) error {
		order = append(order, "action")
		return nil
	}
	def := newTestDefinition(action, nil)
	m := def.NewMachine(stateDraft, ic)

	_, err := m.Send(context.Background(), NewEvent(eventPublish))

	require.NoError(t, err)
	assert.Equal(t, []string{"interceptor", "action"}, order)
	assert.Equal(t, []state{statePublished}, ic.calls, "interceptor sees the target state")
}

func TestSend_InterceptorErrorStillCommits(t *testing.T) {
	ic := &recordingInterceptor{err: errors.New("storage down")}
	def := newTestDefinition(nil, nil)
	m := def.NewMachine(stateDraft, ic)

	next, err := m.Send(context.Background(), NewEvent(eventPublish))

	require.NoError(t, err, "interceptor failure must not be masked as a transition failure")
	assert.Equal(t, statePublished, next)
}

func TestSend_ActionErrorDoesNotFailSend(t *testing.T) {
	action := func(_ context.Context, _ Event[event]) error { return errors.New("publish failed") }
	def := newTestDefinition(action, nil)
	m := def.NewMachine(stateDraft)

	next, err := m.Send(context.Background(), NewEvent(eventPublish))

	require.NoError(t, err)
	assert.Equal(t, statePublished, next)
}

func TestSend_InterceptorsRunInRegistrationOrder(t *testing.T) {
	first := &recordingInterceptor{}
	second := &recordingInterceptor{}

	def := newTestDefinition(nil, nil)
	m := def.NewMachine(stateDraft, first, second)

	_, err := m.Send(context.Background(), NewEvent(eventPublish))

	require.NoError(t, err)
	assert.Len(t, first.calls, 1)
	assert.Len(t, second.calls, 1)
}

func TestEvent_Headers(t *testing.T) {
	ev := NewEvent(eventPublish).WithHeader("ORDER_ID", "42")

	v, ok := ev.Header("ORDER_ID")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = ev.Header("MISSING")
	assert.False(t, ok)

	// WithHeader 返回副本，不共享底层 map
	ev2 := ev.WithHeader("OTHER", "x")
	_, ok = ev.Header("OTHER")
	assert.False(t, ok)
	v, _ = ev2.Header("ORDER_ID")
	assert.Equal(t, "42", v)
}

func TestDefinition_CanFire(t *testing.T) {
	def := newTestDefinition(nil, nil)

	assert.True(t, def.CanFire(stateDraft, eventPublish))
	assert.False(t, def.CanFire(stateDraft, eventArchive))
	assert.False(t, def.CanFire(stateArchived, eventPublish))
}
