// internal/statemachine/machine.go
package statemachine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrInvalidTransition 表示当前状态下没有匹配该事件的转换。
// 调用方必须感知到这个拒绝，不能静默吞掉（否则 Saga 进度会失去同步）。
var ErrInvalidTransition = errors.New("statemachine: no transition for current state and event")

// Event 是驱动状态机的事件载体。
// Headers 携带事件的上下文元数据（例如目标订单的 ID），
// 对应消息系统中的消息头。
type Event[E comparable] struct {
	Kind    E
	headers map[string]string
}

// NewEvent 创建一个不带元数据的事件。
func NewEvent[E comparable](kind E) Event[E] {
	return Event[E]{Kind: kind}
}

// WithHeader 返回一个附加了元数据的事件副本。
func (e Event[E]) WithHeader(key, value string) Event[E] {
	headers := make(map[string]string, len(e.headers)+1)
	for k, v := range e.headers {
		headers[k] = v
	}
	headers[key] = value
	e.headers = headers
	return e
}

// Header 读取事件元数据。
func (e Event[E]) Header(key string) (string, bool) {
	v, ok := e.headers[key]
	return v, ok
}

// Guard 在转换被接受前求值；返回 false 时转换被拒绝，等同于表中无此转换。
type Guard[E comparable] func(ctx context.Context, ev Event[E]) bool

// Action 是绑定在目标状态上的入口动作，在转换提交之后同步执行。
// 动作自己负责处理发布失败（重试/死信由消息层决定），
// 引擎只记录错误，不回滚已提交的转换。
type Action[E comparable] func(ctx context.Context, ev Event[E]) error

// Transition 是转换表中的一行：fromState × event → toState。
type Transition[S, E comparable] struct {
	From   S
	Event  E
	To     S
	Guard  Guard[E]
	Action Action[E]
}

// Interceptor 在转换提交之前被同步调用，可以持久化目标状态。
// 返回错误时引擎记录日志但仍然提交转换（持久化缺失作为可观测的降级，
// 而不是掩盖成转换失败）。
type Interceptor[S, E comparable] interface {
	PreStateChange(ctx context.Context, target S, ev Event[E], tr Transition[S, E]) error
}

// Definition 持有一张纯数据的转换表，可以被多个 Machine 实例共享。
type Definition[S, E comparable] struct {
	table map[S]map[E]Transition[S, E]
}

// NewDefinition 从转换列表构建转换表。
// 同一 (from, event) 出现多次时后者覆盖前者。
func NewDefinition[S, E comparable](transitions ...Transition[S, E]) *Definition[S, E] {
	table := make(map[S]map[E]Transition[S, E])
	for _, tr := range transitions {
		row, ok := table[tr.From]
		if !ok {
			row = make(map[E]Transition[S, E])
			table[tr.From] = row
		}
		row[tr.Event] = tr
	}
	return &Definition[S, E]{table: table}
}

// Lookup 查找 (from, event) 对应的转换。
func (d *Definition[S, E]) Lookup(from S, event E) (Transition[S, E], bool) {
	tr, ok := d.table[from][event]
	return tr, ok
}

// CanFire 报告某个状态下事件是否有匹配的转换（不考虑 Guard）。
func (d *Definition[S, E]) CanFire(from S, event E) bool {
	_, ok := d.table[from][event]
	return ok
}

// NewMachine 以给定的起始状态创建一个一次性的状态机实例。
// 实例不常驻：每次事件发送都应从持久化的当前状态重建，用完即弃，
// 以保证进程重启或多实例部署下不会出现内存状态与存储状态的漂移。
func (d *Definition[S, E]) NewMachine(start S, interceptors ...Interceptor[S, E]) *Machine[S, E] {
	return &Machine[S, E]{def: d, current: start, interceptors: interceptors}
}

// Machine 是一个按事件推进的确定性状态机实例。
type Machine[S, E comparable] struct {
	def          *Definition[S, E]
	current      S
	interceptors []Interceptor[S, E]
}

// State 返回当前状态。
func (m *Machine[S, E]) State() S {
	return m.current
}

// Send 处理一个事件：
//  1. 在转换表中查找 (当前状态, 事件)，无匹配则返回 ErrInvalidTransition，状态不变；
//  2. 求值 Guard，false 同样按拒绝处理；
//  3. 按注册顺序同步调用所有拦截器（拦截器可持久化目标状态）；
//  4. 提交转换；
//  5. 同步执行目标状态的入口动作。
func (m *Machine[S, E]) Send(ctx context.Context, ev Event[E]) (S, error) {
	tr, ok := m.def.Lookup(m.current, ev.Kind)
	if !ok {
		return m.current, errors.Wrapf(ErrInvalidTransition, "state=%v event=%v", m.current, ev.Kind)
	}
	if tr.Guard != nil && !tr.Guard(ctx, ev) {
		return m.current, errors.Wrapf(ErrInvalidTransition, "guard rejected: state=%v event=%v", m.current, ev.Kind)
	}

	for _, ic := range m.interceptors {
		if err := ic.PreStateChange(ctx, tr.To, ev, tr); err != nil {
			// 拦截器失败不回滚转换：持久化缺失在日志中保持可见。
			log.Error().Err(err).
				Str("event", fmt.Sprintf("%v", ev.Kind)).
				Str("target", fmt.Sprintf("%v", tr.To)).
				Msg("state change interceptor failed; committing transition without persistence")
		}
	}

	m.current = tr.To

	if tr.Action != nil {
		if err := tr.Action(ctx, ev); err != nil {
			log.Error().Err(err).
				Str("state", fmt.Sprintf("%v", tr.To)).
				Str("event", fmt.Sprintf("%v", ev.Kind)).
				Msg("entry action failed")
		}
	}

	return m.current, nil
}
