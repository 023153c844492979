package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	err  error

	mu   sync.Mutex
	msgs []*Message
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Notify(_ context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
	return r.err
}

func (r *recorder) messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Message(nil), r.msgs...)
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &recorder{name: "a"}, &recorder{name: "b"}
	msg := &Message{Title: "hi"}
	require.NoError(t, NewMulti(a, b).Notify(context.Background(), msg))
	assert.Equal(t, []*Message{msg}, a.messages())
	assert.Equal(t, []*Message{msg}, b.messages())
}

func TestMulti_FailuresDoNotStopOthers(t *testing.T) {
	down := errors.New("down")
	ok := &recorder{name: "ok"}
	failing := &recorder{name: "failing", err: down}
	panicking := Func(func(context.Context, *Message) error { panic("nil map") })

	err := NewMulti(failing, panicking, ok).Notify(context.Background(), &Message{Title: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "failing: down")
	assert.Contains(t, err.Error(), "nil map")
	assert.Len(t, ok.messages(), 1)
}

func TestMulti_Empty(t *testing.T) {
	m := NewMulti()
	assert.Equal(t, 0, m.Len())
	assert.NoError(t, m.Notify(context.Background(), &Message{}))
}
