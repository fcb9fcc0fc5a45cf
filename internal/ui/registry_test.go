package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindspring/zhihui/internal/types"
	"github.com/mindspring/zhihui/log2"
)

type fakeApp struct {
	running bool
	shows   int
}

func (a *fakeApp) Show(ctx context.Context) error   { a.running = true; a.shows++; return nil }
func (a *fakeApp) Hide(ctx context.Context)         { a.running = false }
func (a *fakeApp) Update(ctx context.Context) error { return nil }
func (a *fakeApp) IsRunning() bool                  { return a.running }

func TestRegistry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(log2.NewTest(t, log2.LDebug))
	respond := &fakeApp{}
	mindmate := &fakeApp{}
	r.Register("respond", respond)
	r.Register("mindmate", mindmate)

	assert.Nil(t, r.Get("absent"))
	assert.Equal(t, []types.AppID{"respond", "mindmate"}, r.IDs())

	id, app := r.Running()
	assert.Empty(t, id)
	assert.Nil(t, app)

	require.NoError(t, r.Dispatch(ctx, "mindmate"))
	assert.True(t, r.IsRunning("mindmate"))
	assert.False(t, r.IsRunning("respond"))
	id, app = r.Running()
	assert.Equal(t, types.AppID("mindmate"), id)
	assert.Equal(t, mindmate, app)

	// unknown id is a logged no-op
	require.NoError(t, r.Dispatch(ctx, "absent"))
}

func TestRegistryReplace(t *testing.T) {
	t.Parallel()
	r := NewRegistry(log2.NewTest(t, log2.LDebug))
	first := &fakeApp{}
	second := &fakeApp{}
	r.Register("respond", first)
	r.Register("respond", second)
	assert.Equal(t, types.Apper(second), r.Get("respond"))
	assert.Equal(t, []types.AppID{"respond"}, r.IDs())
}

func TestRegistryInvalid(t *testing.T) {
	t.Parallel()
	r := NewRegistry(log2.NewTest(t, log2.LDebug))
	assert.Panics(t, func() { r.Register("", &fakeApp{}) })
	assert.Panics(t, func() { r.Register("x", nil) })
}
