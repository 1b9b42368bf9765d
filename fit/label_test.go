package fit_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/labelfit/fit"
	"github.com/ByLCY/labelfit/richtext"
)

func TestCacheSkipsOracleForEqualRequest(t *testing.T) {
	o := &fit.CountingOracle{Oracle: fixedOracle}
	c := fit.NewCache(newEngine(t, o))

	first := c.Fit(request("abcd abcd abcd abcd", 40, 10, fit.ModeWidth, 2, 100, fit.Unbounded))
	calls := o.Calls
	require.Positive(t, calls)

	// 内容相同的新请求同样命中缓存
	second := c.Fit(request("abcd abcd abcd abcd", 40, 10, fit.ModeWidth, 2, 100, fit.Unbounded))
	assert.Equal(t, calls, o.Calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Hits)
	assert.Equal(t, 1, c.Misses)

	c.Fit(request("abcd abcd abcd abcd", 40, 10, fit.ModeWidth, 2, 101, fit.Unbounded))
	assert.Greater(t, o.Calls, calls)

	c.Reset()
	c.Fit(request("abcd abcd abcd abcd", 40, 10, fit.ModeWidth, 2, 101, fit.Unbounded))
	assert.Equal(t, 3, c.Misses)
}

func TestCacheKeyIsNotAliased(t *testing.T) {
	o := &fit.CountingOracle{Oracle: fixedOracle}
	c := fit.NewCache(newEngine(t, o))
	text := richtext.Plain("Hello")
	req := fit.NewRequest(text, fit.Font{Size: 20})
	c.Fit(req)

	text.Runs[0].Text = "World"
	c.Fit(fit.NewRequest(text, fit.Font{Size: 20}))
	assert.Equal(t, 2, c.Misses)
}

func TestCachedResultIsNotAliased(t *testing.T) {
	o := &fit.CountingOracle{Oracle: fixedOracle}
	c := fit.NewCache(newEngine(t, o))
	text := richtext.Plain("Hello")
	first := c.Fit(fit.NewRequest(text, fit.Font{Size: 20}))

	// 修改调用方的文本或返回值都不能影响缓存
	text.Runs[0].Text = "World"
	first.Text.Runs[0].Text = "Wrong"
	first.LineBoxes[0].Width = -1

	res := c.Fit(fit.NewRequest(richtext.Plain("Hello"), fit.Font{Size: 20}))
	assert.Equal(t, 1, c.Hits)
	assert.Equal(t, 1, c.Misses)
	assert.Equal(t, "Hello", res.Text.String())
	require.Len(t, res.LineBoxes, 1)
	assert.Positive(t, res.LineBoxes[0].Width)
}

func TestLabelRecomputesOnlyOnChange(t *testing.T) {
	o := &fit.CountingOracle{Oracle: fixedOracle}
	l := fit.NewLabel(newEngine(t, o))
	l.SetText("Hello")
	l.SetFont(fit.Font{Size: 20})
	l.SetMode(fit.ModeWidth)
	l.SetLines(1)
	l.SetBox(200, 50)
	require.True(t, l.Stale())

	res := l.Fit()
	assert.Equal(t, 20.0, res.FontSize)
	assert.False(t, l.Stale())
	calls := o.Calls

	l.SetText("Hello")
	l.SetFont(fit.Font{Size: 20})
	l.SetMode(fit.ModeWidth)
	l.SetLines(1)
	l.SetBox(200, 50)
	l.SetMinFontSize(-1)
	l.SetSyncFontSize(-1)
	l.SetLineBreak(fit.BreakWordWrap)
	assert.False(t, l.Stale())
	l.Fit()
	assert.Equal(t, calls, o.Calls)

	l.SetBox(30, 50)
	assert.True(t, l.Stale())
	assert.Less(t, l.Fit().FontSize, 20.0)
	assert.Greater(t, o.Calls, calls)

	l.Invalidate()
	assert.True(t, l.Stale())
	before := o.Calls
	l.Fit()
	assert.Greater(t, o.Calls, before)
}

func TestLabelSetHTML(t *testing.T) {
	l := fit.NewLabel(newEngine(t, fixedOracle))
	require.NoError(t, l.SetHTML("<b>Hi</b> there"))
	req := l.Request()
	require.Len(t, req.Text.Runs, 2)
	assert.True(t, req.Text.Runs[0].Style.Bold)
	assert.Equal(t, "Hi there", req.Text.String())
}

func TestUIThreadCall(t *testing.T) {
	ui := fit.NewUIThread()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ui.Run(ctx) }()

	var ran, nested bool
	err := ui.Call(context.Background(), func(uctx context.Context) {
		ran = ui.On(uctx)
		// 在 UI 线程内的嵌套调用直接执行
		assert.NoError(t, ui.Call(uctx, func(context.Context) { nested = true }))
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, nested)
	assert.False(t, ui.On(context.Background()))

	var posted atomic.Bool
	ui.Post(func(context.Context) { posted.Store(true) })
	assert.Eventually(t, posted.Load, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.ErrorIs(t, ui.Call(context.Background(), func(context.Context) {}), fit.ErrUIThreadStopped)
}

func TestUIThreadPostBeforeRun(t *testing.T) {
	ui := fit.NewUIThread()
	var posted atomic.Bool
	ui.Post(func(context.Context) { posted.Store(true) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ui.Run(ctx) }()
	assert.Eventually(t, posted.Load, time.Second, time.Millisecond)

	cancel()
	<-done
	var late atomic.Bool
	ui.Post(func(context.Context) { late.Store(true) })
	time.Sleep(10 * time.Millisecond)
	assert.False(t, late.Load())
}

func TestUIThreadCallHonorsContext(t *testing.T) {
	ui := fit.NewUIThread()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	// 未启动 Run，调用只能等到超时
	err := ui.Call(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
