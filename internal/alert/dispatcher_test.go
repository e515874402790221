package alert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
)

// fakePlayer records playbacks and lets the test decide when they end.
type fakePlayer struct {
	mu      sync.Mutex
	played  []string
	stopped int
	playErr error
	pending func(error)
}

func (p *fakePlayer) Play(path string, done func(err error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.played = append(p.played, path)
	p.pending = done
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
}

func (p *fakePlayer) finish(err error) {
	p.mu.Lock()
	fn := p.pending
	p.pending = nil
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func testAssets() Assets {
	return Assets{Adhan: "/audio/adhan.mp3", Fajr: "/audio/fajr.mp3"}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"adhan", "notification", "silent"} {
		m, ok := ParseMode(s)
		assert.True(t, ok, s)
		assert.Equal(t, Mode(s), m)
	}
	_, ok := ParseMode("loud")
	assert.False(t, ok)
}

func TestSilentCompletesImmediately(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, testAssets())

	completed := false
	ok := d.Dispatch(schedule.Dhuhr, ModeSilent, func() { completed = true })

	assert.True(t, ok)
	assert.True(t, completed)
	assert.False(t, d.Active())
	assert.Empty(t, player.played, "silent mode never touches the player")
}

func TestAdhanPlaysAndCompletesOnPlaybackEnd(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, testAssets())

	completed := false
	ok := d.Dispatch(schedule.Dhuhr, ModeAdhan, func() { completed = true })
	require.True(t, ok)

	assert.Equal(t, []string{"/audio/adhan.mp3"}, player.played)
	assert.True(t, d.Active())
	assert.False(t, completed, "completion waits for natural playback end")

	player.finish(nil)
	assert.True(t, completed)
	assert.False(t, d.Active())
}

func TestFajrUsesItsOwnAsset(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, testAssets())

	d.Dispatch(schedule.Fajr, ModeAdhan, nil)
	assert.Equal(t, []string{"/audio/fajr.mp3"}, player.played)
}

func TestFajrFallsBackToStandardAsset(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, Assets{Adhan: "/audio/adhan.mp3"})

	d.Dispatch(schedule.Fajr, ModeAdhan, nil)
	assert.Equal(t, []string{"/audio/adhan.mp3"}, player.played)
}

func TestAdhanCompletesWhenPlaybackCannotStart(t *testing.T) {
	player := &fakePlayer{playErr: errors.New("no audio device")}
	d := NewDispatcher(player, testAssets())

	completed := false
	ok := d.Dispatch(schedule.Asr, ModeAdhan, func() { completed = true })

	assert.True(t, ok)
	assert.True(t, completed, "a failed start must not wedge the engine")
	assert.False(t, d.Active())
}

func TestOverlappingDispatchRejected(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, testAssets())

	require.True(t, d.Dispatch(schedule.Dhuhr, ModeAdhan, nil))
	assert.False(t, d.Dispatch(schedule.Asr, ModeAdhan, nil), "one alert at a time")

	player.finish(nil)
	assert.True(t, d.Dispatch(schedule.Asr, ModeAdhan, nil), "free again after completion")
}

func TestNotificationBannerAutoDismisses(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, testAssets())
	d.bannerDuration = 10 * time.Millisecond

	done := make(chan struct{})
	ok := d.Dispatch(schedule.Maghrib, ModeNotification, func() { close(done) })
	require.True(t, ok)

	prayer, visible := d.Banner()
	assert.True(t, visible)
	assert.Equal(t, schedule.Maghrib, prayer)
	assert.Empty(t, player.played, "notification mode never plays audio")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("banner did not auto-dismiss")
	}

	_, visible = d.Banner()
	assert.False(t, visible)
	assert.False(t, d.Active())
}

func TestStopCompletesInFlightAlert(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, testAssets())

	completed := false
	require.True(t, d.Dispatch(schedule.Isha, ModeAdhan, func() { completed = true }))

	d.Stop()
	assert.Equal(t, 1, player.stopped)
	assert.True(t, completed, "stop still signals completion")
	assert.False(t, d.Active())

	// The player's own done callback may still fire afterwards; completion
	// must not run twice.
	count := 0
	d2 := NewDispatcher(player, testAssets())
	require.True(t, d2.Dispatch(schedule.Isha, ModeAdhan, func() { count++ }))
	d2.Stop()
	player.finish(nil)
	assert.Equal(t, 1, count)
}

func TestStopWithoutActiveAlertIsNoop(t *testing.T) {
	player := &fakePlayer{}
	d := NewDispatcher(player, testAssets())

	d.Stop()
	assert.Equal(t, 0, player.stopped)
}
