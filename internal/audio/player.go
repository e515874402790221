// Package audio plays the adhan by shelling out to a system media player.
// The kiosk deliberately avoids linking a codec stack; any player that
// exits when the file ends works (ffplay, mpv, aplay, afplay).
package audio

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// defaultCommand is used when no player command is configured.
const defaultCommand = "ffplay -nodisp -autoexit -loglevel quiet"

// ExecPlayer runs a media player process per asset. Completion fires when
// the process exits, which for well-behaved players is when playback
// naturally finishes.
type ExecPlayer struct {
	mu      sync.Mutex
	command []string
	cmd     *exec.Cmd
	stopped bool
}

// NewExecPlayer creates a player from a command line like
// "ffplay -nodisp -autoexit"; the asset path is appended as the final
// argument. An empty command selects the default.
func NewExecPlayer(command string) *ExecPlayer {
	if command == "" {
		command = defaultCommand
	}
	return &ExecPlayer{command: strings.Fields(command)}
}

// Play starts playback of the asset. done is invoked from a goroutine when
// the player process exits; a deliberate Stop is not reported as an error.
func (p *ExecPlayer) Play(path string, done func(err error)) error {
	if path == "" {
		return fmt.Errorf("no audio asset configured")
	}

	p.mu.Lock()
	if p.cmd != nil {
		p.mu.Unlock()
		return fmt.Errorf("playback already active")
	}

	args := append(p.command[1:], path)
	cmd := exec.Command(p.command[0], args...)
	if err := cmd.Start(); err != nil {
		p.mu.Unlock()
		return fmt.Errorf("failed to start %s: %w", p.command[0], err)
	}
	p.cmd = cmd
	p.stopped = false
	p.mu.Unlock()

	go func() {
		err := cmd.Wait()

		p.mu.Lock()
		stopped := p.stopped
		p.cmd = nil
		p.stopped = false
		p.mu.Unlock()

		if stopped {
			err = nil
		}
		done(err)
	}()

	return nil
}

// Stop kills the active player process, if any. The pending done callback
// still fires (without an error) once the process is reaped.
func (p *ExecPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	p.stopped = true
	if err := p.cmd.Process.Kill(); err != nil {
		log.Debug().Err(err).Msg("failed to kill audio player")
	}
}

// NullPlayer discards playback requests. Used when no audio asset or player
// is available so the adhan mode degrades to an immediate completion.
type NullPlayer struct{}

// Play logs and completes immediately.
func (NullPlayer) Play(path string, done func(err error)) error {
	log.Info().Str("asset", path).Msg("audio disabled, skipping playback")
	go done(nil)
	return nil
}

// Stop is a no-op.
func (NullPlayer) Stop() {}
