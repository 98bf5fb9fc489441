// Package speech narrates incoming text through a system TTS command.
package speech

import (
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Narrator speaks text asynchronously via an external synthesizer. Each new
// utterance cuts off the previous one, matching how a live overlay should
// never narrate stale advice.
type Narrator struct {
	// Command overrides the synthesizer binary. Empty picks a platform
	// default: say on macOS, espeak elsewhere.
	Command string

	mu      sync.Mutex
	enabled bool
	current *exec.Cmd
}

func (n *Narrator) command() string {
	if n.Command != "" {
		return n.Command
	}
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

// Enabled reports whether narration is on.
func (n *Narrator) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// Toggle flips narration on or off and returns the new setting. Turning it
// off silences any current utterance.
func (n *Narrator) Toggle() bool {
	n.mu.Lock()
	n.enabled = !n.enabled
	on := n.enabled
	current := n.current
	n.current = nil
	n.mu.Unlock()
	if !on {
		kill(current)
	}
	return on
}

// Speak narrates text, cutting off anything still playing. It is a no-op
// when narration is off or text is blank.
func (n *Narrator) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	previous := n.current
	cmd := exec.Command(n.command(), text)
	if err := cmd.Start(); err != nil {
		n.mu.Unlock()
		return
	}
	n.current = cmd
	n.mu.Unlock()

	kill(previous)
	go cmd.Wait()
}

// Stop silences the current utterance without changing the enabled state.
func (n *Narrator) Stop() {
	n.mu.Lock()
	current := n.current
	n.current = nil
	n.mu.Unlock()
	kill(current)
}

func kill(cmd *exec.Cmd) {
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
	}
}
