// Package cli is the interactive annotator: it reads lines from stdin and
// shows which dictionary patterns were found in them.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/bastiangx/wordlens/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Annotator is what the repl needs from the dictionary manager.
type Annotator interface {
	suggest.ICompleter
	FindInText(text string) ([]domain.Annotation, error)
}

// InputHandler reads lines and prints annotations. Lines starting with '?'
// are completed as pattern prefixes instead.
type InputHandler struct {
	annotator    Annotator
	renderer     *Renderer
	in           io.Reader
	suggestLimit int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(annotator Annotator, renderer *Renderer, in io.Reader, limit int) *InputHandler {
	return &InputHandler{
		annotator:    annotator,
		renderer:     renderer,
		in:           in,
		suggestLimit: limit,
	}
}

// Start runs the loop until input ends.
func (h *InputHandler) Start() error {
	log.Print("WordLens repl")
	log.Print("type or paste text and press Enter; '?prefix' completes patterns (Ctrl+D to exit):")
	reader := bufio.NewReader(h.in)

	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Requests returns how many lines were handled.
func (h *InputHandler) Requests() int {
	return h.requestCount
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	if prefix, ok := strings.CutPrefix(line, "?"); ok {
		h.handleComplete(strings.TrimSpace(prefix))
		return
	}

	start := time.Now()
	anns, err := h.annotator.FindInText(line)
	if err != nil {
		log.Errorf("Search failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for %d runes", time.Since(start), utils.RuneLen(line))
	h.renderer.Print(line, anns)
}

func (h *InputHandler) handleComplete(prefix string) {
	if !utils.IsValidInput(prefix) {
		log.Warnf("Nothing to complete for '%s'", prefix)
		return
	}
	suggestions := h.annotator.Complete(prefix, h.suggestLimit)
	if len(suggestions) == 0 {
		log.Warnf("No patterns start with '%s'", prefix)
		return
	}
	for i, s := range suggestions {
		line := fmt.Sprintf("%2d. %-30s %-7s %s", i+1, s.Pattern, s.Kind, s.Translation)
		fmt.Fprintln(h.renderer.w, line)
	}
}
