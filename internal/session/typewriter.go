package session

import (
	"context"
	"time"
)

// TypingConfig controls the cosmetic typewriter reveal of assistant
// responses. The full text is already known before the reveal starts; this
// exists only for perceived responsiveness. A zero interval or chunk size
// disables the animation.
type TypingConfig struct {
	Interval time.Duration
	Chunk    int
}

// reveal grows the placeholder at index by fixed rune chunks at fixed
// intervals until the full text is shown. Cancelling the context commits
// the remaining text immediately and releases the ticker, so teardown never
// leaks a timer or strands a half-filled placeholder. Writes carry the
// message-list generation captured at send time; once the list has been
// replaced the reveal stops instead of writing into a different chat.
func (c *Coordinator) reveal(ctx context.Context, gen uint64, index int, full string) {
	if c.typing.Interval <= 0 || c.typing.Chunk <= 0 {
		if c.setContent(gen, index, full) {
			c.emit(index, full)
		}
		return
	}

	runes := []rune(full)
	ticker := time.NewTicker(c.typing.Interval)
	defer ticker.Stop()

	pos := 0
	for pos < len(runes) {
		select {
		case <-ctx.Done():
			if c.setContent(gen, index, full) {
				c.emit(index, string(runes[pos:]))
			}
			return
		case <-ticker.C:
			next := pos + c.typing.Chunk
			if next > len(runes) {
				next = len(runes)
			}
			if !c.setContent(gen, index, string(runes[:next])) {
				return
			}
			c.emit(index, string(runes[pos:next]))
			pos = next
		}
	}
}

func (c *Coordinator) emit(index int, chunk string) {
	if c.onChunk != nil && chunk != "" {
		c.onChunk(index, chunk)
	}
}
