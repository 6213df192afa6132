package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"mediops/internal/domain"
)

// TokenCounter estimates the token cost of a piece of text.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with a tiktoken encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a counter for the named encoding (e.g. "cl100k_base").
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Count implements TokenCounter.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// HeuristicCounter approximates tokens as runes/4, the usual fallback when
// no encoding is available.
type HeuristicCounter struct{}

// Count implements TokenCounter.
func (HeuristicCounter) Count(text string) int {
	return utf8.RuneCountInString(text)/4 + 1
}

// RenderTranscript renders prior messages as "sender: text" lines in arrival
// order. When budget > 0, the oldest lines are dropped until the rendered
// transcript fits; surviving lines keep their order. A nil counter falls back
// to the heuristic.
func RenderTranscript(messages []domain.ChatMessage, budget int, counter TokenCounter) string {
	if len(messages) == 0 {
		return ""
	}
	if counter == nil {
		counter = HeuristicCounter{}
	}

	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, msg.Sender+": "+msg.Text)
	}

	if budget > 0 {
		total := 0
		costs := make([]int, len(lines))
		for i, line := range lines {
			costs[i] = counter.Count(line)
			total += costs[i]
		}
		start := 0
		for start < len(lines)-1 && total > budget {
			total -= costs[start]
			start++
		}
		lines = lines[start:]
	}

	return strings.Join(lines, "\n")
}
