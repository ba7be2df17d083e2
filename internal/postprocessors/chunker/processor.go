// Package chunker splits extracted text into overlapping passages whose
// size adapts to the length of each text.
package chunker

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// passageNamespace seeds the name-based passage IDs.
var passageNamespace = uuid.MustParse("6f1c9a52-3b0e-4c8e-9a57-2d4f8e61b0c3")

// DefaultSeparators are tried in order: paragraph, line, sentence, word,
// then single characters.
var DefaultSeparators = []string{"\n\n", "\n", ".", " ", ""}

// Tier picks a chunk size and overlap for texts shorter than Below runes.
// A zero Below matches any length.
type Tier struct {
	Below   int
	Size    int
	Overlap int
}

// DefaultTiers is the adaptive sizing policy.
var DefaultTiers = []Tier{
	{Below: 1000, Size: 400, Overlap: 50},
	{Below: 3000, Size: 700, Overlap: 100},
	{Size: 1000, Overlap: 120},
}

// Processor splits texts recursively on separators and merges the pieces
// into chunks no longer than the tier's size.
type Processor struct {
	tiers      []Tier
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithTiers replaces the sizing policy. Tiers are checked in order.
func WithTiers(tiers ...Tier) Option {
	return func(p *Processor) {
		if len(tiers) > 0 {
			p.tiers = tiers
		}
	}
}

// WithFixedSize uses one size and overlap for every text.
func WithFixedSize(size, overlap int) Option {
	return func(p *Processor) {
		if size <= 0 {
			return
		}
		if overlap < 0 || overlap >= size {
			overlap = size / 4
		}
		p.tiers = []Tier{{Size: size, Overlap: overlap}}
	}
}

// WithSeparators replaces the separator hierarchy.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) > 0 {
			p.separators = seps
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		tiers:      DefaultTiers,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// TierFor returns the sizing tier for a text of n runes.
func (p *Processor) TierFor(n int) Tier {
	for _, t := range p.tiers {
		if t.Below == 0 || n < t.Below {
			return t
		}
	}
	return p.tiers[len(p.tiers)-1]
}

// Chunk splits each text independently and numbers passages consecutively.
// Overlap never crosses from one text into the next.
func (p *Processor) Chunk(ctx context.Context, source string, texts []string) ([]domain.Passage, error) {
	var passages []domain.Passage
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tier := p.TierFor(runeLen(text))
		s := splitter{size: tier.Size, overlap: tier.Overlap}
		for _, chunk := range s.split(text, p.separators) {
			passages = append(passages, newPassage(source, len(passages), chunk))
		}
	}
	return passages, nil
}

func newPassage(source string, position int, text string) domain.Passage {
	name := source + "\x00" + strconv.Itoa(position) + "\x00" + text
	return domain.Passage{
		ID:       uuid.NewSHA1(passageNamespace, []byte(name)).String(),
		Source:   source,
		Text:     text,
		Position: position,
	}
}

type splitter struct {
	size    int
	overlap int
}

// split breaks text on the first separator it contains. Pieces that are
// still too long recurse into the remaining separators.
func (s splitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = candidate
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var chunks, good []string
	for _, piece := range splitKeep(text, sep) {
		if runeLen(piece) < s.size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good)...)
	}
	return chunks
}

// merge packs pieces greedily into chunks of at most size runes. When a
// chunk is emitted, its trailing pieces totalling at most overlap runes
// start the next one.
func (s splitter) merge(pieces []string) []string {
	var chunks, current []string
	total := 0
	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > s.size && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total+n > s.size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeep splits on sep and keeps it at the start of each following
// piece so that joining the pieces restores the text. An empty sep splits
// into runes. Empty pieces are dropped.
func splitKeep(text, sep string) []string {
	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}
	parts := strings.Split(text, sep)
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
