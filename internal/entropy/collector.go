package entropy

import (
	"errors"
	"fmt"

	"github.com/keysmith-security/keysmith/internal/log"
	"github.com/keysmith-security/keysmith/pkg/digest"
	"github.com/keysmith-security/keysmith/pkg/kdf"
)

var (
	ErrInvalidState     = errors.New("collection session already finalized")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Mode selects how a session treats raw outcomes.
type Mode uint8

const (
	// Raw appends each retained outcome's bits directly. Non-power-of-two
	// sources discard outcomes outside the largest equiprobable
	// power-of-two subset.
	Raw Mode = iota

	// VonNeumann draws outcomes in pairs and applies generalized Von
	// Neumann correction: each bit position where the two outcomes differ
	// yields the first outcome's bit, equal positions yield nothing.
	// Only available for power-of-two sources.
	VonNeumann
)

// String returns the mode's name.
func (m Mode) String() string {
	if m == VonNeumann {
		return "von-neumann"
	}
	return "raw"
}

// Session is a single entropy collection run: Collecting until the pool
// reaches the target bit length, then Finalized. A session accepts events
// from exactly one source and is not safe for concurrent use; collection
// is interactive and inherently serial.
type Session struct {
	source     Source
	mode       Mode
	targetBits int
	pool       *Pool
	pending    int // first outcome of a Von Neumann pair, -1 when empty
	finalized  bool
}

// NewSession starts a collection session that finalizes once targetBits
// bits have been accepted.
func NewSession(source Source, mode Mode, targetBits int) (*Session, error) {
	if source.Arity() < 2 {
		return nil, fmt.Errorf("%w: unknown source", ErrInvalidParameter)
	}
	if targetBits < 1 {
		return nil, fmt.Errorf("%w: target of %d bits, must be >= 1", ErrInvalidParameter, targetBits)
	}
	if mode == VonNeumann && !source.SupportsCorrection() {
		return nil, fmt.Errorf("%w: %s has non-power-of-two arity %d, bias correction unavailable",
			ErrInvalidParameter, source, source.Arity())
	}

	log.Entropy.Debug().
		Str("source", source.String()).
		Str("mode", mode.String()).
		Int("target_bits", targetBits).
		Msg("collection session started")

	return &Session{
		source:     source,
		mode:       mode,
		targetBits: targetBits,
		pool:       NewPool(targetBits),
		pending:    -1,
	}, nil
}

// Add processes one raw event and returns the number of bits it
// contributed to the pool. Zero is not an error: discarded outcomes and
// the first half of a correction pair both yield nothing.
func (s *Session) Add(ev Event) (int, error) {
	if s.finalized {
		return 0, ErrInvalidState
	}
	if ev.Source != s.source {
		return 0, fmt.Errorf("%w: event from %s in a %s session", ErrInvalidParameter, ev.Source, s.source)
	}
	if ev.Outcome < 0 || ev.Outcome >= s.source.Arity() {
		return 0, fmt.Errorf("%w: outcome %d out of range for %s", ErrInvalidParameter, ev.Outcome, s.source)
	}

	added := 0
	switch s.mode {
	case Raw:
		// Out-of-range outcomes of non-power-of-two sources are discarded
		// rather than biased.
		if ev.Outcome >= s.source.retainLimit() {
			break
		}
		added = s.appendCapped(uint(ev.Outcome), s.source.BitsPerOutcome())

	case VonNeumann:
		if s.pending < 0 {
			s.pending = ev.Outcome
			break
		}
		first, second := s.pending, ev.Outcome
		s.pending = -1
		for i := s.source.BitsPerOutcome() - 1; i >= 0; i-- {
			b1 := byte(first >> i & 1)
			b2 := byte(second >> i & 1)
			if b1 == b2 {
				continue
			}
			if s.pool.Len() < s.targetBits {
				s.pool.AppendBit(b1)
				added++
			}
		}
	}

	if s.pool.Len() >= s.targetBits {
		s.finalized = true
		s.pending = -1
		log.Entropy.Debug().Int("bits", s.pool.Len()).Msg("collection session finalized")
	}
	return added, nil
}

// appendCapped appends at most the bits remaining until the target, most
// significant first, and returns the number appended.
func (s *Session) appendCapped(v uint, width int) int {
	n := 0
	for i := width - 1; i >= 0 && s.pool.Len() < s.targetBits; i-- {
		s.pool.AppendBit(byte(v >> i & 1))
		n++
	}
	return n
}

// Finalized reports whether the session has reached its target.
func (s *Session) Finalized() bool { return s.finalized }

// BitLen returns the number of bits collected so far.
func (s *Session) BitLen() int { return s.pool.Len() }

// TargetBits returns the session's requested pool length.
func (s *Session) TargetBits() int { return s.targetBits }

// Bytes returns the finalized pool as a byte-aligned buffer, the final
// partial byte zero-padded. Fails with ErrInvalidState while collecting.
func (s *Session) Bytes() ([]byte, error) {
	if !s.finalized {
		return nil, fmt.Errorf("%w: session still collecting (%d of %d bits)",
			ErrInvalidState, s.pool.Len(), s.targetBits)
	}
	return s.pool.Bytes(), nil
}

// Compress stretches the finalized pool down to exactly n bytes with
// PBKDF2-SHA512, for sources whose base does not divide the requested
// length evenly.
func (s *Session) Compress(salt []byte, iterations, n int) ([]byte, error) {
	raw, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	defer zeroBytes(raw)
	return kdf.PBKDF2(digest.SHA512, raw, salt, iterations, n)
}

// Destroy wipes the pool and finalizes the session. Aborting a session
// mid-collection leaves no partial state behind.
func (s *Session) Destroy() {
	s.pool.Zero()
	s.pending = -1
	s.finalized = true
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
