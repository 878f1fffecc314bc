package parser

import (
	"github.com/pillwright/cfparse/forest"
	"github.com/pillwright/cfparse/grammar"
)

// maxApproxRounds bounds how many characters ParseApprox will discard while
// hunting for an accepting derivation, so a grammar with no derivation at
// all fails fast instead of skipping the entire input one rune at a time.
const maxApproxRounds = 16

// ParseApprox runs the selected backend with a simple skip-based recovery
// loop: each time recognition stalls at some offset, the offending rune is
// discarded and the whole input is re-parsed from scratch, repeating up to
// maxApproxRounds times. It always leaves MatchEnd/Tree/InfoTree set to the
// best attempt found — the last one tried, whether or not it finally
// accepted — so the caller gets a best-effort tree even on overall failure.
//
// This implements only the "skip" half of spec.md's approximate-parsing
// recovery; the "shift" half (inserting a synthetic token to satisfy a
// stalled production) would need to synthesize a concrete matching string
// for an arbitrary regex terminal, which grammar/regex does not support —
// see DESIGN.md. ApproxError.Shifts() is consequently always 0 from this
// façade; the field exists so a caller combining this result with recovery
// info from elsewhere (via Add) still round-trips correctly.
func (p *Parser) ParseApprox(root grammar.RuleID, text []rune) (ApproxError, error) {
	if err := validate(p.g); err != nil {
		p.lastErr = err
		return NewApproxError(true, 0, 0), err
	}
	p.lastErr = nil
	p.infoTree = nil

	work := append([]rune(nil), text...)
	skips := 0

	for round := 0; ; round++ {
		p.store = forest.NewStore().WithGrammar(p.g)
		p.text = work
		p.result = p.runBackend(root, work)

		if p.result.matchEnd == len(work) {
			p.trace.Debugf("parse_approx[%s]: accepted after %d skip(s)", p.backend, skips)
			return NewApproxError(false, 0, skips), nil
		}
		if round >= maxApproxRounds-1 {
			break
		}
		pos := p.result.matchEnd
		if pos < 0 {
			pos = 0
		}
		if pos >= len(work) {
			break
		}
		work = append(append([]rune{}, work[:pos]...), work[pos+1:]...)
		skips++
	}

	p.trace.Debugf("parse_approx[%s]: gave up after %d skip(s)", p.backend, skips)
	return NewApproxError(true, 0, skips), nil
}
