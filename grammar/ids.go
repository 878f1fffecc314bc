package grammar

// RuleID and ProdID are 32-bit identifiers into a Grammar's rule and
// production tables. Both reserve their top two bits to tag "virtual"
// entries synthesized for the repeat/optional token of a production,
// rather than materializing those as ordinary stored rules and productions.
//
// Tagging scheme (ported from Compiler/Syntax/GLR/Syntax.h): given a
// production p with a repeat range, the grammar never stores an extra rule
// object for p's auxiliary nonterminal X'. Instead, two tagged ids stand in
// for it:
//
//	RepeatRuleID(p) = ruleRepeat | p   -- the rule "X' -> e | X' -> X' body"
//	ESkipRuleID(p)  = ruleESkip  | p   -- the rule "X' -> body" (used for ?)
//
// and the (at most two) productions of such a virtual rule are themselves
// tagged production ids built from the same base:
//
//	EpsilonProdID(p) = prodEpsilon | p
//	RepeatProdID(p)  = prodRepeat  | p   -- "X' -> X' body" (left recursive)
//	ESkipProdID(p)   = prodESkip   | p   -- "X' -> body" (non-recursive copy)
//
// A production id tagged prodESkip is, in addition, the marker the forest
// package uses to recognize a node as transparent during priority
// comparisons: as a child of its own base production it is spliced into the
// parent's child list, and a direct comparison involving such a node is a
// tie.
const (
	idMask = 0xC0000000

	ruleRepeatTag RuleID = 0x80000000
	ruleESkipTag  RuleID = 0x40000000

	prodEpsilonTag ProdID = 0x80000000
	prodESkipTag   ProdID = 0x40000000
	prodRepeatTag  ProdID = 0xC0000000
)

// RuleID identifies a rule (nonterminal) in a Grammar.
type RuleID uint32

// ProdID identifies a production (one alternative of a rule) in a Grammar.
type ProdID uint32

// SpecialRule returns ruleRepeat/ruleESkip/0, telling apart an ordinary
// stored rule id from a virtual one synthesized for a repeat construct.
func SpecialRule(id RuleID) RuleID {
	return id & RuleID(idMask)
}

// BaseRule strips the tag bits, yielding the id of the production the
// virtual rule was derived from (not a rule id — see the package comment).
func BaseRule(id RuleID) ProdID {
	return ProdID(id) &^ ProdID(idMask)
}

// RepeatRuleID builds the virtual "X' -> e | X' -> X' body" rule id for the
// production base (used for * and +).
func RepeatRuleID(base ProdID) RuleID {
	return RuleID(base) | ruleRepeatTag
}

// ESkipRuleID builds the virtual "X' -> body" rule id for the production
// base (used for ?).
func ESkipRuleID(base ProdID) RuleID {
	return RuleID(base) | ruleESkipTag
}

// SpecialProd returns prodEpsilon/prodESkip/prodRepeat/0, identifying a
// tagged production id.
func SpecialProd(id ProdID) ProdID {
	return id & ProdID(idMask)
}

// BaseProd strips the tag bits, yielding the underlying stored production id.
func BaseProd(id ProdID) ProdID {
	return id &^ ProdID(idMask)
}

// EpsilonProdID builds the tagged id of base's synthesized empty alternative.
func EpsilonProdID(base ProdID) ProdID { return base | prodEpsilonTag }

// ESkipProdID builds the tagged id of base's synthesized non-recursive body
// alternative (the "X' -> body" production used for ?).
func ESkipProdID(base ProdID) ProdID { return base | prodESkipTag }

// RepeatProdID builds the tagged id of base's synthesized left-recursive
// alternative ("X' -> X' body", used for * and +).
func RepeatProdID(base ProdID) ProdID { return base | prodRepeatTag }

// IsRepeatRule reports whether id is a virtual "X' -> e | X' -> X' body"
// rule synthesized for a '*' or '+' range.
func IsRepeatRule(id RuleID) bool {
	return SpecialRule(id) == ruleRepeatTag
}

// IsESkipRule reports whether id is a virtual "X' -> body" rule synthesized
// for a '?' range.
func IsESkipRule(id RuleID) bool {
	return SpecialRule(id) == ruleESkipTag
}

// IsTransparent reports whether id marks a node that forest.Compare treats
// as transparent: a direct comparison involving such a node is a tie (as a
// child of its own base production it is spliced into the parent's child
// list). Matches Syntax::specialProd(id) == prodESkip.
func IsTransparent(id ProdID) bool {
	return SpecialProd(id) == prodESkipTag
}
