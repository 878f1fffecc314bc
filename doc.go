/*
Package cfparse is a toolbox of general context-free parsers.

It provides three interchangeable parsing backends — Earley, GLR and GLL —
sharing a common grammar representation (package grammar), a common parse
tree/forest representation (package forest) and a common parser-facing
contract (package parser). All three accept ambiguous, priority-annotated
extended-BNF grammars with regex terminals and the extended operators
`?`, `*`, `+` and `()` capture groups.

Package structure:

■ grammar: rules, productions, tokens, the production iterator that encodes
extended operators, and a three-tier regex matcher (grammar/regex).

■ forest: a compact, shared, reference-counted parse-tree arena together with
the tree-priority comparison used to resolve ambiguity.

■ infotree: a loss-free tree covering every input byte, used for IDE-style
colorization and indentation.

■ earley, glr, gll: the three parsing backends.

■ parser: a uniform facade over the three backends.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package cfparse
