/*
Package patch implements the rule application engine of patchrc.

	+---------+     +-------------+     +----------+
	| Locator | --> |    Rule     | --> |   Set    |
	| (where) |     | (+skip_if)  |     | (order)  |
	+---------+     +------+------+     +----------+
	                       |
	               +-------+-------+
	               |  Replacement  |
	               |    (what)     |
	               +---------------+

🎯 Purpose:
- Locates a target span in file content (literal, regex, or line window)
- Rewrites only that span (literal text, capture template, or callback)
- Guards every rule with an idempotence predicate so re-runs are no-ops
- Folds ordered rules over evolving content

🔄 Flow:
1. Locator.find yields zero or one candidate span
2. No match or skip predicate firing returns content untouched
3. Replacement rewrites bytes strictly inside the span
4. Set threads the output of each rule into the next

📝 Design Philosophy:
The engine is deliberately textual. It trades the precision of an AST
for simplicity and speed: it never parses source, never validates
syntax, and never reasons about program semantics. "Where to look"
(Locator), "what to write" (Replacement) and "in what order" (Set)
are separate so each can be tested on its own.
*/
package patch
