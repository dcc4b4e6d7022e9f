// Package rules implements the span ruler: a rule-based matcher that finds
// labelled spans in tokenized documents and lets every rule ask a
// "second opinion" callback before a match is accepted.
//
// # Patterns
//
// A pattern is either a literal phrase or a sequence of token constraints:
//
//	{label: DATE, pattern: "21.04.1986"}
//	{label: GPE, pattern: [{LOWER: san}, {LOWER: francisco}], id: sf}
//	{label: DATE, pattern: [{SHAPE: dd.dd.dddd}],
//	 on_match: {id: to_datetime.v1, args: ["%d.%m.%Y"]}}
//
// Phrases are tokenized by the owning pipeline with the ruler and every
// later stage disabled; token sequences are compiled immediately.
//
// # Rule identity
//
// Each pattern is registered under a key derived from its
// (label, id, on_match id) triple. Patterns sharing a triple share a key
// and are treated as one rule: they report the same label and id and are
// dispatched to the same callback, with the most recently added callback
// arguments.
//
// # Matching
//
// Match runs both matchers, drops zero-width matches, resolves every key,
// passes each span through its callback (which may veto it, enrich it or
// split it) and returns the result deduplicated by (start, end, label, id)
// and sorted by the same tuple.
//
// As a pipeline stage (Process) the ruler writes its matches to a span
// group on the document and, optionally, to the document entities.
package rules
