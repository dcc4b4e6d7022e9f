// Package types defines the data model shared by spanruler's packages:
// tokens and documents produced by the tokenizer, the spans the ruler
// emits over them, and the rule patterns users register.
package types
