// Package mappings ships the hand-authored cross-reference tables translating
// control identifiers between compliance frameworks, plus lookup and lint
// operations that keep the tables internally consistent.
package mappings
