// Package evidence catalogs client evidence directories and extracts bounded
// text excerpts from the common evidence file types so controls can be matched
// against them. Extraction is best effort: binary formats that fail to parse
// degrade to a filename placeholder instead of failing the assessment.
package evidence
