// Package pipeline executes declarative assessment pipelines: an ordered
// list of steps that assess evidence, gather an AI consensus verdict,
// render the PDF report, and persist the results.
package pipeline
