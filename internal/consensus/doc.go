// Package consensus is the HTTP client for the external consensus engine, the
// multi-model voting service that turns preliminary findings into a final
// severity verdict. The engine is a black box: this package validates
// transport and payload shape only, never vote semantics.
package consensus
