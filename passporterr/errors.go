// Package passporterr defines the error kinds surfaced by the primitives,
// fob, codec and keychain packages. Every discriminant is a distinct type so
// callers can tell kinds apart with errors.As, without depending on
// message text.
package passporterr

import "fmt"

// FobParsingError reports a failure while decoding a Fob: a malformed
// record, a tag mismatch, a name-invariant mismatch, or a failed keypair
// probe.
type FobParsingError struct {
	Reason string
}

func (e *FobParsingError) Error() string {
	return fmt.Sprintf("fob parsing error: %s", e.Reason)
}

// CryptoPrimitiveError wraps a failure reported by the primitives layer:
// bad key material, a cipher failure, a signature failure.
type CryptoPrimitiveError struct {
	Reason string
}

func (e *CryptoPrimitiveError) Error() string {
	return fmt.Sprintf("crypto primitive error: %s", e.Reason)
}

// InvalidPinError reports a PIN that did not parse as an unsigned 32-bit
// integer.
type InvalidPinError struct {
	Reason string
}

func (e *InvalidPinError) Error() string {
	return fmt.Sprintf("invalid pin: %s", e.Reason)
}

// DerivationError reports a KDF or hash step that produced unusable
// output: short key material, an empty salt.
type DerivationError struct {
	Reason string
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derivation error: %s", e.Reason)
}

// EmptyInputError reports a required input, such as a chosen Mpid name,
// that was empty.
type EmptyInputError struct {
	Field string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s", e.Field)
}
