package httpwire

import "errors"

// Parser and framing errors.
var (
	// ErrInvalidRequestLine indicates the request line has other than
	// three space-separated tokens, or is missing its trailing CRLF.
	ErrInvalidRequestLine = errors.New("httpwire: invalid request line")

	// ErrMethodTooLong indicates the method token is empty or exceeds
	// MaxMethodLength.
	ErrMethodTooLong = errors.New("httpwire: method too long")

	// ErrURITooLong indicates the request-target is empty or exceeds
	// MaxURILength.
	ErrURITooLong = errors.New("httpwire: request-target too long")

	// ErrHeadersTooLarge indicates the header block exceeds MaxHeaderSize.
	ErrHeadersTooLarge = errors.New("httpwire: headers too large")

	// ErrNoHeaderTerminator indicates the buffer has no blank-line
	// terminator (\r\n\r\n) ending the header block.
	ErrNoHeaderTerminator = errors.New("httpwire: no header terminator found")

	// ErrInvalidHeader indicates a header line with no colon separator.
	ErrInvalidHeader = errors.New("httpwire: invalid header line")
)
