package sse

import "errors"

var (
	// ErrEmptyStreamURL is returned when the client is constructed
	// without a stream endpoint.
	ErrEmptyStreamURL = errors.New("sse: empty stream URL")

	// ErrUnexpectedStatus is returned when the stream endpoint answers
	// with anything but 200 OK.
	ErrUnexpectedStatus = errors.New("sse: unexpected response status")

	// ErrStreamClosed is returned when the server ends the stream.
	ErrStreamClosed = errors.New("sse: stream closed by server")
)
