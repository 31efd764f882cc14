// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lineproto

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/bureau-foundation/posebridge/lib/pose"
)

const (
	// MaxLineLength is the longest partial line kept before the
	// accumulator gives up and discards it.
	MaxLineLength = 2048

	// ReadBufferSize is the default size of a single channel read.
	ReadBufferSize = 1024

	// fieldCount is the number of numeric fields in a pose line.
	fieldCount = 7
)

// ErrMalformedLine is wrapped by every decoding failure.
var ErrMalformedLine = errors.New("lineproto: malformed line")

// DecodePose parses a pose line. A trailing "\n" or "\r\n" is ignored.
// Fields beyond the seventh are ignored.
func DecodePose(line []byte) (pose.Sample, error) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	parts := bytes.Split(line, []byte(" "))
	if len(parts) < fieldCount {
		return pose.Sample{}, fmt.Errorf("%w: %d fields, want %d: %q",
			ErrMalformedLine, len(parts), fieldCount, line)
	}

	var fields [fieldCount]float64
	for i := range fields {
		value, err := strconv.ParseFloat(string(parts[i]), 64)
		if err != nil {
			return pose.Sample{}, fmt.Errorf("%w: field %d %q: %v",
				ErrMalformedLine, i, parts[i], err)
		}
		fields[i] = value
	}
	return pose.FromFields(fields), nil
}

// AppendPose appends the line encoding of sample, including the trailing
// newline, to dst.
func AppendPose(dst []byte, sample pose.Sample) []byte {
	for i, value := range sample.Fields() {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = strconv.AppendFloat(dst, value, 'f', -1, 64)
	}
	return append(dst, '\n')
}

// AppendFrame appends a pose line followed by the NUL frame separator.
func AppendFrame(dst []byte, sample pose.Sample) []byte {
	return append(AppendPose(dst, sample), 0)
}

// AppendHandshake appends the tracker channel greeting for a bridge
// serving trackerCount body points.
func AppendHandshake(dst []byte, trackerCount int) []byte {
	dst = strconv.AppendInt(dst, int64(trackerCount), 10)
	dst = append(dst, " 0"...)
	return append(dst, 0)
}

// DecodeHandshake parses a greeting produced by AppendHandshake and
// returns the tracker count. The NUL separator is optional.
func DecodeHandshake(frame []byte) (int, error) {
	frame = bytes.TrimSuffix(frame, []byte{0})
	count, rest, found := bytes.Cut(frame, []byte(" "))
	if !found || string(rest) != "0" {
		return 0, fmt.Errorf("%w: handshake %q", ErrMalformedLine, frame)
	}
	trackerCount, err := strconv.Atoi(string(count))
	if err != nil || trackerCount < 0 {
		return 0, fmt.Errorf("%w: handshake tracker count %q", ErrMalformedLine, count)
	}
	return trackerCount, nil
}
