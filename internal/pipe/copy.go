// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pipe

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// DefaultLineWidth is the width of encoded lines. It stays well below the
// line limit of canonical mode terminals.
const DefaultLineWidth = 76

// CopyFunc defines a function that reads the data from the given reader into
// the given writer.
type CopyFunc func(dst io.Writer, src io.Reader) (int64, error)

// Decoder returns a new streaming decoder. Line breaks in the input are
// ignored.
func Decoder(reader io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, reader)
}

var _ CopyFunc = Decode

// Decode is a [CopyFunc] that copies encoded data from src decoded to dst.
func Decode(dst io.Writer, src io.Reader) (int64, error) {
	return io.Copy(dst, Decoder(src)) //nolint:wrapcheck
}

// Encoder returns a new streaming encoder. It must be closed to flush
// partially written blocks.
func Encoder(written io.Writer) io.WriteCloser {
	return base64.NewEncoder(base64.StdEncoding, written)
}

var _ CopyFunc = Encode

// Encode is a [CopyFunc] that copies plain data read from src encoded to dst.
func Encode(dst io.Writer, src io.Reader) (int64, error) {
	encoder := Encoder(dst)

	n, err := io.Copy(encoder, src)
	if err != nil {
		_ = encoder.Close()
		return n, err //nolint:wrapcheck
	}

	return n, encoder.Close() //nolint:wrapcheck
}

// EncodeLines reads all data from src and returns it encoded and split into
// lines of at most width characters. A width that is not positive uses
// [DefaultLineWidth].
func EncodeLines(src io.Reader, width int) ([]string, error) {
	if width <= 0 {
		width = DefaultLineWidth
	}

	var encoded strings.Builder

	_, err := Encode(&encoded, src)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	data := encoded.String()
	lines := make([]string, 0, len(data)/width+1)

	for len(data) > 0 {
		n := min(width, len(data))
		lines = append(lines, data[:n])
		data = data[n:]
	}

	return lines, nil
}

// DecodeLines decodes the encoded lines into dst. Surrounding whitespace and
// carriage returns of each line are ignored.
func DecodeLines(dst io.Writer, lines []string) (int64, error) {
	var encoded bytes.Buffer

	for _, line := range lines {
		encoded.WriteString(strings.TrimSpace(line))
	}

	n, err := Decode(dst, &encoded)
	if err != nil {
		return n, &Error{Name: "decode", Err: err}
	}

	return n, nil
}
