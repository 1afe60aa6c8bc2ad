// Package codec implements the streaming STOMP wire format: decoding a byte
// buffer into Transmissions (heartbeats or complete frames) and encoding
// frames back to bytes.
//
// Decode never blocks and never over-reads: it reports "need more data"
// rather than erroring on a partial transmission, and it only errors when
// the bytes already present cannot be extended into a valid transmission
// (an unrecognized command, a missing ':' in a header, a missing NUL
// terminator once the declared body length has been satisfied, and so on).
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"stomp/frame"
	"stomp/header"
)

// needMore is an internal sentinel: the bytes seen so far are a valid
// prefix of some transmission, but more bytes are required to know which.
var needMore = errors.New("stomp/codec: need more data")

// allCommands is the full STOMP command vocabulary, client- and
// server-originated alike. The grammar for a frame's header and body
// section doesn't care which side sent it, so the codec recognizes any of
// these; it is the session dispatcher, not the codec, that rejects an
// inbound frame whose command isn't one a server may legitimately send.
var allCommands = []frame.Command{
	frame.CmdConnect,
	frame.CmdSend,
	frame.CmdSubscribe,
	frame.CmdUnsubscribe,
	frame.CmdAck,
	frame.CmdNack,
	frame.CmdBegin,
	frame.CmdCommit,
	frame.CmdAbort,
	frame.CmdDisconnect,
	frame.CmdConnected,
	frame.CmdMessage,
	frame.CmdReceipt,
	frame.CmdError,
}

// Decode attempts to decode one Transmission from the front of buf.
//
//   - (zero value, false, nil): more bytes are required; buf is untouched.
//   - (t, true, nil): a full transmission was decoded and removed from buf.
//   - (zero value, false, err): the bytes in buf cannot form a valid
//     transmission; this is a fatal protocol error for the caller.
func Decode(buf *bytes.Buffer) (frame.Transmission, bool, error) {
	data := buf.Bytes()
	if len(data) == 0 {
		return frame.Transmission{}, false, nil
	}

	if data[0] == '\n' || data[0] == '\r' {
		consumed, err := scanHeartbeat(data)
		if err != nil {
			if err == needMore {
				return frame.Transmission{}, false, nil
			}
			return frame.Transmission{}, false, err
		}
		buf.Next(consumed)
		return frame.HeartbeatTransmission(), true, nil
	}

	t, consumed, err := scanFrame(data)
	if err != nil {
		if err == needMore {
			return frame.Transmission{}, false, nil
		}
		return frame.Transmission{}, false, err
	}
	buf.Next(consumed)
	return t, true, nil
}

// scanHeartbeat consumes the maximal run of complete line-ending units
// starting at data[0]. data[0] is already known to be '\n' or '\r'.
func scanHeartbeat(data []byte) (int, error) {
	i := 0
	for i < len(data) {
		switch data[i] {
		case '\n':
			i++
		case '\r':
			if i+1 >= len(data) {
				return 0, needMore
			}
			if data[i+1] != '\n' {
				return 0, fmt.Errorf("stomp/codec: bare CR not followed by LF at offset %d", i)
			}
			i += 2
		default:
			return i, nil
		}
	}
	return i, nil
}

// tryLineEnding attempts to match exactly one line-ending unit (CR? LF) at
// pos without requiring one to be present.
func tryLineEnding(data []byte, pos int) (newPos int, ok bool, incomplete bool) {
	if pos >= len(data) {
		return pos, false, true
	}
	if data[pos] == '\n' {
		return pos + 1, true, false
	}
	if data[pos] == '\r' {
		if pos+1 >= len(data) {
			return pos, false, true
		}
		if data[pos+1] == '\n' {
			return pos + 2, true, false
		}
		return pos, false, false
	}
	return pos, false, false
}

func expectLineEnding(data []byte, pos int) (int, error) {
	newPos, ok, incomplete := tryLineEnding(data, pos)
	if incomplete {
		return 0, needMore
	}
	if !ok {
		return 0, fmt.Errorf("stomp/codec: expected line ending at offset %d", pos)
	}
	return newPos, nil
}

func scanFrame(data []byte) (frame.Transmission, int, error) {
	cmd, pos, err := scanCommand(data)
	if err != nil {
		return frame.Transmission{}, 0, err
	}
	pos, err = expectLineEnding(data, pos)
	if err != nil {
		return frame.Transmission{}, 0, err
	}

	var headers header.List
	for {
		if newPos, ok, incomplete := tryLineEnding(data, pos); incomplete {
			return frame.Transmission{}, 0, needMore
		} else if ok {
			pos = newPos
			break
		}
		name, value, newPos, err := scanHeader(data, pos)
		if err != nil {
			return frame.Transmission{}, 0, err
		}
		headers = headers.Add(name, value)
		pos = newPos
	}

	body, bodyLen, err := scanBody(data, pos, headers)
	if err != nil {
		return frame.Transmission{}, 0, err
	}
	pos += bodyLen

	if pos >= len(data) {
		return frame.Transmission{}, 0, needMore
	}
	if data[pos] != 0 {
		return frame.Transmission{}, 0, fmt.Errorf("stomp/codec: expected NUL terminator at offset %d, got %q", pos, data[pos])
	}
	pos++

	// Copy the body out of data: the caller's buffer reuses that storage
	// for the bytes it reads next.
	f := &frame.Frame{Command: cmd, Headers: headers, Body: append([]byte(nil), body...)}
	return frame.FrameTransmission(f), pos, nil
}

// scanCommand matches the longest member of allCommands that data is
// currently a valid prefix of, waiting for more bytes (rather than
// committing to a shorter match) whenever a longer candidate sharing the
// same prefix — e.g. CONNECT vs. CONNECTED — hasn't been ruled out yet.
func scanCommand(data []byte) (frame.Command, int, error) {
	var candidates []string
	for _, c := range allCommands {
		s := string(c)
		if s[0] == data[0] {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return "", 0, fmt.Errorf("stomp/codec: unrecognized command starting with %q", data[0])
	}
	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) < len(candidates[j]) })

	matched := ""
	for _, token := range candidates {
		cmp := len(data)
		if cmp > len(token) {
			cmp = len(token)
		}
		if string(data[:cmp]) != token[:cmp] {
			continue // no shared prefix with the data we have; ruled out
		}
		if cmp < len(token) {
			// data matches token as far as it goes but doesn't cover all of
			// it yet; still live, so we can't commit to a shorter match.
			return "", 0, needMore
		}
		matched = token
	}
	if matched == "" {
		end := len(data)
		if end > 16 {
			end = 16
		}
		return "", 0, fmt.Errorf("stomp/codec: unrecognized command %q", data[:end])
	}
	return frame.Command(matched), len(matched), nil
}

// scanHeader parses one "name:value\n" header. The name stops at the first
// unescaped ':', '\r', or '\n'; a literal ':' must follow immediately or the
// header is malformed. The value stops at the first unescaped '\r' or '\n',
// consumed as the header's trailing line ending.
func scanHeader(data []byte, pos int) (name, value string, newPos int, err error) {
	rawName, pos, err := scanRawUntil(data, pos, ":\r\n")
	if err != nil {
		return "", "", 0, err
	}
	if pos >= len(data) {
		return "", "", 0, needMore
	}
	if data[pos] != ':' {
		return "", "", 0, fmt.Errorf("stomp/codec: expected ':' in header at offset %d", pos)
	}
	pos++

	rawValue, pos, err := scanRawUntil(data, pos, "\r\n")
	if err != nil {
		return "", "", 0, err
	}
	pos, err = expectLineEnding(data, pos)
	if err != nil {
		return "", "", 0, err
	}
	return header.Unescape(rawName), header.Unescape(rawValue), pos, nil
}

// scanRawUntil returns the still-escaped substring starting at pos up to
// (not including) the first byte in stopSet that isn't part of a two-byte
// escape sequence. None of the four recognized escape sequences (\n \r \c
// \\) contain a raw stop byte, so skipping escape pairs blindly is safe.
func scanRawUntil(data []byte, pos int, stopSet string) (string, int, error) {
	i := pos
	for {
		if i >= len(data) {
			return "", 0, needMore
		}
		c := data[i]
		if c == '\\' {
			if i+1 >= len(data) {
				return "", 0, needMore
			}
			i += 2
			continue
		}
		if bytes.IndexByte([]byte(stopSet), c) >= 0 {
			return string(data[pos:i]), i, nil
		}
		i++
	}
}

// scanBody returns the body slice and how many bytes it occupies, following
// the content-length rule when present and well-formed, and falling back to
// a NUL-terminated scan otherwise.
func scanBody(data []byte, pos int, headers header.List) ([]byte, int, error) {
	n, present, clErr := header.ContentLength(headers)
	if present && clErr == nil {
		end := pos + n
		if end > len(data) {
			return nil, 0, needMore
		}
		return data[pos:end], n, nil
	}
	if present && clErr != nil {
		log.Printf("stomp/codec: %v; falling back to NUL-terminated body scan", clErr)
	}
	idx := bytes.IndexByte(data[pos:], 0)
	if idx < 0 {
		return nil, 0, needMore
	}
	return data[pos : pos+idx], idx, nil
}

// Encode writes a complete frame to w: command, headers, blank line, body,
// NUL terminator. It never emits a heartbeat; heartbeats are written
// directly by the I/O fabric via EncodeHeartbeat.
func Encode(w io.Writer, f *frame.Frame) error {
	var buf bytes.Buffer
	buf.WriteString(string(f.Command))
	buf.WriteByte('\n')
	for _, h := range f.Headers {
		buf.WriteString(header.Escape(h.Name))
		buf.WriteByte(':')
		buf.WriteString(header.Escape(h.Value))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeHeartbeat writes a single keepalive line terminator to w.
func EncodeHeartbeat(w io.Writer) error {
	_, err := w.Write([]byte{'\n'})
	return err
}
