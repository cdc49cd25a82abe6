/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// MaxFrameSize bounds a single message body.
	MaxFrameSize = 64 << 20
	// MaxRecords is the largest record count that fits in one frame.
	MaxRecords = (MaxFrameSize - replyHeaderSize) / RecordSize

	frameHeaderSize = 4
)

// WriteFrame writes body to w as [length:4 BE][body].
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}

	buf := make([]byte, frameHeaderSize+len(body))
	binary.BigEndian.PutUint32(buf[0:frameHeaderSize], uint32(len(body)))
	copy(buf[frameHeaderSize:], body)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// ReadFrame reads one length-prefixed body from r. io.EOF is returned as-is
// when the stream ends cleanly between frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}

	return body, nil
}

// WriteRequest encodes and frames req.
func WriteRequest(w io.Writer, req *Request) error {
	body, err := EncodeRequest(req)
	if err != nil {
		return err
	}

	return WriteFrame(w, body)
}

// ReadRequest reads and decodes one request frame.
func ReadRequest(r io.Reader) (*Request, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}

	return DecodeRequest(body)
}

// WriteReply encodes and frames rep.
func WriteReply(w io.Writer, rep *Reply) error {
	body, err := EncodeReply(rep)
	if err != nil {
		return err
	}

	return WriteFrame(w, body)
}

// ReadReply reads and decodes one reply frame.
func ReadReply(r io.Reader) (*Reply, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}

	return DecodeReply(body)
}
