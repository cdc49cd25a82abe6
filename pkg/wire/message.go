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

// Package wire implements the DataMapper binary protocol: length-prefixed
// frames carrying fixed-layout requests and replies.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/carverauto/datamapper/pkg/models"
)

const (
	// Magic is "DMAP" and starts every request and reply body.
	Magic uint32 = 0x444D4150
	// ProtocolVersion is the only message version this package speaks.
	ProtocolVersion uint16 = 1

	MaxRelayHosts   = 32
	MaxRelayHostLen = 255

	requestHeaderSize = 16
	replyHeaderSize   = 20
)

// Status is the outcome carried in a reply.
type Status uint16

const (
	StatusOK      Status = 0
	StatusFailure Status = 1
)

// Request is one decoded client request.
type Request struct {
	Op         Op
	Records    []models.DataSetInfo
	RelayHosts []string
}

// Reply is the server's answer to a Request.
type Reply struct {
	Op      Op
	OK      bool
	Message string
	Records []models.DataSetInfo
}

// NewQuerySelected builds a filtered query. Empty dataType or dir means no
// filtering on that field.
func NewQuerySelected(dataType, dir string, relayHosts []string) *Request {
	return &Request{
		Op:         OpQuerySelected,
		Records:    []models.DataSetInfo{{DataType: dataType, Dir: dir}},
		RelayHosts: relayHosts,
	}
}

// Filter returns the first record of the request, which carries the filter
// fields for query and delete operations.
func (r *Request) Filter() models.DataSetInfo {
	if len(r.Records) == 0 {
		return models.DataSetInfo{}
	}

	return r.Records[0]
}

// FailureReply builds a failure status reply for op.
func FailureReply(op Op, format string, args ...interface{}) *Reply {
	return &Reply{Op: op, OK: false, Message: fmt.Sprintf(format, args...)}
}

// EncodeRequest serializes req into a message body.
func EncodeRequest(req *Request) ([]byte, error) {
	if len(req.RelayHosts) > MaxRelayHosts {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRelayHosts, len(req.RelayHosts))
	}

	if len(req.Records) > MaxRecords {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, len(req.Records))
	}

	size := requestHeaderSize + len(req.Records)*RecordSize
	for _, host := range req.RelayHosts {
		if len(host) > MaxRelayHostLen {
			return nil, fmt.Errorf("%w: %q", ErrRelayHostTooLong, host)
		}

		size += 2 + len(host)
	}

	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, len(req.Records))
	}

	buf := make([]byte, requestHeaderSize, size)
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	binary.BigEndian.PutUint16(buf[4:6], ProtocolVersion)
	binary.BigEndian.PutUint16(buf[6:8], uint16(req.Op))
	binary.BigEndian.PutUint16(buf[8:10], uint16(len(req.RelayHosts)))
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(req.Records)))

	for _, host := range req.RelayHosts {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(host)))
		buf = append(buf, host...)
	}

	for i := range req.Records {
		buf = AppendRecord(buf, &req.Records[i])
	}

	return buf, nil
}

// DecodeRequest parses a message body. Unknown operation codes are not an
// error here; the handler answers them.
func DecodeRequest(body []byte) (*Request, error) {
	if err := checkPreamble(body, requestHeaderSize); err != nil {
		return nil, err
	}

	req := &Request{Op: Op(binary.BigEndian.Uint16(body[6:8]))}
	nHosts := int(binary.BigEndian.Uint16(body[8:10]))
	nRecords := int(binary.BigEndian.Uint32(body[12:16]))

	if nHosts > MaxRelayHosts {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRelayHosts, nHosts)
	}

	if nRecords > MaxRecords {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, nRecords)
	}

	rest := body[requestHeaderSize:]

	if nHosts > 0 {
		req.RelayHosts = make([]string, 0, nHosts)
	}

	for i := 0; i < nHosts; i++ {
		if len(rest) < 2 {
			return nil, fmt.Errorf("%w: truncated relay host list", ErrMalformed)
		}

		n := int(binary.BigEndian.Uint16(rest[0:2]))
		if len(rest) < 2+n {
			return nil, fmt.Errorf("%w: truncated relay host", ErrMalformed)
		}

		req.RelayHosts = append(req.RelayHosts, string(rest[2:2+n]))
		rest = rest[2+n:]
	}

	if len(rest) != nRecords*RecordSize {
		return nil, fmt.Errorf("%w: inconsistent record count %d for %d payload bytes",
			ErrMalformed, nRecords, len(rest))
	}

	records, err := DecodeRecords(rest)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		req.Records = records
	}

	return req, nil
}

// EncodeReply serializes rep into a message body.
func EncodeReply(rep *Reply) ([]byte, error) {
	size := replyHeaderSize + len(rep.Message) + len(rep.Records)*RecordSize
	if len(rep.Records) > MaxRecords || size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, len(rep.Records))
	}

	status := StatusOK
	if !rep.OK {
		status = StatusFailure
	}

	buf := make([]byte, replyHeaderSize, size)
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	binary.BigEndian.PutUint16(buf[4:6], ProtocolVersion)
	binary.BigEndian.PutUint16(buf[6:8], uint16(rep.Op))
	binary.BigEndian.PutUint16(buf[8:10], uint16(status))
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(rep.Message)))
	binary.BigEndian.PutUint32(buf[16:20], uint32(len(rep.Records)))

	buf = append(buf, rep.Message...)

	for i := range rep.Records {
		buf = AppendRecord(buf, &rep.Records[i])
	}

	return buf, nil
}

// DecodeReply parses a reply body.
func DecodeReply(body []byte) (*Reply, error) {
	if err := checkPreamble(body, replyHeaderSize); err != nil {
		return nil, err
	}

	rep := &Reply{
		Op: Op(binary.BigEndian.Uint16(body[6:8])),
		OK: Status(binary.BigEndian.Uint16(body[8:10])) == StatusOK,
	}

	msgLen := int(binary.BigEndian.Uint32(body[12:16]))
	nRecords := int(binary.BigEndian.Uint32(body[16:20]))

	if nRecords > MaxRecords {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, nRecords)
	}

	rest := body[replyHeaderSize:]
	if msgLen > len(rest) {
		return nil, fmt.Errorf("%w: truncated status message", ErrMalformed)
	}

	rep.Message = string(rest[:msgLen])
	rest = rest[msgLen:]

	if len(rest) != nRecords*RecordSize {
		return nil, fmt.Errorf("%w: inconsistent record count %d for %d payload bytes",
			ErrMalformed, nRecords, len(rest))
	}

	records, err := DecodeRecords(rest)
	if err != nil {
		return nil, err
	}

	if len(records) > 0 {
		rep.Records = records
	}

	return rep, nil
}

func checkPreamble(body []byte, headerSize int) error {
	if len(body) < headerSize {
		return fmt.Errorf("%w: %d byte body shorter than %d byte header", ErrMalformed, len(body), headerSize)
	}

	if m := binary.BigEndian.Uint32(body[0:4]); m != Magic {
		return fmt.Errorf("%w: 0x%08x", ErrBadMagic, m)
	}

	if v := binary.BigEndian.Uint16(body[4:6]); v != ProtocolVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	return nil
}
