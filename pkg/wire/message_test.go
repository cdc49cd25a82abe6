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
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/datamapper/pkg/models"
)

func TestRequestOverFrame(t *testing.T) {
	req := &Request{
		Op:         OpRegisterLatest,
		Records:    []models.DataSetInfo{sampleRecord()},
		RelayHosts: []string{"relay-a", "relay-b:5434"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRequest(&buf, req))

	got, err := ReadRequest(&buf)
	require.NoError(t, err)
	assert.Equal(t, req, got)

	_, err = ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReplyOverFrame(t *testing.T) {
	tests := []struct {
		name  string
		reply *Reply
	}{
		{
			name:  "status only",
			reply: &Reply{Op: OpDelete, OK: true},
		},
		{
			name:  "failure with message",
			reply: &Reply{Op: Op(99), OK: false, Message: "unrecognized operation op(99)"},
		},
		{
			name: "records",
			reply: &Reply{
				Op:      OpQueryAll,
				OK:      true,
				Records: []models.DataSetInfo{sampleRecord(), {Hostname: "h2", DataType: "unknown"}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteReply(&buf, tc.reply))

			got, err := ReadReply(&buf)
			require.NoError(t, err)
			assert.Equal(t, tc.reply, got)
		})
	}
}

func TestDecodeRequestKeepsUnknownOp(t *testing.T) {
	body, err := EncodeRequest(&Request{Op: Op(42)})
	require.NoError(t, err)

	req, err := DecodeRequest(body)
	require.NoError(t, err)
	assert.Equal(t, Op(42), req.Op)
	assert.False(t, req.Op.Valid())
}

func TestDecodeRequestRejectsInconsistentCount(t *testing.T) {
	body, err := EncodeRequest(&Request{Op: OpRegisterFull, Records: []models.DataSetInfo{sampleRecord()}})
	require.NoError(t, err)

	binary.BigEndian.PutUint32(body[12:16], 2)

	_, err = DecodeRequest(body)
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "inconsistent record count")
}

func TestDecodeRequestPreambleErrors(t *testing.T) {
	valid, err := EncodeRequest(&Request{Op: OpQueryAll})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"short", func(b []byte) []byte { return b[:5] }, ErrMalformed},
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrBadMagic},
		{"version", func(b []byte) []byte { binary.BigEndian.PutUint16(b[4:6], 7); return b }, ErrUnsupportedVersion},
		{"relay count", func(b []byte) []byte { binary.BigEndian.PutUint16(b[8:10], MaxRelayHosts+1); return b }, ErrTooManyRelayHosts},
		{"truncated relay", func(b []byte) []byte { binary.BigEndian.PutUint16(b[8:10], 1); return b }, ErrMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.mutate(append([]byte(nil), valid...))

			_, err := DecodeRequest(body)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEncodeRequestLimits(t *testing.T) {
	_, err := EncodeRequest(&Request{Op: OpQueryAll, RelayHosts: make([]string, MaxRelayHosts+1)})
	require.ErrorIs(t, err, ErrTooManyRelayHosts)

	_, err = EncodeRequest(&Request{Op: OpQueryAll, RelayHosts: []string{strings.Repeat("x", MaxRelayHostLen+1)}})
	require.ErrorIs(t, err, ErrRelayHostTooLong)
}

func TestEncodeReplyCountsStatusMessage(t *testing.T) {
	rep := &Reply{
		Op:      OpQueryAll,
		OK:      true,
		Message: strings.Repeat("x", RecordSize),
		Records: make([]models.DataSetInfo, MaxRecords),
	}

	_, err := EncodeReply(rep)
	require.ErrorIs(t, err, ErrTooManyRecords)

	rep.Records = make([]models.DataSetInfo, MaxRecords+1)
	rep.Message = ""

	_, err = EncodeReply(rep)
	require.ErrorIs(t, err, ErrTooManyRecords)
}

func TestReadFrameRejectsOversize(t *testing.T) {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, MaxFrameSize+1)

	_, err := ReadFrame(bytes.NewReader(header))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestNewQuerySelectedFilter(t *testing.T) {
	req := NewQuerySelected("radar", "", []string{"peer"})

	assert.Equal(t, OpQuerySelected, req.Op)
	assert.True(t, req.Op.IsQuery())

	filter := req.Filter()
	assert.Equal(t, "radar", filter.DataType)
	assert.Empty(t, filter.Dir)

	assert.Equal(t, models.DataSetInfo{}, (&Request{Op: OpQueryAll}).Filter())
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "register_latest", OpRegisterLatest.String())
	assert.Equal(t, "op(77)", Op(77).String())
}
