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
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/datamapper/pkg/models"
)

func sampleRecord() models.DataSetInfo {
	return models.DataSetInfo{
		Hostname:         "ingest-01",
		IPAddr:           "10.0.0.12",
		DataType:         "radar",
		Dir:              "/data/radar/kftg",
		Status:           "writing volume 12",
		StartTime:        1700000000,
		EndTime:          1700003600,
		LatestTime:       1700003500,
		LastRegTime:      1700003601,
		ForecastLeadTime: 3600,
		NFiles:           42,
		TotalBytes:       1 << 33,
		CheckTime:        1700003700,
	}
}

func TestRecordSize(t *testing.T) {
	assert.Equal(t, 968, RecordSize)
}

func TestEncodeDecodeRecord(t *testing.T) {
	in := sampleRecord()

	buf := make([]byte, RecordSize)
	require.NoError(t, EncodeRecord(buf, &in))

	out, err := DecodeRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeRecordIsBigEndian(t *testing.T) {
	in := models.DataSetInfo{StartTime: 0x0102030405060708}

	buf := make([]byte, RecordSize)
	require.NoError(t, EncodeRecord(buf, &in))

	assert.Equal(t, RecordVersion, binary.BigEndian.Uint32(buf[0:4]))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf[offStartTime:offStartTime+8])
}

func TestEncodeRecordTruncatesText(t *testing.T) {
	in := models.DataSetInfo{
		Hostname: strings.Repeat("h", HostnameLen+10),
		DataType: strings.Repeat("d", DataTypeLen),
	}

	buf := make([]byte, RecordSize)
	require.NoError(t, EncodeRecord(buf, &in))

	out, err := DecodeRecord(buf)
	require.NoError(t, err)
	assert.Len(t, out.Hostname, HostnameLen-1)
	assert.Len(t, out.DataType, DataTypeLen-1)
}

func TestEncodeRecordTruncatesOnRuneBoundary(t *testing.T) {
	in := models.DataSetInfo{
		Hostname: strings.Repeat("h", HostnameLen-2) + "é",
		Status:   strings.Repeat("界", StatusLen),
	}

	buf := make([]byte, RecordSize)
	require.NoError(t, EncodeRecord(buf, &in))

	out, err := DecodeRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("h", HostnameLen-2), out.Hostname)
	assert.True(t, utf8.ValidString(out.Status))
	assert.Equal(t, strings.Repeat("界", (StatusLen-1)/3), out.Status)
}

func TestEncodeRecordClearsReusedBuffer(t *testing.T) {
	first := sampleRecord()
	second := models.DataSetInfo{Hostname: "h"}

	buf := make([]byte, RecordSize)
	require.NoError(t, EncodeRecord(buf, &first))
	require.NoError(t, EncodeRecord(buf, &second))

	out, err := DecodeRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, second, out)
}

func TestDecodeRecordErrors(t *testing.T) {
	t.Run("wrong size", func(t *testing.T) {
		_, err := DecodeRecord(make([]byte, RecordSize-1))
		require.ErrorIs(t, err, ErrRecordSize)
	})

	t.Run("wrong version", func(t *testing.T) {
		buf := make([]byte, RecordSize)
		binary.BigEndian.PutUint32(buf[0:4], 99)

		_, err := DecodeRecord(buf)
		require.ErrorIs(t, err, ErrRecordVersion)
	})

	t.Run("partial batch", func(t *testing.T) {
		_, err := DecodeRecords(make([]byte, RecordSize+3))
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestAppendAndDecodeRecords(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.Hostname = "ingest-02"

	var buf []byte
	buf = AppendRecord(buf, &a)
	buf = AppendRecord(buf, &b)
	require.Len(t, buf, 2*RecordSize)

	records, err := DecodeRecords(buf)
	require.NoError(t, err)
	assert.Equal(t, []models.DataSetInfo{a, b}, records)
}
