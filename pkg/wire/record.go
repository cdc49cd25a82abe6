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
	"fmt"
	"unicode/utf8"

	"github.com/carverauto/datamapper/pkg/models"
)

// Record layout, version 1. All integers are big-endian.
//
//	0   u32 layout version      4   u32 reserved
//	8   i64 start_time          16  i64 end_time
//	24  i64 latest_time         32  i64 last_reg_time
//	40  i64 forecast_lead_time  48  i64 nfiles
//	56  i64 total_bytes         64  i64 check_time
//	72  hostname[64]  136 ipaddr[32]  168 datatype[32]  200 dir[512]  712 status[256]
const (
	RecordVersion uint32 = 1

	HostnameLen = 64
	IPAddrLen   = 32
	DataTypeLen = 32
	DirLen      = 512
	StatusLen   = 256

	offStartTime        = 8
	offEndTime          = 16
	offLatestTime       = 24
	offLastRegTime      = 32
	offForecastLeadTime = 40
	offNFiles           = 48
	offTotalBytes       = 56
	offCheckTime        = 64
	offHostname         = 72
	offIPAddr           = offHostname + HostnameLen
	offDataType         = offIPAddr + IPAddrLen
	offDir              = offDataType + DataTypeLen
	offStatus           = offDir + DirLen

	// RecordSize is the encoded size of one record.
	RecordSize = offStatus + StatusLen
)

// EncodeRecord writes info into buf, which must be exactly RecordSize bytes.
// Text longer than its field is truncated so that a NUL terminator always fits.
func EncodeRecord(buf []byte, info *models.DataSetInfo) error {
	if len(buf) != RecordSize {
		return fmt.Errorf("%w: %d", ErrRecordSize, len(buf))
	}

	clear(buf)

	binary.BigEndian.PutUint32(buf[0:4], RecordVersion)
	putInt64(buf, offStartTime, info.StartTime)
	putInt64(buf, offEndTime, info.EndTime)
	putInt64(buf, offLatestTime, info.LatestTime)
	putInt64(buf, offLastRegTime, info.LastRegTime)
	putInt64(buf, offForecastLeadTime, info.ForecastLeadTime)
	putInt64(buf, offNFiles, info.NFiles)
	putInt64(buf, offTotalBytes, info.TotalBytes)
	putInt64(buf, offCheckTime, info.CheckTime)

	putText(buf[offHostname:offHostname+HostnameLen], info.Hostname)
	putText(buf[offIPAddr:offIPAddr+IPAddrLen], info.IPAddr)
	putText(buf[offDataType:offDataType+DataTypeLen], info.DataType)
	putText(buf[offDir:offDir+DirLen], info.Dir)
	putText(buf[offStatus:offStatus+StatusLen], info.Status)

	return nil
}

// DecodeRecord is the inverse of EncodeRecord.
func DecodeRecord(buf []byte) (models.DataSetInfo, error) {
	if len(buf) != RecordSize {
		return models.DataSetInfo{}, fmt.Errorf("%w: %d", ErrRecordSize, len(buf))
	}

	if v := binary.BigEndian.Uint32(buf[0:4]); v != RecordVersion {
		return models.DataSetInfo{}, fmt.Errorf("%w: %d", ErrRecordVersion, v)
	}

	return models.DataSetInfo{
		StartTime:        getInt64(buf, offStartTime),
		EndTime:          getInt64(buf, offEndTime),
		LatestTime:       getInt64(buf, offLatestTime),
		LastRegTime:      getInt64(buf, offLastRegTime),
		ForecastLeadTime: getInt64(buf, offForecastLeadTime),
		NFiles:           getInt64(buf, offNFiles),
		TotalBytes:       getInt64(buf, offTotalBytes),
		CheckTime:        getInt64(buf, offCheckTime),
		Hostname:         getText(buf[offHostname : offHostname+HostnameLen]),
		IPAddr:           getText(buf[offIPAddr : offIPAddr+IPAddrLen]),
		DataType:         getText(buf[offDataType : offDataType+DataTypeLen]),
		Dir:              getText(buf[offDir : offDir+DirLen]),
		Status:           getText(buf[offStatus : offStatus+StatusLen]),
	}, nil
}

// AppendRecord appends the encoded form of info to dst.
func AppendRecord(dst []byte, info *models.DataSetInfo) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, RecordSize)...)

	// the slice is exactly RecordSize so this cannot fail
	_ = EncodeRecord(dst[start:], info)

	return dst
}

// DecodeRecords splits buf into records. len(buf) must be a multiple of RecordSize.
func DecodeRecords(buf []byte) ([]models.DataSetInfo, error) {
	if len(buf)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformed, len(buf), RecordSize)
	}

	records := make([]models.DataSetInfo, 0, len(buf)/RecordSize)

	for off := 0; off < len(buf); off += RecordSize {
		info, err := DecodeRecord(buf[off : off+RecordSize])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", off/RecordSize, err)
		}

		records = append(records, info)
	}

	return records, nil
}

func putInt64(buf []byte, off int, v int64) {
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(v))
}

func getInt64(buf []byte, off int) int64 {
	return int64(binary.BigEndian.Uint64(buf[off : off+8]))
}

func putText(field []byte, s string) {
	n := len(field) - 1
	if len(s) <= n {
		n = len(s)
	} else {
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
	}

	copy(field, s[:n])
}

func getText(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}

	return string(field)
}
