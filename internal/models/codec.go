package models

import (
	"database/sql/driver"
	"strconv"
	"strings"
)

// MaxEncodedFieldLength is the storage limit for delimited-string fields.
// The record store truncates anything longer, so the encoders below never
// produce a value that exceeds it.
const MaxEncodedFieldLength = 250

// IDList is a set of user identifiers stored as a comma-joined string
// (e.g. conversation participants, message read-by). The delimited encoding
// is a storage-transport artifact and lives only here, at the adapter
// boundary; the rest of the code works with []int64.
type IDList []int64

// Scan implements sql.Scanner, parsing "1,2,3" into identifiers.
// Malformed entries are dropped rather than failing the whole row.
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	str, ok := value.(string)
	if !ok {
		if bytes, ok := value.([]byte); ok {
			str = string(bytes)
		} else {
			*l = nil
			return nil
		}
	}

	*l = DecodeIDList(str)
	return nil
}

// Value implements driver.Valuer, producing the comma-joined form.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "", nil
	}
	return EncodeIDList(l), nil
}

// Contains reports whether id is in the list.
func (l IDList) Contains(id int64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// EncodeIDList is the single encoder for identifier lists.
func EncodeIDList(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// DecodeIDList is the single decoder for identifier lists. Entries that do
// not parse as integers are skipped, matching how the store tolerates dirty
// legacy rows.
func DecodeIDList(s string) IDList {
	if strings.TrimSpace(s) == "" {
		return IDList{}
	}
	parts := strings.Split(s, ",")
	ids := make(IDList, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// MediaList is an ordered list of media URL references stored as a
// comma-joined string bounded by MaxEncodedFieldLength.
type MediaList []string

// Scan implements sql.Scanner.
func (m *MediaList) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	str, ok := value.(string)
	if !ok {
		if bytes, ok := value.([]byte); ok {
			str = string(bytes)
		} else {
			*m = nil
			return nil
		}
	}

	*m = DecodeMediaList(str)
	return nil
}

// Value implements driver.Valuer.
func (m MediaList) Value() (driver.Value, error) {
	if m == nil {
		return "", nil
	}
	return EncodeMediaList(m), nil
}

// EncodeMediaList is the single encoder for media URL lists. Each URL is
// capped at MaxEncodedFieldLength and URLs are appended only while the
// joined form still fits; the remainder is dropped.
func EncodeMediaList(urls []string) string {
	valid := make([]string, 0, len(urls))
	for _, url := range urls {
		if url == "" {
			continue
		}
		if len(url) > MaxEncodedFieldLength {
			url = url[:MaxEncodedFieldLength]
		}
		joined := url
		if len(valid) > 0 {
			joined = strings.Join(valid, ",") + "," + url
		}
		if len(joined) > MaxEncodedFieldLength {
			break
		}
		valid = append(valid, url)
	}
	return strings.Join(valid, ",")
}

// DecodeMediaList is the single decoder for media URL lists.
func DecodeMediaList(s string) MediaList {
	if strings.TrimSpace(s) == "" {
		return MediaList{}
	}
	parts := strings.Split(s, ",")
	urls := make(MediaList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}
