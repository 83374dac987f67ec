package domain

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// OfflineBody is the body of the response synthesized when neither network nor cache can answer.
const OfflineBody = "Offline"

// Entry is an immutable snapshot of a response stored in a partition.
type Entry struct {
	Key       string      `json:"key"`
	Partition string      `json:"partition,omitzero"`
	Status    int         `json:"status"`
	Header    http.Header `json:"header,omitzero"`
	Body      []byte      `json:"body,omitzero"`
	Digest    string      `json:"digest,omitzero"`
	StoredAt  time.Time   `json:"stored_at,omitzero"`
}

// NewEntry snapshots a response whose body has already been read into body.
func NewEntry(key, partition string, resp *http.Response, body []byte, storedAt time.Time) *Entry {
	return &Entry{
		Key:       key,
		Partition: partition,
		Status:    resp.StatusCode,
		Header:    resp.Header.Clone(),
		Body:      bytes.Clone(body),
		Digest:    BodyDigest(body),
		StoredAt:  storedAt,
	}
}

// Response materializes the entry as a response with its own body reader.
// Every call returns an independent response.
func (e *Entry) Response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return newResponse(req, e.Status, header, e.Body)
}

// BodyDigest returns the hex xxhash of a response body.
func BodyDigest(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}

// RequestKey returns the cache key of a request: its absolute URL without fragment.
func RequestKey(req *http.Request) string {
	u := *req.URL
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Cacheable reports whether a network response may be written to the runtime partition.
// Network-error responses carry status 0 and are therefore excluded.
func Cacheable(resp *http.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusOK
}

// OfflineResponse returns the synthesized 503 response served when the network
// is unreachable and nothing is cached.
func OfflineResponse(req *http.Request) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	return newResponse(req, http.StatusServiceUnavailable, header, []byte(OfflineBody))
}

func newResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
