// Package fs implements conditional-GET and byte-range file serving: a
// Response built from a filesystem path plus the inbound RequestHeader,
// honoring If-None-Match and Range exactly.
package fs

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fire-lib/fire-http/body"
	"github.com/fire-lib/fire-http/ferr"
	"github.com/fire-lib/fire-http/header"
	"github.com/fire-lib/fire-http/message"
)

// MaxAge is the Cache-Control max-age, in seconds, stamped on every fresh
// file response.
const MaxAge = 3600

const etagAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// etagEntry memoizes one file's ETag against the (modtime, size) pair it was
// minted for, so repeated requests for an unchanged file see the same ETag
// and a changed file gets a fresh one, without hashing file content.
type etagEntry struct {
	version string
	etag    string
}

var (
	etagMu    sync.Mutex
	etagCache = make(map[string]etagEntry)
)

// generateETag produces a 30-character random alphanumeric token.
func generateETag() string {
	raw := make([]byte, 30)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand reading from the OS CSPRNG does not fail in practice;
		// this keeps ServeFile total rather than panicking on that path.
		return fmt.Sprintf("%030d", time.Now().UnixNano())[:30]
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = etagAlphabet[int(b)%len(etagAlphabet)]
	}
	return string(out)
}

func etagFor(path string, modTime time.Time, size int64) string {
	version := fmt.Sprintf("%d:%d", modTime.UnixNano(), size)
	etagMu.Lock()
	defer etagMu.Unlock()
	if e, ok := etagCache[path]; ok && e.version == version {
		return e.etag
	}
	tag := generateETag()
	etagCache[path] = etagEntry{version: version, etag: tag}
	return tag
}

// limitedFile pairs an io.LimitReader view over an *os.File with that file's
// Close, so a ranged response still releases its descriptor when the
// pipeline closes the response body.
type limitedFile struct {
	io.Reader
	f *os.File
}

func (l *limitedFile) Close() error { return l.f.Close() }

// ServeFile builds a Response for a GET against diskPath: an exact
// If-None-Match match yields 304 with no body; a Range header yields 206
// with the requested slice; otherwise a fresh 200 carrying the whole
// file, a Cache-Control header and a memoized ETag.
func ServeFile(reqHeader *header.RequestHeader, diskPath string) (*message.Response, error) {
	f, err := os.Open(diskPath)
	if err != nil {
		return nil, ferr.FromBodyIO(err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ferr.FromBodyIO(err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ferr.NotFound("path is a directory")
	}

	etag := etagFor(diskPath, info.ModTime(), info.Size())
	total := info.Size()

	resp := message.NewResponse()
	resp.Header.Header.Set("ETag", etag)
	resp.Header.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d, public", MaxAge))
	resp.Header.Header.Set("Accept-Ranges", "bytes")
	if mime, ok := header.MIMEByExtension(filepath.Ext(diskPath)); ok {
		resp.ContentType(header.KnownContentType(mime))
	}

	if inm := reqHeader.Header.Get("If-None-Match"); inm != "" && inm == etag {
		f.Close()
		return resp.Status(304).WithBody(body.Empty()), nil
	}

	if rangeHeader := reqHeader.Header.Get("Range"); rangeHeader != "" {
		start, end, rerr := parseRange(rangeHeader, total)
		if rerr != nil {
			f.Close()
			return nil, rerr
		}
		if _, err := f.Seek(start, io.SeekStart); err != nil {
			f.Close()
			return nil, ferr.FromBodyIO(err)
		}
		length := end - start + 1
		resp.Header.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, total))
		limited := &limitedFile{Reader: io.LimitReader(f, length), f: f}
		return resp.Status(206).WithBody(body.FromSyncReader(limited, body.Constraints{})), nil
	}

	return resp.WithBody(body.FromSyncReader(f, body.Constraints{})), nil
}

// parseRange parses a single "bytes=start-end" specifier (end may be
// omitted, meaning "to EOF"), rejecting end >= total or start >= end.
func parseRange(h string, total int64) (start, end int64, err error) {
	const prefix = "bytes="
	if !strings.HasPrefix(h, prefix) {
		return 0, 0, ferr.New(ferr.KindRangeNotSatisfiable, "unsupported range unit")
	}
	spec := strings.TrimPrefix(h, prefix)
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, ferr.New(ferr.KindRangeNotSatisfiable, "malformed range")
	}

	start, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 {
		return 0, 0, ferr.New(ferr.KindRangeNotSatisfiable, "malformed range start")
	}

	if parts[1] == "" {
		end = total - 1
	} else {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, ferr.New(ferr.KindRangeNotSatisfiable, "malformed range end")
		}
	}

	if end >= total || start >= end {
		return 0, 0, ferr.New(ferr.KindRangeNotSatisfiable, "range not satisfiable")
	}
	return start, end, nil
}
