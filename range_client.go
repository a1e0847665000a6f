// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatgeobuf

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fgbgo/flatgeobuf/packedrtree"
)

// RangeClient issues HTTP range requests against a single URL and
// buffers the response, so a caller asking for a handful of bytes
// (an index node, a feature length prefix) doesn't cost a round trip
// per call once the requested range falls within what was already
// fetched. It implements packedrtree.NodeFetcher.
//
// A RangeClient is not safe for concurrent use; HttpReader serializes
// all requests through a single instance per the package's
// single-task cooperative I/O model.
type RangeClient struct {
	HTTPClient *http.Client
	URL        string
	// MinRequestSize is the smallest number of bytes requested on any
	// single round trip; small requests are padded up to this size so
	// that nearby subsequent reads are served from the buffer.
	MinRequestSize int64

	bufStart int64
	buf      []byte
}

// FetchNodes implements packedrtree.NodeFetcher.
func (c *RangeClient) FetchNodes(ctx context.Context, byteStart, byteEnd int64) ([]byte, error) {
	return c.fetch(ctx, byteStart, byteEnd)
}

// fetch returns the bytes in [start, end). If end is negative the
// range is unbounded (everything from start to the end of the
// resource), matching the "last feature" terminal case.
func (c *RangeClient) fetch(ctx context.Context, start, end int64) ([]byte, error) {
	if start >= c.bufStart && (end >= 0 && end <= c.bufStart+int64(len(c.buf))) {
		return c.buf[start-c.bufStart : end-c.bufStart], nil
	}

	reqEnd := end
	if reqEnd >= 0 && reqEnd-start < c.MinRequestSize {
		reqEnd = start + c.MinRequestSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, &Http{Err: err}
	}
	if reqEnd >= 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, reqEnd-1))
	} else {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", start))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &Http{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return nil, &Http{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Http{Err: err}
	}

	c.bufStart = start
	c.buf = body

	// The server may return fewer bytes than requested, e.g. because
	// the caller speculatively over-fetched (OpenHttpReader's initial
	// read) or because the resource ends before the requested range
	// does. Either way, handing back everything we got and letting the
	// caller judge sufficiency is correct; only a genuine transport
	// error should fail this call.
	have := int64(len(body))
	if end < 0 || end-start > have {
		end = start + have
	}
	return body[:end-start], nil
}

var _ packedrtree.NodeFetcher = (*RangeClient)(nil)
