package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// errMalformed wraps request decode failures the stream can recover from.
var errMalformed = errors.New("malformed request")

// Codec reads requests and writes responses on a byte stream.
type Codec interface {
	// Read returns the next request, io.EOF at end of input, or an error
	// wrapping errMalformed when only this request is bad.
	Read() (Request, error)
	Write(v any) error
	Name() string
}

// NewCodec returns the codec registered under name ("msgpack" or "json").
func NewCodec(name string, r io.Reader, w io.Writer) (Codec, error) {
	switch name {
	case "", "msgpack":
		return newMsgpackCodec(r, w), nil
	case "json":
		return newJSONCodec(r, w), nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

type msgpackCodec struct {
	dec *msgpack.Decoder
	w   io.Writer
}

func newMsgpackCodec(r io.Reader, w io.Writer) *msgpackCodec {
	return &msgpackCodec{dec: msgpack.NewDecoder(bufio.NewReader(r)), w: w}
}

func (c *msgpackCodec) Name() string { return "msgpack" }

func (c *msgpackCodec) Read() (Request, error) {
	raw, err := c.dec.DecodeRaw()
	if err != nil {
		return Request{}, err
	}
	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return req, nil
}

func (c *msgpackCodec) Write(v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.w.Write(data)
	return err
}

// jsonCodec speaks one JSON document per line.
type jsonCodec struct {
	reader *bufio.Reader
	w      io.Writer
}

func newJSONCodec(r io.Reader, w io.Writer) *jsonCodec {
	return &jsonCodec{reader: bufio.NewReader(r), w: w}
}

func (c *jsonCodec) Name() string { return "json" }

func (c *jsonCodec) Read() (Request, error) {
	for {
		line, err := c.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				return Request{}, err
			}
			continue
		}
		var req Request
		if uerr := json.Unmarshal(line, &req); uerr != nil {
			return Request{}, fmt.Errorf("%w: %v", errMalformed, uerr)
		}
		return req, nil
	}
}

func (c *jsonCodec) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = c.w.Write(data)
	return err
}
