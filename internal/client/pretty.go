package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PrettyJSON re-indents raw with two spaces per level. Object keys keep their
// order, and strings are written with non-ASCII characters and <, >, & as
// plain text rather than \u escapes.
func PrettyJSON(raw []byte) (string, error) {
	p := &prettyPrinter{dec: json.NewDecoder(bytes.NewReader(raw))}
	p.dec.UseNumber()

	if err := p.value(0); err != nil {
		return "", err
	}
	if _, err := p.dec.Token(); err != io.EOF {
		return "", fmt.Errorf("pretty json: trailing data after top-level value")
	}
	return p.buf.String(), nil
}

type prettyPrinter struct {
	dec *json.Decoder
	buf bytes.Buffer
}

func (p *prettyPrinter) value(depth int) error {
	tok, err := p.dec.Token()
	if err != nil {
		return fmt.Errorf("pretty json: %w", err)
	}

	switch v := tok.(type) {
	case json.Delim:
		return p.container(v, depth)
	case string:
		return p.writeString(v)
	case json.Number:
		p.buf.WriteString(v.String())
	case bool:
		fmt.Fprint(&p.buf, v)
	case nil:
		p.buf.WriteString("null")
	default:
		return fmt.Errorf("pretty json: unexpected token %v", tok)
	}
	return nil
}

func (p *prettyPrinter) container(open json.Delim, depth int) error {
	closing := byte(']')
	if open == '{' {
		closing = '}'
	}
	p.buf.WriteByte(byte(open))

	n := 0
	for p.dec.More() {
		if n > 0 {
			p.buf.WriteByte(',')
		}
		p.newline(depth + 1)

		if open == '{' {
			key, err := p.dec.Token()
			if err != nil {
				return fmt.Errorf("pretty json: %w", err)
			}
			if err := p.writeString(key.(string)); err != nil {
				return err
			}
			p.buf.WriteString(": ")
		}
		if err := p.value(depth + 1); err != nil {
			return err
		}
		n++
	}

	if _, err := p.dec.Token(); err != nil {
		return fmt.Errorf("pretty json: %w", err)
	}
	if n > 0 {
		p.newline(depth)
	}
	p.buf.WriteByte(closing)
	return nil
}

func (p *prettyPrinter) newline(depth int) {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat("  ", depth))
}

func (p *prettyPrinter) writeString(s string) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	p.buf.Write(bytes.TrimSuffix(b.Bytes(), []byte("\n")))
	return nil
}
