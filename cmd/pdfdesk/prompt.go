// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// credentialPrompter asks for the release credentials.
type credentialPrompter interface {
	Email() (string, error)
	Password() (string, error)
}

// ttyPrompter reads from in. The password is read without echo when in is
// a terminal.
type ttyPrompter struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in *os.File, out io.Writer) *ttyPrompter {
	return &ttyPrompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *ttyPrompter) Email() (string, error) {
	fmt.Fprint(p.out, "Email: ")
	return p.line()
}

func (p *ttyPrompter) Password() (string, error) {
	fmt.Fprint(p.out, "Password: ")
	fd := int(p.in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return p.line()
}

func (p *ttyPrompter) line() (string, error) {
	s, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}
