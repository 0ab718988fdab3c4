package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator for target settings missing from the configuration.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Complete prompts for the router host, the username and the address-list name when
// they are not set. The list name defaults to RU on empty input.
func (p *Prompter) Complete(c *Config) error {
	var err error
	if c.Router.Host == "" {
		if c.Router.Host, err = p.ask("MikroTik host: ", ""); err != nil {
			return err
		}
	}
	if c.Router.Username == "" {
		if c.Router.Username, err = p.ask("Username: ", ""); err != nil {
			return err
		}
	}
	if c.AddressList.Name == "" {
		prompt := fmt.Sprintf("Address-list name [%s]: ", DefaultListName)
		if c.AddressList.Name, err = p.ask(prompt, DefaultListName); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prompter) ask(prompt, def string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		if def == "" && err == io.EOF {
			return "", fmt.Errorf("failed to read input: %w", io.ErrUnexpectedEOF)
		}
		return def, nil
	}
	return answer, nil
}
