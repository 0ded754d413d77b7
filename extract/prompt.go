package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// StdinPrompter implements Prompter by blocking on an input stream, normally
// os.Stdin. Any answer other than Y or y declines.
type StdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewStdinPrompter(in io.Reader, out io.Writer) *StdinPrompter {
	return &StdinPrompter{in: bufio.NewReader(in), out: out}
}

func (p *StdinPrompter) ConfirmOverwrite(name string) (bool, error) {
	fmt.Fprintf(p.out, "The file \"%s\" already exists! Overwrite it (Y/n)? ", name)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}

	answer := strings.TrimSpace(line)
	return answer == "Y" || answer == "y", nil
}
