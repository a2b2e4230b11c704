package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/cryptox"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errEmptySecret = errors.New("empty secret")

// PrintDigest reads one secret from in and writes its argon2id digest to
// w, in the form accepted by passwordDigest and passwordAccessDigest.
// A terminal is read without echo; otherwise the first line is used with
// only its line terminator stripped.
func PrintDigest(in io.Reader, w io.Writer) error {
	secret, err := readSecret(in, w)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	if len(secret) == 0 {
		return errEmptySecret
	}

	_, err = fmt.Fprintln(w, cryptox.NewDigest(secret).String())
	return err
}

func readSecret(in io.Reader, w io.Writer) ([]byte, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, "Secret: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		return pw, err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
