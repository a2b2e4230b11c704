package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Article(ctx context.Context, args []string) error
	Category(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Unlocked(ctx context.Context) error
	Forget(ctx context.Context, args []string) error
	ForgetAll(ctx context.Context) error
}

const helpText = `Available commands:
  article <slug> [category]  open an article
  category <name>            open a category
  read <slug> [category]     open an article and print it
  unlocked                   list unlocked resources
  forget <key>               lock a resource again
  forget-all                 lock everything again
  exit                       leave the program`

// runREPL reads one command per line from reader and dispatches it to a.
// Errors returned by handlers are printed and the loop goes on. The loop
// exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pg %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "article":
			err = a.Article(ctx, args)

		case "category":
			err = a.Category(ctx, args)

		case "read":
			err = a.Read(ctx, args)

		case "unlocked", "l", "list":
			err = a.Unlocked(ctx)

		case "forget":
			err = a.Forget(ctx, args)

		case "forget-all":
			err = a.ForgetAll(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}
