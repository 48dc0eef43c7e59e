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
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Categories(ctx context.Context) error
	Products(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Gallery(ctx context.Context) error

	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Reorder(ctx context.Context, args []string) error

	Cache(ctx context.Context, args []string) error
}

const (
	helpPublic = "Available commands: categories, (p)roducts [category=<id>] [text], show <id>, gallery, cache [status|clear], login, exit"
	helpAdmin  = "Available commands: categories, (p)roducts [category=<id>] [text], show <id>, gallery, " +
		"add <resource>, edit <resource> <id>, delete <resource> <id>, reorder <resource> <id>..., " +
		"cache [status|clear], logout, exit\nResources: category, product, gallery"
)

var errLoginRequired = errors.New("login required")

// runREPL reads commands line by line from reader and dispatches them to a.
// Admin commands are refused until a.isLoggedIn reports true. Command errors
// are printed and the loop goes on; it exits on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("trophyshop%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpAdmin)
			} else {
				printlnFn(helpPublic)
			}

		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)

		case "categories":
			cmdErr = a.Categories(ctx)
		case "p", "products":
			cmdErr = a.Products(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "gallery":
			cmdErr = a.Gallery(ctx)
		case "cache":
			cmdErr = a.Cache(ctx, args)

		case "add", "edit", "delete", "reorder":
			if !a.isLoggedIn() {
				cmdErr = errLoginRequired
				break
			}
			switch cmd {
			case "add":
				cmdErr = a.Add(ctx, args)
			case "edit":
				cmdErr = a.Edit(ctx, args)
			case "delete":
				cmdErr = a.Delete(ctx, args)
			case "reorder":
				cmdErr = a.Reorder(ctx, args)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
