package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// interruptible derives the context a transfer command runs under, so that
// Ctrl-C cancels the transfer instead of the whole program. Tests swap it.
var interruptible = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	CreateProduct(ctx context.Context, title string) error
	Edit(ctx context.Context, productID string) error
	Reload(ctx context.Context) error
	AddFiles(ctx context.Context, paths []string) error
	RemoveFile(ctx context.Context, ref string) error
	SetCategory(ctx context.Context, ref, category string) error
	Move(ctx context.Context, from, to string) error
	Thumb(ctx context.Context, ref string) error
	Files(ctx context.Context) error
	Validate(ctx context.Context) error
	Save(ctx context.Context) error
	Retry(ctx context.Context) error
	Publish(ctx context.Context, title string, paths []string) error

	Download(ctx context.Context, orderID, title string) error
}

const (
	helpGuest    = "Available commands: register, login, exit"
	helpCustomer = "Available commands: download <orderID> [title], whoami, logout, exit"
	helpAdmin    = `Available commands:
  product <title>              create an empty product and open it
  edit <productID>             open an existing product
  reload                       reload the open product's files
  add <path>...                stage local files
  rm <n|id|name>               remove a file
  category <n|id|name> <cat>   change the category of a staged file
  move <from> <to>             reorder files
  thumb <n|id|name>            select the thumbnail
  files                        list files
  validate                     check the product can be saved
  save                         apply deletions and upload staged files
  retry                        upload the files that failed last time
  publish <title> <path>...    create a product from files in one step
  download <orderID> [title]   download an order as a zip archive
  whoami, logout, exit`
)

// runREPL starts a simple read–eval–print loop for the MeshMart CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands and missing
// arguments are reported back to the user. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// Commands that need a session are refused until the user logs in; product
// editing commands are offered to administrators only. The gateway checks
// roles again, so this gating only keeps the prompt honest.
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mm%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			switch {
			case a.isAdmin():
				printlnFn(helpAdmin)
			case a.isLoggedIn():
				printlnFn(helpCustomer)
			default:
				printlnFn(helpGuest)
			}
			continue
		case "register":
			_ = a.Register(ctx)
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		}

		if !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "download":
			if len(args) == 0 {
				printlnFn("Usage: download <orderID> [title]")
				continue
			}
			tctx, cancel := interruptible(ctx)
			_ = a.Download(tctx, args[0], strings.Join(args[1:], " "))
			cancel()
		default:
			if !a.isAdmin() {
				printlnFn("Unknown command:", cmd)
				continue
			}
			runAdmin(ctx, a, cmd, args)
		}
	}
}

func runAdmin(ctx context.Context, a execIface, cmd string, args []string) {
	usage := func(min int, text string) bool {
		if len(args) < min {
			printlnFn("Usage:", text)
			return false
		}
		return true
	}

	switch cmd {
	case "product":
		if usage(1, "product <title>") {
			_ = a.CreateProduct(ctx, strings.Join(args, " "))
		}
	case "edit":
		if usage(1, "edit <productID>") {
			_ = a.Edit(ctx, args[0])
		}
	case "reload":
		_ = a.Reload(ctx)
	case "add":
		if usage(1, "add <path>...") {
			_ = a.AddFiles(ctx, args)
		}
	case "rm":
		if usage(1, "rm <n|id|name>") {
			_ = a.RemoveFile(ctx, args[0])
		}
	case "category":
		if usage(2, "category <n|id|name> <category>") {
			_ = a.SetCategory(ctx, args[0], args[1])
		}
	case "move":
		if usage(2, "move <from> <to>") {
			_ = a.Move(ctx, args[0], args[1])
		}
	case "thumb":
		if usage(1, "thumb <n|id|name>") {
			_ = a.Thumb(ctx, args[0])
		}
	case "files", "ls":
		_ = a.Files(ctx)
	case "validate":
		_ = a.Validate(ctx)
	case "save":
		tctx, cancel := interruptible(ctx)
		_ = a.Save(tctx)
		cancel()
	case "retry":
		tctx, cancel := interruptible(ctx)
		_ = a.Retry(tctx)
		cancel()
	case "publish":
		if usage(2, "publish <title> <path>...") {
			tctx, cancel := interruptible(ctx)
			_ = a.Publish(tctx, args[0], args[1:])
			cancel()
		}
	default:
		printlnFn("Unknown command:", cmd)
	}
}
