// Command statelockctl is a small CLI wrapper demonstrating a
// statelock.StateLock from outside a Go program: list the registered
// state names for a family, or acquire one and hold it until stdin
// closes.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	statelock "github.com/joeycumines/go-statelock"
)

var cli struct {
	Family string `help:"State family to operate on." default:"StateIter"`

	List struct {
	} `cmd:"" help:"List the registered state names for the family."`

	Acquire struct {
		Name string `arg:"" help:"State name to acquire."`
	} `cmd:"" help:"Acquire a state and hold it until stdin closes."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("statelockctl"),
		kong.Description("Inspect and exercise a statelock.StateLock from the command line."),
		kong.UsageOnError(),
	)

	lock := statelock.New(cli.Family)

	switch ctx.Command() {
	case "list":
		runList(lock)
	case "acquire <name>":
		runAcquire(lock, cli.Acquire.Name)
	default:
		ctx.FatalIfErrorf(fmt.Errorf("statelockctl: unhandled command %q", ctx.Command()))
	}
}

func runList(lock *statelock.StateLock) {
	for _, name := range lock.Names() {
		fmt.Println(name)
	}
}

func runAcquire(lock *statelock.StateLock, name string) {
	h, err := lock.Acquire(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "statelockctl: acquire:", err)
		os.Exit(1)
	}
	defer h.Release()

	fmt.Printf("holding %s (family %s); close stdin to release\n", h.Name(), h.Family())
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
	}
}
