// Command solvecurve calibrates discount curves to swap baskets and prices swaps off them.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meenmo/swapcurve/cmd/solvecurve/internal/price"
	"github.com/meenmo/swapcurve/cmd/solvecurve/internal/solve"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "solve":
		return solve.Run(args[1:], stdin, stdout, stderr)
	case "price":
		return price.Run(args[1:], stdin, stdout, stderr)
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: solvecurve <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  solve    Calibrate curve nodes to a swap basket")
	fmt.Fprintln(w, "  price    Price swaps off the given curve nodes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `solvecurve <command> -h` for command-specific help.")
}
