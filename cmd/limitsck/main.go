// Command limitsck validates a resource-limits profile.
//
// Usage:
//
//	limitsck [options] <profile.toml>
//
// Examples:
//
//	limitsck limits.toml           # Validate and print resolved limits
//	limitsck -defaults             # Print the built-in defaults as TOML
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pterm/pterm"

	"github.com/gogpu/shaderfront"
	"github.com/gogpu/shaderfront/lower"
)

var defaults = flag.Bool("defaults", false, "print the default limits as TOML")

func main() {
	flag.Usage = usage
	flag.Parse()

	if *defaults {
		printTOML(lower.DefaultLimits())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no profile specified")
		usage()
		os.Exit(1)
	}

	limits, err := shaderfront.LoadLimits(args[0])
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	if limits.MaxLocation < 0 || limits.MaxBinding < 0 || limits.MaxSet < 0 {
		pterm.Error.Printfln("%s: limits must be non-negative", args[0])
		os.Exit(1)
	}

	pterm.Success.Printfln("%s: valid", args[0])
	printTOML(limits)
}

func printTOML(limits lower.Limits) {
	data, err := toml.Marshal(limits)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: limitsck [options] <profile.toml>")
	flag.PrintDefaults()
}
