package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BertoldVdb/minver-tools/macho"
	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

type Context struct {
	config macho.EditConfig
	out    io.Writer
	json   bool
}

var CLI struct {
	LogLevel int  `optional:"" help:"Higher values give more output." env:"MINVER_LOG_LEVEL"`
	Cmd      uint32 `optional:"" type:"hex" help:"Load command to operate on (hex)." default:"24"`

	Policy   string `optional:"" help:"YAML file describing the accepted version range." env:"MINVER_POLICY"`
	Major    int    `optional:"" help:"Required major version." default:"10"`
	MinMinor int    `optional:"" help:"Lowest accepted minor version." default:"6"`
	MaxMinor int    `optional:"" help:"Highest accepted minor version." default:"20"`

	JSON    bool `optional:"" name:"json" help:"Print results as JSON."`
	NoColor bool `optional:"" help:"Disable colored output."`

	MinVer MinVerCmd `cmd:"" name:"minver" help:"Show or set the minimum OS and SDK version."`
	List   ListCmd   `cmd:"" help:"List all load commands."`
	Dump   DumpCmd   `cmd:"" help:"Hexdump the selected load command."`
}

func buildPolicy() (macho.VersionPolicy, error) {
	if CLI.Major < 0 || CLI.Major > 0xffff {
		return macho.VersionPolicy{}, fmt.Errorf("major %d out of range", CLI.Major)
	}
	if CLI.MinMinor < 0 || CLI.MaxMinor > 0xff || CLI.MinMinor > CLI.MaxMinor {
		return macho.VersionPolicy{}, fmt.Errorf("minor range %d-%d is invalid", CLI.MinMinor, CLI.MaxMinor)
	}

	policy := macho.VersionPolicy{
		Major:    uint16(CLI.Major),
		MinMinor: uint8(CLI.MinMinor),
		MaxMinor: uint8(CLI.MaxMinor),
	}
	if CLI.Policy == "" {
		return policy, nil
	}

	f, err := os.Open(CLI.Policy)
	if err != nil {
		return policy, err
	}
	defer f.Close()

	return macho.LoadPolicy(f, policy)
}

func main() {
	k, err := kong.New(&CLI,
		kong.Name("minver"),
		kong.Description("Inspect and patch the minimum OS version of Mach-O images."),
		kong.NamedMapper("hex", intMapper{base: 16}))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, err := k.Parse(os.Args[1:])
	k.FatalIfErrorf(err)

	if CLI.NoColor {
		color.NoColor = true
	}

	policy, err := buildPolicy()
	k.FatalIfErrorf(err)

	c := &Context{
		config: macho.EditConfig{
			Command: macho.LoadCmd(CLI.Cmd),
			Policy:  &policy,

			LogFunc: func(level int, format string, param ...interface{}) {
				if level > CLI.LogLevel {
					return
				}
				str := fmt.Sprintf(format, param...)
				fmt.Fprintf(os.Stderr, "minver(%d): %s\n", level, str)
			},
		},
		out:  os.Stdout,
		json: CLI.JSON,
	}

	err = ctx.Run(c)
	ctx.FatalIfErrorf(err)
}
