package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/chzyer/readline"
)

type ParserData struct {
	parser *kong.Kong
	cli    *CLI
}

type OutputWriter struct {
	output  *os.File
	isReady bool
	err     error
}

/*
GetOutputWriter returns an output writer if one was requested or nil. If one was
requested and the output cannot be opened an error is returned.
*/
func (g *Globals) GetOutputWriter() *OutputWriter {
	if g.Output == "" {
		return &OutputWriter{
			isReady: false,
		}
	}

	flags := os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	if g.AppendOutput {
		flags = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	}
	file, err := os.OpenFile(g.Output, flags, 0644)
	if err != nil {
		fmt.Println(err.Error())
		return &OutputWriter{
			isReady: false,
			err:     err,
		}
	}
	return &OutputWriter{
		output:  file,
		isReady: true,
	}
}

func (o *OutputWriter) WriteString(msg string, andClose bool) {
	if msg != "" && o.isReady {
		_, _ = o.output.WriteString(msg)
		_ = o.output.Sync()
	}
	if andClose {
		o.Close()
	}
}

func (o *OutputWriter) Close() {
	if o.isReady {
		o.isReady = false
		_ = o.output.Close()
	}
}

func initParser(cli *CLI) (*ParserData, error) {
	if cli == nil {
		cli = &CLI{}
	}

	parser, err := kong.New(cli,
		kong.Name("eventgateTool"),
		kong.Description("eventgate administration tool"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:      true,
			Summary:      true,
			Tree:         true,
			NoAppSummary: false,
		}),
		kong.UsageOnError(),
		kong.Writers(os.Stdout, os.Stdout),
		kong.Bind(&cli.Globals),
		kong.Exit(func(int) {}),
	)
	td := ParserData{
		parser: parser,
		cli:    cli,
	}
	return &td, err
}

func main() {

	console, err := readline.NewEx(&readline.Config{
		Prompt:                 "eventgate> ",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		panic(err)
	}
	defer func(console *readline.Instance) {
		_ = console.Close()
	}(console)

	td, err := initParser(&CLI{})
	if err != nil {
		fmt.Println(err.Error())
	}

	oneCommand := false
	var initialArgs []string
	if len(os.Args) > 1 {
		initialArgs = os.Args[1:]
		oneCommand = true
	}

	for true {
		var args []string
		if len(initialArgs) > 0 {
			args = initialArgs
			_ = console.SaveHistory(strings.Join(initialArgs, " "))
			initialArgs = []string{}
		} else {
			line, err := console.Readline()
			if err != nil {
				panic(err)
			}
			_ = console.SaveHistory(line)
			args = strings.Split(line, " ")
		}

		var ctx *kong.Context
		ctx, err = td.parser.Parse(args)
		if err != nil {
			// Put out the help text response
			td.parser.Errorf("%s", err.Error())
			if err, ok := err.(*kong.ParseError); ok {
				log.Println(err.Error())
				_ = err.Context.PrintUsage(false)
			}
			if oneCommand {
				os.Exit(1)
			}
			continue
		}

		err = ctx.Run(&td.cli.Globals)

		if err != nil {
			td.parser.Errorf("%s", err)
			if oneCommand {
				// Non-zero exit tells an external scheduler the run failed
				os.Exit(1)
			}
			continue
		}
		if oneCommand {
			return
		}
	}

}
