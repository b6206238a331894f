package main

import (
	"fmt"

	"github.com/BertoldVdb/minver-tools/macho"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
)

type jsonReport struct {
	Offset  int    `json:"offset"`
	Command string `json:"command"`
	Code    uint32 `json:"code"`
	Size    uint32 `json:"size"`
	Version string `json:"version"`
	SDK     string `json:"sdk"`
}

type jsonResult struct {
	Before *jsonReport `json:"before,omitempty"`
	After  *jsonReport `json:"after,omitempty"`
	State  string      `json:"state"`
	Error  string      `json:"error,omitempty"`
}

func newJSONReport(r *macho.Report) *jsonReport {
	if r == nil {
		return nil
	}
	return &jsonReport{
		Offset:  r.Command.Offset,
		Command: r.Command.Cmd.String(),
		Code:    uint32(r.Command.Cmd),
		Size:    r.Command.Size,
		Version: r.Values.Version.String(),
		SDK:     r.Values.SDK.String(),
	}
}

func (c *Context) printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(buf))
	return err
}

func (c *Context) printResultJSON(result *macho.Result, err error) error {
	out := jsonResult{
		Before: newJSONReport(result.Before),
		After:  newJSONReport(result.After),
		State:  result.State.String(),
	}
	if err != nil {
		out.Error = err.Error()
	}
	return c.printJSON(out)
}

func (c *Context) printReport(label string, r *macho.Report) {
	name := color.New(color.FgCyan).Sprint(r.Command.Cmd)
	fmt.Fprintf(c.out, "%s %s at offset %d (%#x)\n", label, name, r.Command.Offset, r.Command.Offset)
	fmt.Fprintf(c.out, "%s\n", r.Values)
}
