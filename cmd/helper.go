// nolint:errcheck
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const repositoryURL = "https://github.com/Hanaasagi/labgrade"

var (
	headingStyle = color.New(color.Bold, color.FgHiWhite)
	groupStyle   = color.New(color.Bold, color.FgHiMagenta)
	nameStyle    = color.New(color.FgHiGreen)
	textStyle    = color.New(color.FgHiCyan)
	flagStyle    = color.New(color.Bold, color.FgHiCyan)
	envStyle     = color.New(color.FgHiYellow)
	hintStyle    = color.New(color.FgHiYellow)
)

// EnvVar is an environment variable listed in the root command's help.
type EnvVar struct {
	Name  string
	Usage string
}

// Environment lists the variables shown under "Environment:".
var Environment = []EnvVar{
	{"LABGRADE_LOG", "log level: debug, info, warn or error"},
	{"CTCAE_PORT", "listen port for the serve command"},
}

// HelpTemplate prints the long description, the usage block and the
// project link.
var HelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}` +
	headingStyle.Sprint("Project:") + " " + color.New(color.FgYellow).Sprintln(repositoryURL)

// usage accumulates one colored usage block. Every block after the first is
// separated by a blank line.
type usage struct {
	buf    bytes.Buffer
	blocks int
}

func (u *usage) heading(style *color.Color, title string) {
	if u.blocks > 0 {
		u.buf.WriteString("\n\n")
	}
	u.blocks++
	style.Fprint(&u.buf, title)
}

// item writes an indented "name  text" line with name padded to width cells.
func (u *usage) item(style *color.Color, name string, width int, text string) {
	u.buf.WriteString("\n  ")
	style.Fprint(&u.buf, runewidth.FillRight(name, width))
	if text != "" {
		u.buf.WriteByte(' ')
		textStyle.Fprint(&u.buf, text)
	}
}

func (u *usage) commands(cmds []*cobra.Command) {
	for _, c := range cmds {
		u.item(nameStyle, c.Name(), c.NamePadding(), c.Short)
	}
}

func (u *usage) flags(fs string) {
	u.buf.WriteByte('\n')
	u.buf.Write(colorFlags(strings.TrimRightFunc(fs, unicode.IsSpace)))
}

// flagLineRe matches a pflag usage line: indent, optional "-x, " shorthand,
// the long name and the remainder.
var flagLineRe = regexp.MustCompile(`^(\s{2,})(?:(-[a-zA-Z]), )?(--[a-zA-Z0-9-]+)(.*)$`)

// colorFlags highlights the shorthand of each flag line, or the long name
// when there is no shorthand.
func colorFlags(raw string) []byte {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		m := flagLineRe.FindStringSubmatch(line)
		switch {
		case m == nil:
			out = append(out, line)
		case m[2] != "":
			out = append(out, m[1]+flagStyle.Sprint(m[2])+", "+m[3]+m[4])
		default:
			out = append(out, m[1]+flagStyle.Sprint(m[3])+m[4])
		}
	}

	return []byte(strings.Join(out, "\n"))
}

type commandGroup struct {
	title string
	style *color.Color
	cmds  []*cobra.Command
}

// commandGroups splits the visible subcommands by group. Ungrouped commands
// come last, under "Additional Commands" when any group is defined and
// under "Available Commands" otherwise.
func commandGroups(cmd *cobra.Command) []commandGroup {
	byID := make(map[string][]*cobra.Command)
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() || c.Name() == "help" {
			byID[c.GroupID] = append(byID[c.GroupID], c)
		}
	}

	groups := make([]commandGroup, 0, len(cmd.Groups())+1)
	for _, g := range cmd.Groups() {
		groups = append(groups, commandGroup{g.Title, groupStyle, byID[g.ID]})
	}

	if rest := byID[""]; len(rest) > 0 {
		title := "Available Commands:"
		if len(groups) > 0 {
			title = "Additional Commands:"
		}
		groups = append(groups, commandGroup{title, headingStyle, rest})
	}
	return groups
}

// ColorUsageFunc writes the usage of cmd with colored headings and flags.
// The root command also lists Environment.
func ColorUsageFunc(w io.Writer, cmd *cobra.Command) error {
	u := &usage{}

	u.heading(headingStyle, "Usage:")
	if cmd.Runnable() {
		u.item(nameStyle, cmd.UseLine(), 0, "")
	}
	if cmd.HasAvailableSubCommands() {
		u.item(nameStyle, cmd.CommandPath()+" [command]", 0, "")
	}

	if len(cmd.Aliases) > 0 {
		u.heading(headingStyle, "Aliases:")
		u.item(nameStyle, strings.Join(cmd.Aliases, ", "), 0, "")
	}

	if cmd.HasExample() {
		u.heading(headingStyle, "Examples:")
		u.buf.WriteByte('\n')
		textStyle.Fprint(&u.buf, cmd.Example)
	}

	if cmd.HasAvailableSubCommands() {
		for _, g := range commandGroups(cmd) {
			u.heading(g.style, g.title)
			u.commands(g.cmds)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		u.heading(headingStyle, "Flags:")
		u.flags(cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		u.heading(headingStyle, "Global Flags:")
		u.flags(cmd.InheritedFlags().FlagUsages())
	}

	if !cmd.HasParent() && len(Environment) > 0 {
		width := 0
		for _, env := range Environment {
			width = max(width, len(env.Name))
		}
		u.heading(headingStyle, "Environment:")
		for _, env := range Environment {
			u.item(envStyle, env.Name, width, env.Usage)
		}
	}

	if cmd.HasAvailableSubCommands() {
		u.buf.WriteString("\n\n")
		hintStyle.Fprint(&u.buf, fmt.Sprintf("Use \"%s [command] --help\" for more information about a command.", cmd.CommandPath()))
	}

	u.buf.WriteByte('\n')
	_, err := w.Write(u.buf.Bytes())
	return err
}

// Setup installs the colored help and usage output on root and its
// subcommands.
func Setup(root *cobra.Command) {
	root.SetHelpTemplate(HelpTemplate)
	root.SetUsageFunc(func(c *cobra.Command) error {
		return ColorUsageFunc(c.OutOrStderr(), c)
	})
}
