package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lestrrat-go/strftime"

	"github.com/GriffinCanCode/portfolio/internal/domain/profile"
)

// dateLayout mirrors the output of date(1).
var dateLayout = mustLayout("%a %b %d %H:%M:%S %Z %Y")

func mustLayout(pattern string) *strftime.Strftime {
	f, err := strftime.New(pattern)
	if err != nil {
		panic(err)
	}
	return f
}

var readme = []string{
	"# Portfolio Terminal",
	"",
	"An interactive way to explore this portfolio.",
	"Type 'help' to list every command.",
	"Use the up and down arrows to browse your command history.",
	"Type 'exit' to leave terminal mode.",
}

func welcomeOutput(p *profile.Profile) Output {
	return Content(
		heading(fmt.Sprintf("Welcome to %s's portfolio terminal!", p.Name)),
		muted(p.Tagline),
		blank(),
		plain("Type 'help' to see available commands."),
	)
}

func cmdHelp(_ []string, env *Env) Output {
	lines := []Line{heading("Available commands:")}
	for _, c := range env.Commands {
		lines = append(lines, Line{Text: fmt.Sprintf("  %-11s %s", c.Name, c.Description), Style: StylePlain})
	}
	lines = append(lines, blank(), muted("Use the up and down arrows to navigate command history."))
	return Content(lines...)
}

func cmdAbout(_ []string, env *Env) Output {
	p := env.Profile
	lines := []Line{
		heading(p.Name),
		accent(p.Role + " · " + p.Location),
		blank(),
	}
	for _, para := range p.About {
		lines = append(lines, plain(para))
	}
	return Content(lines...)
}

func cmdSkills(_ []string, env *Env) Output {
	lines := []Line{heading("Skills")}
	for _, g := range env.Profile.Skills {
		lines = append(lines, accent(g.Category+":"), plain("  "+strings.Join(g.Items, ", ")))
	}
	return Content(lines...)
}

func cmdProjects(_ []string, env *Env) Output {
	if len(env.Projects) == 0 {
		return Text("Loading projects from database...")
	}
	lines := []Line{heading("Projects")}
	for _, p := range env.Projects {
		title := "• " + p.Title
		if p.Featured {
			title += " ★"
		}
		lines = append(lines, accent(title))
		if summary := p.Summary(); summary != "" {
			lines = append(lines, muted("  "+summary))
		}
		if len(p.Technologies) > 0 {
			lines = append(lines, plain("  tech: "+strings.Join(p.Technologies, ", ")))
		}
	}
	lines = append(lines, blank(), muted(fmt.Sprintf("%d projects", len(env.Projects))))
	return Content(lines...)
}

func cmdContact(_ []string, env *Env) Output {
	c := env.Profile.Contact
	lines := []Line{heading("Get in touch")}
	for _, item := range []struct{ label, value string }{
		{"Email", c.Email},
		{"GitHub", c.GitHub},
		{"LinkedIn", c.LinkedIn},
		{"Website", c.Website},
	} {
		if item.value != "" {
			lines = append(lines, link(fmt.Sprintf("%-9s %s", item.label+":", item.value)))
		}
	}
	lines = append(lines, blank(), muted("Or send a message through the contact form."))
	return Content(lines...)
}

func cmdExperience(_ []string, env *Env) Output {
	lines := []Line{heading("Experience")}
	for _, pos := range env.Profile.Experience {
		lines = append(lines,
			accent(fmt.Sprintf("%s @ %s", pos.Title, pos.Company)),
			muted("  "+pos.Period),
		)
		for _, h := range pos.Highlights {
			lines = append(lines, plain("  - "+h))
		}
	}
	return Content(lines...)
}

func cmdEducation(_ []string, env *Env) Output {
	lines := []Line{heading("Education")}
	for _, d := range env.Profile.Education {
		lines = append(lines,
			accent(d.Degree+", "+d.Institution),
			muted("  "+d.Period),
		)
		for _, n := range d.Notes {
			lines = append(lines, plain("  - "+n))
		}
	}
	return Content(lines...)
}

func cmdClear(_ []string, env *Env) Output {
	env.ClearLog()
	return None()
}

func cmdWhoami(_ []string, env *Env) Output {
	return Content(
		plain(env.Profile.User),
		muted(fmt.Sprintf("You are browsing %s's portfolio.", env.Profile.Name)),
	)
}

func cmdLs(args []string, env *Env) Output {
	if len(args) == 0 {
		return listing(env.Profile.Files)
	}
	target := args[0]
	if f, ok := env.Profile.Lookup(target); ok {
		if f.IsDir() {
			return listing(f.Children)
		}
		return Text(f.Name)
	}

	if !doublestar.ValidatePattern(target) {
		return Error(fmt.Sprintf("ls: invalid pattern '%s'", target))
	}
	var matched []profile.File
	for _, f := range env.Profile.Files {
		if ok, _ := doublestar.Match(target, f.Name); ok {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return Error(fmt.Sprintf("ls: cannot access '%s': No such file or directory", target))
	}
	return listing(matched)
}

func listing(files []profile.File) Output {
	if len(files) == 0 {
		return None()
	}
	lines := make([]Line, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			lines = append(lines, accent(f.Name+"/"))
		} else {
			lines = append(lines, plain(f.Name))
		}
	}
	return Content(lines...)
}

func cmdCat(args []string, _ *Env) Output {
	name := "filename"
	if len(args) > 0 {
		name = args[0]
	}
	if strings.EqualFold(name, "readme.md") {
		lines := make([]Line, len(readme))
		for i, l := range readme {
			lines[i] = plain(l)
		}
		lines[0] = heading(readme[0])
		return Content(lines...)
	}
	return Error(fmt.Sprintf("cat: %s: No such file or directory", name))
}

var logo = []string{
	" ┌────────────┐",
	" │ >_         │",
	" │            │",
	" └────────────┘",
}

func cmdNeofetch(_ []string, env *Env) Output {
	p := env.Profile
	who := p.User + "@" + p.Host
	lines := make([]Line, 0, len(logo)+10)
	for _, l := range logo {
		lines = append(lines, accent(l))
	}
	lines = append(lines,
		heading(who),
		muted(strings.Repeat("-", len(who))),
		plain("OS:       PortfolioOS"),
		plain("Host:     "+p.Name),
		plain("Role:     "+p.Role),
		plain("Location: "+p.Location),
		plain("Shell:    portfolio-sh"),
		plain("Theme:    "+string(env.Theme)),
		plain(fmt.Sprintf("Projects: %d", len(env.Projects))),
		plain("Uptime:   "+formatUptime(env.Uptime)),
	)
	return Content(lines...)
}

func formatUptime(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	return d.Truncate(time.Second).String()
}

func cmdTree(_ []string, env *Env) Output {
	lines := []Line{accent(".")}
	lines = appendTree(lines, env.Profile.Files, "")
	dirs, files := countTree(env.Profile.Files)
	lines = append(lines, blank(), muted(fmt.Sprintf("%d directories, %d files", dirs, files)))
	return Content(lines...)
}

func appendTree(lines []Line, files []profile.File, prefix string) []Line {
	for i, f := range files {
		last := i == len(files)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		if f.IsDir() {
			lines = append(lines, accent(prefix+branch+f.Name+"/"))
			lines = appendTree(lines, f.Children, prefix+indent)
		} else {
			lines = append(lines, plain(prefix+branch+f.Name))
		}
	}
	return lines
}

func countTree(files []profile.File) (dirs, regular int) {
	for _, f := range files {
		if f.IsDir() {
			dirs++
			d, r := countTree(f.Children)
			dirs += d
			regular += r
		} else {
			regular++
		}
	}
	return dirs, regular
}

func cmdPwd(_ []string, env *Env) Output {
	return Text(env.Profile.Home)
}

func cmdDate(_ []string, env *Env) Output {
	return Text(dateLayout.FormatString(env.Now))
}

func cmdTheme(args []string, env *Env) Output {
	if len(args) == 0 {
		return Content(
			plain("Current theme: "+string(env.Theme)),
			muted("Available themes: "+themeList()),
			muted("Usage: theme <name>"),
		)
	}
	t, ok := ParseTheme(args[0])
	if !ok {
		return Error(fmt.Sprintf("theme: '%s' is not a valid theme. Available themes: %s", args[0], themeList()))
	}
	env.SetTheme(t)
	return Content(Line{Text: "Theme switched to " + string(t), Style: StyleSuccess})
}

func cmdExit(_ []string, env *Env) Output {
	env.SetThemeAfter(env.ExitDelay, ThemeDefault)
	return Text("Exiting terminal mode... switching to the default theme.")
}
