package terminal

// Handler produces the output of one command.
type Handler func(args []string, env *Env) Output

// Command is one entry of the dispatch table.
type Command struct {
	Name        string
	Description string
	Handler     Handler
}

// builtinCommands returns the closed command set in help order.
func builtinCommands() []Command {
	return []Command{
		{Name: "help", Description: "Show available commands", Handler: cmdHelp},
		{Name: "about", Description: "Learn who I am and what I do", Handler: cmdAbout},
		{Name: "skills", Description: "List technical skills by category", Handler: cmdSkills},
		{Name: "projects", Description: "Browse projects from the database", Handler: cmdProjects},
		{Name: "contact", Description: "Show ways to get in touch", Handler: cmdContact},
		{Name: "experience", Description: "Show work experience", Handler: cmdExperience},
		{Name: "education", Description: "Show education background", Handler: cmdEducation},
		{Name: "clear", Description: "Clear the terminal screen", Handler: cmdClear},
		{Name: "whoami", Description: "Display the current user", Handler: cmdWhoami},
		{Name: "ls", Description: "List directory contents (ls [dir|pattern])", Handler: cmdLs},
		{Name: "cat", Description: "Print a file (try: cat readme.md)", Handler: cmdCat},
		{Name: "neofetch", Description: "Display system information", Handler: cmdNeofetch},
		{Name: "tree", Description: "Show the directory tree", Handler: cmdTree},
		{Name: "pwd", Description: "Print the working directory", Handler: cmdPwd},
		{Name: "date", Description: "Show the current date and time", Handler: cmdDate},
		{Name: "theme", Description: "Show or switch the site theme (theme <name>)", Handler: cmdTheme},
		{Name: "exit", Description: "Leave terminal mode", Handler: cmdExit},
	}
}

// CommandNames lists the command names in help order.
func CommandNames() []string {
	cmds := builtinCommands()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}
