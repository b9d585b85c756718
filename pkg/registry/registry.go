package registry

import "github.com/spf13/cobra"

// CommandRegistry collects subcommands from package init() functions so the
// parent command can attach them once it exists.
type CommandRegistry struct {
	hooks []func(*cobra.Command)
}

// Register adds a hook that receives the parent command.
func (r *CommandRegistry) Register(hook func(c *cobra.Command)) {
	r.hooks = append(r.hooks, hook)
}

// FromGetter registers a subcommand constructor.
func (r *CommandRegistry) FromGetter(getter func() *cobra.Command) {
	r.Register(func(c *cobra.Command) {
		c.AddCommand(getter())
	})
}

// FillCommands runs every registered hook against parent.
func (r *CommandRegistry) FillCommands(parent *cobra.Command) {
	for _, hook := range r.hooks {
		hook(parent)
	}
}
