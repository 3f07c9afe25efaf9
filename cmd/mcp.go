package cmd

import (
	"github.com/regpulse/regpulse/core"
	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/core/store"
	"github.com/regpulse/regpulse/internal/mcp"
	"github.com/regpulse/regpulse/internal/source"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the regpulse MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents query registration status,
aggregates, goals, ranking, insights and events, and trigger a refresh.

The feed is polled in the background exactly as 'regpulse serve' does. Logs go to
stderr to keep stdio free for the protocol.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := rootCtx
		src, closeSrc, err := source.Open(cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		st := store.New(src.Describe())
		st.Select(cfg.Selection)
		ctrl := feed.New(src, st,
			feed.WithInterval(cfg.PollInterval),
			feed.WithLogger(newLogger()),
		)
		defer func() {
			ctrl.Close()
			ctrl.Wait()
		}()
		go ctrl.Run(ctx)

		return mcp.StartMCPServer(ctx, core.NewEngine(st, cfg.Goals, cfg.Clock()), ctrl)
	},
}
