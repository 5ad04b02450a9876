package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Hanaasagi/labgrade/internal/server"
)

// resolvePort prefers the flag, then CTCAE_PORT, then the default port.
func resolvePort(flagPort int, flagSet bool, env string) (int, error) {
	if flagSet {
		return validPort(flagPort)
	}
	if env == "" {
		return server.DefaultPort, nil
	}

	port, err := strconv.Atoi(env)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", server.EnvPort, env, err)
	}
	return validPort(port)
}

func validPort(port int) (int, error) {
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

func newServeCommand(app *AppConfig) *cobra.Command {
	var port int

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grading API on localhost",
		Long: "Serve POST /api/evaluate and GET /health on 127.0.0.1.\n" +
			"The port comes from --port, then " + server.EnvPort + ", then " + strconv.Itoa(server.DefaultPort) + ".",
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			p, err := resolvePort(port, c.Flags().Changed("port"), os.Getenv(server.EnvPort))
			if err != nil {
				return err
			}

			_, grader, err := loadGrader(app.configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := server.Addr(p)
			fmt.Fprintf(c.OutOrStdout(), "%s listening on http://%s\n", appName, addr)

			h := server.New(grader, server.Options{Name: appName, Version: FullVersion})
			return server.ListenAndServe(ctx, addr, h)
		},
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", server.DefaultPort, "Listen port")

	return serveCmd
}
