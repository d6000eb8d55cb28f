package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/backscroll/internal/config"
)

// program adapts the run loop to the system service manager.
type program struct {
	cfgPath string
	done    chan error
}

func (p *program) Start(_ service.Service) error {
	p.done = make(chan error, 1)
	go func() {
		cfg, err := config.Load(p.cfgPath)
		if err != nil {
			p.done <- err
			return
		}
		if err := config.Validate(cfg); err != nil {
			p.done <- err
			return
		}
		p.done <- run(cfg)
	}()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	// run() exits on SIGTERM, which the service manager sends; nothing
	// more to unwind here.
	return nil
}

// serviceCmd manages backscroll as a system service (systemd, launchd, ...).
func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service [install|uninstall|start|stop|run]",
		Short: "Manage backscroll as a system service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			if cfgPath == "" {
				resolved, err := resolveConfigPath()
				if err != nil {
					return err
				}
				cfgPath = resolved
			}

			prg := &program{cfgPath: cfgPath}
			svc, err := service.New(prg, &service.Config{
				Name:        "backscroll",
				DisplayName: "backscroll",
				Description: "Conversation context engine",
				Arguments:   []string{"service", "run", "--config", cfgPath},
			})
			if err != nil {
				return fmt.Errorf("service setup: %w", err)
			}

			switch args[0] {
			case "install":
				return svc.Install()
			case "uninstall":
				return svc.Uninstall()
			case "start":
				return svc.Start()
			case "stop":
				return svc.Stop()
			case "run":
				return svc.Run()
			default:
				return fmt.Errorf("unknown service action %q", args[0])
			}
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}
