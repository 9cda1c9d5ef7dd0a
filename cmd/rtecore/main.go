package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cmsis-rte/rtecore/internal/config"
	"github.com/cmsis-rte/rtecore/internal/mcp"
	"github.com/cmsis-rte/rtecore/internal/project"
)

var Version = "0.1.0"

func loadProjectConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", root, err)
	}
	return cfg, nil
}

func resolveCommand(c *cli.Context) error {
	cfg, err := loadProjectConfig(c)
	if err != nil {
		return err
	}
	registry, err := config.LoadToolchainRegistry(cfg.Project.Root)
	if err != nil {
		return err
	}

	proj, err := project.CreateProject(c.String("cprj"), c.String("pack-root"), registry)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	report := proj.Resolve()
	exitCode := 0
	for _, d := range report.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
		switch d.Severity {
		case "error":
			exitCode = 2
		case "warning":
			if exitCode < 1 {
				exitCode = 1
			}
		}
	}
	for aggID, r := range report.Results {
		fmt.Printf("%s: %s\n", aggID, r.String())
	}
	if exitCode != 0 {
		return cli.Exit("resolve finished with diagnostics", exitCode)
	}
	return nil
}

func checkPacksCommand(c *cli.Context) error {
	cfg, err := loadProjectConfig(c)
	if err != nil {
		return err
	}
	registry, err := config.LoadToolchainRegistry(cfg.Project.Root)
	if err != nil {
		return err
	}

	proj, err := project.CreateProject(c.String("cprj"), c.String("pack-root"), registry)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	missing := proj.CheckPackRequirements()
	if len(missing) == 0 {
		fmt.Println("all required packs are installed")
		return nil
	}
	for _, m := range missing {
		fmt.Println(m.PackID())
	}
	return cli.Exit("missing required packs", 1)
}

func generateCommand(c *cli.Context) error {
	cfg, err := loadProjectConfig(c)
	if err != nil {
		return err
	}
	registry, err := config.LoadToolchainRegistry(cfg.Project.Root)
	if err != nil {
		return err
	}

	proj, err := project.CreateProject(c.String("cprj"), c.String("pack-root"), registry)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	report := proj.Resolve()
	for _, d := range report.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}

	if err := proj.ApplyAndGenerate(c.String("output-dir"), c.String("device")); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	fmt.Printf("artifacts written to %s\n", c.String("output-dir"))
	return nil
}

func mcpCommand(c *cli.Context) error {
	cfg, err := loadProjectConfig(c)
	if err != nil {
		return err
	}
	server := mcp.NewServer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return server.Run(ctx)
}

func main() {
	projectFlags := []cli.Flag{
		&cli.StringFlag{Name: "cprj", Usage: "Path to the *.cprj project file", Required: true},
		&cli.StringFlag{Name: "pack-root", Usage: "Directory containing installed *.pdsc packs", Required: true},
	}

	app := &cli.App{
		Name:    "rtecore",
		Usage:   "CMSIS Run-Time Environment resolver and code generator",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Not read; the project config is always .rte.kdl in the --root directory",
				Value:   ".rte.kdl",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "resolve",
				Usage:  "Resolve a project's component selections and print the dependency report",
				Flags:  projectFlags,
				Action: resolveCommand,
			},
			{
				Name:   "check-packs",
				Usage:  "List packs the project requires that are not currently installed",
				Flags:  projectFlags,
				Action: checkPacksCommand,
			},
			{
				Name:  "generate",
				Usage: "Resolve a project and write its generated artifacts to output-dir",
				Flags: append(append([]cli.Flag{}, projectFlags...),
					&cli.StringFlag{Name: "output-dir", Usage: "Directory artifacts are written to", Required: true},
					&cli.StringFlag{Name: "device", Usage: "Device name used in generated filenames", Required: true},
				),
				Action: generateCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the in-process API over MCP stdio transport",
				Action: mcpCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
