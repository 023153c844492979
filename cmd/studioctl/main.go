package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/weidustudio/studio/internal/app"
	"github.com/weidustudio/studio/internal/config"
	"github.com/weidustudio/studio/internal/pipeline"
	"github.com/weidustudio/studio/internal/planner"
	"github.com/weidustudio/studio/internal/schedule"
	"github.com/weidustudio/studio/pkg/clog"
)

var (
	cli     = kingpin.New("studioctl", "Schedule renovation crews from the command line")
	envFile = cli.Flag("env-file", "dotenv file to load before reading STUDIO_* variables").Default(".env").String()

	planCmd      = cli.Command("plan", "Generate a schedule and print it")
	planProjects = planCmd.Flag("project", "Project id (repeatable)").Required().Strings()
	planSave     = planCmd.Flag("save", "Persist the generated schedule").Bool()
	planJSON     = planCmd.Flag("json", "Print the plan as JSON").Bool()

	workersCmd = cli.Command("workers", "Manage the worker roster")

	workersListCmd = workersCmd.Command("list", "List workers").Default()

	workersAddCmd    = workersCmd.Command("add", "Add a worker")
	workersAddName   = workersAddCmd.Arg("name", "Worker name").Required().String()
	workersAddRole   = workersAddCmd.Flag("role", "Role shown in the roster").String()
	workersAddSkills = workersAddCmd.Flag("skill", "Skill (repeatable)").Strings()
	workersAddMax    = workersAddCmd.Flag("max-concurrent", "Tasks the worker can run at once").Default("1").Int()

	workersRmCmd = workersCmd.Command("rm", "Remove a worker")
	workersRmID  = workersRmCmd.Arg("id", "Worker id").Required().String()

	exportCmd      = cli.Command("export", "Write the saved schedule to an .xlsx file")
	exportProjects = exportCmd.Flag("project", "Project id (repeatable); all projects when omitted").Strings()
	exportOut      = exportCmd.Flag("out", "Output file; derived from the projects when omitted").Short('o').String()

	diffCmd      = cli.Command("diff", "Compare the saved schedule with a freshly generated one")
	diffProjects = diffCmd.Flag("project", "Project id (repeatable)").Required().Strings()
)

func main() {
	command := kingpin.MustParse(cli.Parse(os.Args[1:]))

	env, err := config.LoadEnv(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env: %v\n", err)
		os.Exit(1)
	}
	// Keep stdout for command output.
	slog.SetDefault(clog.NewLogger(os.Stderr, env.IsLocal(), slog.LevelWarn))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, env); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, env *config.Env) error {
	loc, err := env.Location()
	if err != nil {
		return err
	}
	repos, err := app.OpenRepositories(ctx, &env.StorageEnv, loc)
	if err != nil {
		return err
	}
	defer repos.Close()

	opts := []planner.Option{planner.WithLocation(loc)}
	if env.PipelineFile != "" {
		opts = append(opts, planner.WithPipelineSource(pipeline.NewWatcher(env.PipelineFile)))
	}
	c := &commands{
		out:     os.Stdout,
		store:   repos.Store(),
		service: schedule.NewService(repos.Store(), repos.Projects, planner.New(opts...), nil),
		now:     time.Now,
	}

	switch command {
	case planCmd.FullCommand():
		return c.plan(ctx, *planProjects, *planSave, *planJSON)
	case workersListCmd.FullCommand():
		return c.listWorkers(ctx)
	case workersAddCmd.FullCommand():
		return c.addWorker(ctx, *workersAddName, *workersAddRole, *workersAddSkills, *workersAddMax)
	case workersRmCmd.FullCommand():
		return c.removeWorker(ctx, *workersRmID)
	case exportCmd.FullCommand():
		return c.export(ctx, *exportProjects, *exportOut)
	case diffCmd.FullCommand():
		return c.diff(ctx, *diffProjects)
	}
	return fmt.Errorf("unknown command %q", command)
}
