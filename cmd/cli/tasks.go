package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/anstrom/gvmclient/internal/client"
	"github.com/anstrom/gvmclient/internal/commands"
	"github.com/anstrom/gvmclient/internal/logging"
	"github.com/anstrom/gvmclient/internal/workers"
)

var (
	taskFilter   string
	taskParallel int
	taskRetries  int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage scan tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withManager(cmd, true, func(env *environment, gmp *client.GMP) error {
			tasks, err := gmp.GetTasks(env.ctx, commands.GetTasksArgs{
				ListArgs: commands.ListArgs{Filter: taskFilter},
			})
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), tasks)
		})
	},
}

var tasksStartCmd = &cobra.Command{
	Use:   "start TASK_ID...",
	Short: "Start tasks",
	Long: `Start one or more tasks. Tasks are started over parallel connections;
failures caused by a lost or refused connection are retried.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskBatch(cmd, "start_task", args, func(ctx context.Context, gmp *client.GMP, id string) (string, error) {
			reportID, err := gmp.StartTask(ctx, id)
			if err != nil {
				return "", err
			}
			return "report " + reportID, nil
		})
	},
}

var tasksStopCmd = &cobra.Command{
	Use:   "stop TASK_ID...",
	Short: "Stop running tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskBatch(cmd, "stop_task", args, func(ctx context.Context, gmp *client.GMP, id string) (string, error) {
			return "stopped", gmp.StopTask(ctx, id)
		})
	},
}

type taskOperation func(ctx context.Context, gmp *client.GMP, id string) (string, error)

// runTaskBatch applies op to every task id, one authenticated session per
// task.
func runTaskBatch(cmd *cobra.Command, jobType string, ids []string, op taskOperation) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.stop()

	var mu sync.Mutex
	details := make(map[string]string, len(ids))
	jobs := make([]workers.Job, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, workers.NewJob(id, jobType, func(ctx context.Context) error {
			gmp, err := openManager(env.withContext(ctx), true)
			if err != nil {
				return err
			}
			defer func() { _ = gmp.Session().Close() }()

			detail, err := op(ctx, gmp, id)
			if err == nil {
				mu.Lock()
				details[id] = detail
				mu.Unlock()
			}
			return err
		}))
	}

	// Prompt once up front rather than from every worker.
	if env.cfg.Credentials.Username != "" && env.cfg.Credentials.Password == "" {
		password, err := passwordPrompt(env.cfg.Credentials.Username)
		if err != nil {
			return err
		}
		env.cfg.Credentials.Password = password
	}

	cfg := workers.DefaultConfig()
	cfg.Size = taskParallel
	cfg.MaxRetries = taskRetries
	results := workers.Run(env.ctx, cfg, jobs)
	for _, r := range results {
		if r.Error != nil {
			logging.ErrorCommand("task job failed", jobType, r.Error, "task", r.JobID, "retries", r.Retries)
		}
	}

	if err := printBatch(cmd.OutOrStdout(), results, details); err != nil {
		return err
	}
	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("%s failed for %d of %d tasks: %w", jobType, countFailed(results), len(results), r.Error)
		}
	}
	return nil
}

func countFailed(results []workers.Result) int {
	n := 0
	for _, r := range results {
		if r.Error != nil {
			n++
		}
	}
	return n
}

func init() {
	tasksListCmd.Flags().StringVar(&taskFilter, "filter", "", "filter expression, e.g. \"status=Running rows=20\"")
	for _, c := range []*cobra.Command{tasksStartCmd, tasksStopCmd} {
		c.Flags().IntVar(&taskParallel, "parallel", 4, "number of concurrent connections")
		c.Flags().IntVar(&taskRetries, "retries", 2, "retries after a connection failure")
	}

	tasksCmd.AddCommand(tasksListCmd, tasksStartCmd, tasksStopCmd)
	rootCmd.AddCommand(tasksCmd)
}
