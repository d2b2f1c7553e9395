package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskmgr/internal/model"
	"github.com/idilsaglam/taskmgr/internal/ui"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List and create projects",
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE:    a.projectsList,
	}

	var in model.NewProject
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.projectsAdd(cmd, in)
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "project name (required)")
	add.Flags().StringVar(&in.Description, "description", "", "project description")

	cmd.AddCommand(ls, add)
	return cmd
}

func (a *app) projectsList(cmd *cobra.Command, args []string) error {
	token, err := a.ensureAuth()
	if err != nil {
		return err
	}
	svc := a.service()
	ctx := cmd.Context()
	projects, err := svc.ListProjects(ctx, token)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, ui.Current().Muted.Render("No projects added yet."))
		return nil
	}
	// Task counts are decoration; a failing task list leaves them blank.
	tasks, err := svc.ListTasks(ctx, token)
	if err != nil {
		tasks = nil
	}
	ui.Panel(out, projectLines(projects, tasks))
	return nil
}

func projectLines(projects []model.Project, tasks []model.Task) []string {
	t := ui.Current()
	lines := []string{t.Title.Render(fmt.Sprintf("Projects (%d)", len(projects)))}
	for _, p := range projects {
		var mine []model.Task
		for _, task := range tasks {
			if task.ProjectID == p.ID {
				mine = append(mine, task)
			}
		}
		head := fmt.Sprintf("%s %s", t.Accent.Render(p.Name), t.Muted.Render("("+p.ID+")"))
		if len(mine) > 0 {
			done := len(mine) - model.IncompleteCount(mine)
			head += "  " + ui.ProgressBar(done, len(mine), 10)
		}
		lines = append(lines, head)
		if d := strings.TrimSpace(p.Description); d != "" {
			lines = append(lines, "  "+t.Muted.Render(d))
		}
	}
	return lines
}

func (a *app) projectsAdd(cmd *cobra.Command, in model.NewProject) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return usagef("Name cannot be empty")
	}
	token, err := a.ensureAuth()
	if err != nil {
		return err
	}
	p, err := a.service().CreateProject(cmd.Context(), token, in)
	if err != nil {
		return err
	}
	ui.OK(cmd.OutOrStdout(), fmt.Sprintf("created project %s (%s)", p.Name, p.ID))
	return nil
}
