package planner

const untitledProject = "Untitled project"

type ProjectRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TaskID(projectID, stageKey string) string {
	return projectID + "-" + stageKey
}

// Generate expands every project into one task per pipeline stage. The
// output is project-major in selection order, then stage order, and is
// identical for identical input.
func Generate(projects []ProjectRef, p Pipeline) []*Task {
	tasks := make([]*Task, 0, len(projects)*len(p.Stages))
	for _, proj := range projects {
		title := proj.Title
		if title == "" {
			title = untitledProject
		}
		for i, stage := range p.Stages {
			deps := []string{}
			switch {
			case stage.After != nil:
				for _, a := range stage.After {
					deps = append(deps, TaskID(proj.ID, a))
				}
			case i > 0:
				deps = append(deps, TaskID(proj.ID, p.Stages[i-1].Key))
			}
			tasks = append(tasks, &Task{
				ID:             TaskID(proj.ID, stage.Key),
				ProjectID:      proj.ID,
				ProjectTitle:   title,
				TaskType:       stage.Type,
				EstimatedDays:  stage.Days,
				Priority:       stage.Priority,
				Dependencies:   deps,
				RequiredSkills: stage.skills(),
				Status:         StatusPending,
			})
		}
	}
	return tasks
}
